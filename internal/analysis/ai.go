package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Alvin-MXK/daily-stock-analysis/internal/settings"
)

// AIClient produces free-form analysis text from a prompt.
type AIClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type GeminiParams struct {
	fx.In

	Config   Config
	Settings *settings.Service

	Log *zap.Logger
}

// geminiClient calls the Gemini generateContent endpoint. The API key
// is read from the settings file on every call so key rotations made
// through the dashboard take effect immediately.
type geminiClient struct {
	baseURL  string
	model    string
	http     *http.Client
	settings *settings.Service
	log      *zap.Logger
}

func NewGeminiClient(params GeminiParams) AIClient {
	baseURL := params.Config.AIBaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	model := params.Config.AIModel
	if model == "" {
		model = "gemini-1.5-flash"
	}

	return &geminiClient{
		baseURL:  baseURL,
		model:    model,
		http:     &http.Client{Timeout: 120 * time.Second},
		settings: params.Settings,
		log:      params.Log.Named("gemini"),
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

const completeAttempts = 3

// Complete calls the model, retrying transient failures.
func (c *geminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	key := c.settings.Get("GEMINI_API_KEY")
	if key == "" {
		return "", errors.New("GEMINI_API_KEY is not configured")
	}

	var lastErr error
	for attempt := 1; attempt <= completeAttempts; attempt++ {
		text, err := c.complete(ctx, key, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		c.log.Warn("model call failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}

	return "", fmt.Errorf("model call failed after %d attempts: %w", completeAttempts, lastErr)
}

func (c *geminiClient) complete(ctx context.Context, key, prompt string) (string, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("encode model request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model endpoint returned status %d", resp.StatusCode)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode model response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("model returned no candidates")
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}
