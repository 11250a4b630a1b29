package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Alvin-MXK/daily-stock-analysis/internal/analysis"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/settings"
	"github.com/Alvin-MXK/daily-stock-analysis/util"
	"github.com/Alvin-MXK/daily-stock-analysis/web"
)

const telegramUpdateSchema = `{
	"type": "object",
	"required": ["update_id"],
	"properties": {
		"update_id": {"type": "integer"},
		"message": {
			"type": "object",
			"properties": {
				"text": {"type": "string"},
				"chat": {
					"type": "object",
					"properties": {"id": {"type": "integer"}}
				}
			}
		}
	}
}`

type telegramUpdate struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type TelegramParams struct {
	fx.In

	Analysis *analysis.Service
	Settings *settings.Service

	Log *zap.Logger
}

// telegramPlatform answers Telegram bot updates. Replies use the
// webhook response itself (Telegram's answer-by-webhook mechanism),
// so no outbound bot API call is needed.
type telegramPlatform struct {
	schema   *gojsonschema.Schema
	analysis *analysis.Service
	settings *settings.Service
	log      *zap.Logger
}

func NewTelegramPlatform(params TelegramParams) PlatformResult {
	return AsPlatform(&telegramPlatform{
		schema: util.Must(gojsonschema.NewSchema(
			gojsonschema.NewStringLoader(telegramUpdateSchema),
		)),
		analysis: params.Analysis,
		settings: params.Settings,
		log:      params.Log.Named("telegram"),
	})
}

func (p *telegramPlatform) Name() string {
	return "telegram"
}

func (p *telegramPlatform) Handle(_ context.Context, _ http.Header, body []byte) (web.WebhookResult, error) {
	validation, err := p.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return web.WebhookResult{
			StatusCode: http.StatusBadRequest,
			Body:       map[string]any{"error": "invalid JSON payload"},
		}, nil
	}
	if !validation.Valid() {
		details := make([]string, 0, len(validation.Errors()))
		for _, desc := range validation.Errors() {
			details = append(details, desc.String())
		}
		return web.WebhookResult{
			StatusCode: http.StatusBadRequest,
			Body:       map[string]any{"error": "invalid update", "details": details},
		}, nil
	}

	var update telegramUpdate
	if err := json.Unmarshal(body, &update); err != nil {
		return web.WebhookResult{}, fmt.Errorf("decode telegram update: %w", err)
	}

	if update.Message == nil || strings.TrimSpace(update.Message.Text) == "" {
		return web.WebhookResult{
			StatusCode: http.StatusOK,
			Body:       map[string]any{"ok": true, "handled": false},
		}, nil
	}

	reply := p.reply(update.Message.Text)
	p.log.Info("telegram command handled",
		zap.Int64("update_id", update.UpdateID),
		zap.Int64("chat", update.Message.Chat.ID),
	)

	return web.WebhookResult{
		StatusCode: http.StatusOK,
		Body: map[string]any{
			"method":  "sendMessage",
			"chat_id": update.Message.Chat.ID,
			"text":    reply,
		},
	}, nil
}

func (p *telegramPlatform) reply(text string) string {
	command := strings.Fields(strings.TrimSpace(text))[0]

	switch command {
	case "/funds":
		codes := p.settings.StockList()
		if len(codes) == 0 {
			return "No funds are being watched."
		}
		return "Watched funds: " + strings.Join(codes, ", ")

	case "/status":
		tasks := p.analysis.Tasks(5)
		if len(tasks) == 0 {
			return "No recent analysis tasks."
		}
		lines := make([]string, 0, len(tasks))
		for _, task := range tasks {
			lines = append(lines, fmt.Sprintf("%s: %s", task.Code, task.Status))
		}
		return "Recent tasks:\n" + strings.Join(lines, "\n")

	case "/analyze":
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return "Usage: /analyze <fund code>"
		}
		task := p.analysis.Submit(fields[1], "simple", false)
		return fmt.Sprintf("Analysis of %s queued (task %s).", fields[1], task.ID)

	default:
		return "Commands: /funds, /status, /analyze <code>"
	}
}
