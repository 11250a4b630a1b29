package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Alvin-MXK/daily-stock-analysis/internal/market"
)

// Analyzer runs one fund analysis. Instances are pooled, so an
// implementation may hold per-instance state.
type Analyzer interface {
	Analyze(ctx context.Context, code, reportType string) (Result, error)
}

// AnalyzerFactory constructs pool members on demand.
type AnalyzerFactory func(ctx context.Context) (Analyzer, error)

// fundAnalyzer combines market data with the model to produce a
// structured verdict for one fund.
type fundAnalyzer struct {
	market *market.Client
	ai     AIClient
	log    *zap.Logger
}

func NewAnalyzerFactory(marketClient *market.Client, ai AIClient, log *zap.Logger) AnalyzerFactory {
	return func(ctx context.Context) (Analyzer, error) {
		return &fundAnalyzer{
			market: marketClient,
			ai:     ai,
			log:    log.Named("analyzer"),
		}, nil
	}
}

func (a *fundAnalyzer) Analyze(ctx context.Context, code, reportType string) (Result, error) {
	name := "fund " + code

	// Market data failures degrade the prompt, they do not abort the
	// run; the model still produces a verdict from what is available.
	info, err := a.market.Info(ctx, code)
	if err != nil {
		a.log.Debug("fund info unavailable", zap.String("code", code), zap.Error(err))
	} else if info.Name != "" {
		name = info.Name
	}

	rates, err := a.market.RealtimeRates(ctx, []string{code})
	if err != nil {
		a.log.Debug("realtime rates unavailable", zap.String("code", code), zap.Error(err))
	}

	periods, err := a.market.PeriodChanges(ctx, code)
	if err != nil {
		a.log.Debug("period changes unavailable", zap.String("code", code), zap.Error(err))
	}

	prompt := buildAnalysisPrompt(code, name, reportType, rates[code], periods)

	text, err := a.ai.Complete(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("analyze %s: %w", code, err)
	}

	result := parseVerdict(text)
	result.Code = code
	result.Name = name
	return result, nil
}

func buildAnalysisPrompt(code, name, reportType string, quote market.Quote, periods map[string]float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a fund analyst. Analyze fund %s (%s).\n", name, code)
	if quote.Code != "" {
		fmt.Fprintf(&b, "Intraday estimated change: %.2f%% (%s, %s).\n",
			quote.ChangePercent, quote.Source, quote.Time)
	}
	if len(periods) > 0 {
		labels := make([]string, 0, len(periods))
		for label := range periods {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		b.WriteString("Performance:")
		for _, label := range labels {
			fmt.Fprintf(&b, " %s %.2f%%", label, periods[label])
		}
		b.WriteString(".\n")
	}

	if reportType == "simple" {
		b.WriteString("Keep the summary to two sentences.\n")
	}
	b.WriteString(`Reply with a JSON object: {"advice": "buy|hold|sell", ` +
		`"score": 0-100, "trend": "up|sideways|down", "summary": "..."}.`)

	return b.String()
}

// parseVerdict decodes the model's JSON verdict. Responses wrapped in
// markdown fences or prose fall back to a neutral verdict carrying the
// raw text as summary.
func parseVerdict(text string) Result {
	candidate := text
	if start := strings.Index(candidate, "{"); start >= 0 {
		if end := strings.LastIndex(candidate, "}"); end > start {
			candidate = candidate[start : end+1]
		}
	}

	var verdict struct {
		Advice  string `json:"advice"`
		Score   int    `json:"score"`
		Trend   string `json:"trend"`
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(candidate), &verdict); err != nil || verdict.Summary == "" {
		return Result{
			Advice:  "hold",
			Score:   50,
			Trend:   "sideways",
			Summary: strings.TrimSpace(text),
		}
	}

	return Result{
		Advice:  verdict.Advice,
		Score:   verdict.Score,
		Trend:   verdict.Trend,
		Summary: verdict.Summary,
	}
}
