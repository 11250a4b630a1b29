package templates_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Alvin-MXK/daily-stock-analysis/internal/templates"
)

func setupRenderer(t *testing.T) *templates.Renderer {
	renderer, err := templates.NewRenderer(templates.RendererParams{
		Log: zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return renderer
}

func TestRenderer_FundList(t *testing.T) {
	renderer := setupRenderer(t)

	body, err := renderer.FundList(templates.FundListData{
		ScheduleTime: "18:00",
		Funds: []templates.FundRow{
			{Code: "161725", Name: "白酒指数", HasAnalysis: true, Advice: "hold", Score: 62, Trend: "sideways", AnalyzedAt: "2026-08-22 18:01"},
			{Code: "110011", Name: "Growth Mix"},
		},
	})
	require.NoError(t, err)

	html := string(body)
	require.Contains(t, html, "161725")
	require.Contains(t, html, "白酒指数")
	require.Contains(t, html, "hold")
	require.Contains(t, html, "no analysis yet")
	require.Contains(t, html, "18:00")
}

func TestRenderer_FundListEscapesUserContent(t *testing.T) {
	renderer := setupRenderer(t)

	body, err := renderer.FundList(templates.FundListData{
		Funds: []templates.FundRow{
			{Code: "161725", Name: "<script>alert(1)</script>"},
		},
	})
	require.NoError(t, err)
	require.NotContains(t, string(body), "<script>alert(1)</script>")
}

func TestRenderer_HistoryShowsFailures(t *testing.T) {
	renderer := setupRenderer(t)

	body, err := renderer.History(templates.HistoryData{
		Records: []templates.RecordRow{
			{ID: 2, Code: "161725", Success: true, Advice: "buy", Score: 78, CreatedAt: "2026-08-22 18:01"},
			{ID: 1, Code: "110011", Error: "upstream timeout", CreatedAt: "2026-08-21 18:01"},
		},
		Total: 2, Page: 1, Pages: 1,
	})
	require.NoError(t, err)

	html := string(body)
	require.Contains(t, html, "buy")
	require.Contains(t, html, "upstream timeout")
	require.Contains(t, html, "page 1 of 1")
}

func TestRenderer_ErrorPageNeverFails(t *testing.T) {
	renderer := setupRenderer(t)

	body := renderer.ErrorPage(404, "Page Not Found", "path /nope does not exist")
	html := string(body)
	require.Contains(t, html, "404")
	require.Contains(t, html, "Page Not Found")
	require.Contains(t, html, "/nope")
}
