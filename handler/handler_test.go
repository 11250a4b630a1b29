package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Alvin-MXK/daily-stock-analysis/handler"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/analysis"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/market"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/settings"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/templates"
	"github.com/Alvin-MXK/daily-stock-analysis/web"
)

type stubAnalyzer struct {
	result analysis.Result
	err    error
}

func (a *stubAnalyzer) Analyze(context.Context, string, string) (analysis.Result, error) {
	return a.result, a.err
}

type stubAI struct {
	text string
	err  error
}

func (a *stubAI) Complete(context.Context, string) (string, error) {
	return a.text, a.err
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendReport(subject string, html []byte) error {
	args := m.Called(subject, html)
	return args.Error(0)
}

type fixture struct {
	pages    *handler.PageHandler
	api      *handler.APIHandler
	analysis *analysis.Service
	settings *settings.Service
	mailer   *mockMailer
}

func setupFixture(t *testing.T) *fixture {
	log := zaptest.NewLogger(t)

	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath,
		[]byte("STOCK_LIST=161725,110011\nGEMINI_API_KEY=secret-key\n"), 0o600))
	settingsSvc := settings.NewService(settings.ServiceParams{
		Config: settings.Config{EnvFile: envPath},
		Log:    log,
	})

	analysisSvc, err := analysis.NewService(analysis.ServiceParams{
		Context: context.Background(),
		Config:  analysis.Config{MaxWorkers: 2},
		Factory: func(context.Context) (analysis.Analyzer, error) {
			return &stubAnalyzer{result: analysis.Result{
				Code: "161725", Name: "白酒指数",
				Advice: "hold", Score: 62, Trend: "sideways", Summary: "stable",
			}}, nil
		},
		AI:  &stubAI{text: "Stay balanced."},
		Log: log,
	})
	require.NoError(t, err)
	t.Cleanup(analysisSvc.Close)

	renderer, err := templates.NewRenderer(templates.RendererParams{Log: log})
	require.NoError(t, err)

	// No base URL configured: market lookups fail and the pages must
	// degrade instead of erroring.
	marketClient := market.NewClient(market.ClientParams{Config: market.Config{}, Log: log})

	mailer := &mockMailer{}

	pages := handler.NewPageHandler(handler.PagesParams{
		Renderer: renderer,
		Analysis: analysisSvc,
		Settings: settingsSvc,
		Market:   marketClient,
		Mailer:   mailer,
		Log:      log,
	})
	api := handler.NewAPIHandler(handler.APIParams{
		Analysis: analysisSvc,
		Log:      log,
	})

	return &fixture{pages: pages, api: api, analysis: analysisSvc, settings: settingsSvc, mailer: mailer}
}

func awaitTask(t *testing.T, service *analysis.Service, id string) {
	t.Helper()
	require.Eventually(t, func() bool {
		task, ok := service.TaskStatus(id)
		return ok && (task.Status == analysis.TaskSucceeded || task.Status == analysis.TaskFailed)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestIndexListsFunds(t *testing.T) {
	f := setupFixture(t)

	resp, err := f.pages.Index(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	html := string(resp.Body)
	require.Contains(t, html, "161725")
	require.Contains(t, html, "110011")
	require.Contains(t, html, "no analysis yet")
}

func TestFundDetailRequiresCode(t *testing.T) {
	f := setupFixture(t)

	_, err := f.pages.FundDetail(context.Background(), web.Params{})
	require.ErrorIs(t, err, web.ErrBadRequest)
}

func TestFundDetailDegradesWithoutMarketData(t *testing.T) {
	f := setupFixture(t)

	resp, err := f.pages.FundDetail(context.Background(), web.Params{"code": {"161725"}})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(resp.Body), "161725")
}

func TestHistoryPaging(t *testing.T) {
	f := setupFixture(t)

	task := f.analysis.Submit("161725", "full", false)
	awaitTask(t, f.analysis, task.ID)

	resp, err := f.pages.History(context.Background(), web.Params{"code": {"161725"}})
	require.NoError(t, err)
	require.Contains(t, string(resp.Body), "hold")
	require.Contains(t, string(resp.Body), "page 1 of 1")
}

func TestHistorySuccessFilter(t *testing.T) {
	f := setupFixture(t)

	task := f.analysis.Submit("161725", "full", false)
	awaitTask(t, f.analysis, task.ID)

	resp, err := f.pages.History(context.Background(), web.Params{
		"code": {"161725"}, "success": {"false"},
	})
	require.NoError(t, err)
	require.NotContains(t, string(resp.Body), "hold")
	require.Contains(t, string(resp.Body), "No records.")

	resp, err = f.pages.History(context.Background(), web.Params{
		"code": {"161725"}, "success": {"true"},
	})
	require.NoError(t, err)
	require.Contains(t, string(resp.Body), "hold")
}

func TestHistoryLimitAndSortParams(t *testing.T) {
	f := setupFixture(t)

	for _, code := range []string{"161725", "110011"} {
		task := f.analysis.Submit(code, "full", false)
		awaitTask(t, f.analysis, task.ID)
	}

	resp, err := f.pages.History(context.Background(), web.Params{"limit": {"1"}})
	require.NoError(t, err)
	require.Contains(t, string(resp.Body), "page 1 of 2")

	resp, err = f.pages.History(context.Background(), web.Params{
		"sort_by": {"sentiment_score"}, "sort_order": {"asc"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMarketReviewDetailErrors(t *testing.T) {
	f := setupFixture(t)

	_, err := f.pages.MarketReviewDetail(context.Background(), web.Params{})
	require.ErrorIs(t, err, web.ErrBadRequest)

	_, err = f.pages.MarketReviewDetail(context.Background(), web.Params{"id": {"abc"}})
	require.ErrorIs(t, err, web.ErrBadRequest)

	_, err = f.pages.MarketReviewDetail(context.Background(), web.Params{"id": {"99"}})
	require.ErrorIs(t, err, web.ErrNotFound)
}

func TestRunMarketReviewRendersReport(t *testing.T) {
	f := setupFixture(t)

	task := f.analysis.Submit("161725", "full", false)
	awaitTask(t, f.analysis, task.ID)

	resp, err := f.pages.RunMarketReview(context.Background(), nil)
	require.NoError(t, err)
	require.Contains(t, string(resp.Body), "Stay balanced.")
}

func TestConfigPageMasksSecrets(t *testing.T) {
	f := setupFixture(t)

	resp, err := f.pages.ConfigPage(context.Background(), nil)
	require.NoError(t, err)

	html := string(resp.Body)
	require.NotContains(t, html, "secret-key")
	require.Contains(t, html, "-key") // mask keeps the suffix
}

func TestUpdateConfigSkipsMaskedValues(t *testing.T) {
	f := setupFixture(t)

	resp, err := f.pages.UpdateConfig(context.Background(), web.Params{
		"STOCK_LIST":     {"161725"},
		"GEMINI_API_KEY": {"******-key"},
	})
	require.NoError(t, err)
	require.Contains(t, string(resp.Body), "Settings saved.")
}

func TestUpdateConfigIgnoresUnknownKeys(t *testing.T) {
	f := setupFixture(t)

	_, err := f.pages.UpdateConfig(context.Background(), web.Params{
		"STOCK_LIST":          {"161725"},
		"TOTALLY_UNRELATED":   {"injected"},
		"PATH":                {"/tmp/evil"},
		"SETTINGS_OVERRIDDEN": {"1"},
	})
	require.NoError(t, err)

	text, err := f.settings.ReadText()
	require.NoError(t, err)
	require.NotContains(t, text, "injected")
	require.NotContains(t, text, "/tmp/evil")
	require.NotContains(t, text, "SETTINGS_OVERRIDDEN")
	require.Contains(t, text, "STOCK_LIST=161725")
}

func TestSendEmailReport(t *testing.T) {
	f := setupFixture(t)
	f.mailer.On("SendReport", mock.Anything, mock.Anything).Return(nil).Once()

	resp, err := f.pages.SendEmailReport(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	f.mailer.AssertExpectations(t)
}

func TestSendEmailReportUnavailable(t *testing.T) {
	f := setupFixture(t)
	f.mailer.On("SendReport", mock.Anything, mock.Anything).
		Return(web.ErrUnavailable).Once()

	_, err := f.pages.SendEmailReport(context.Background(), nil)
	require.ErrorIs(t, err, web.ErrUnavailable)
}

func TestAPIHealth(t *testing.T) {
	f := setupFixture(t)

	resp, err := f.api.Health(context.Background(), nil)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, "daily-stock-analysis", body["service"])
	require.NotEmpty(t, body["timestamp"])
}

func TestAPISubmitAnalysisValidatesCode(t *testing.T) {
	f := setupFixture(t)

	_, err := f.api.SubmitAnalysis(context.Background(), web.Params{})
	require.ErrorIs(t, err, web.ErrBadRequest)

	_, err = f.api.SubmitAnalysis(context.Background(), web.Params{"code": {"12"}})
	require.ErrorIs(t, err, web.ErrBadRequest)

	_, err = f.api.SubmitAnalysis(context.Background(), web.Params{
		"code": {"161725"}, "report_type": {"verbose"},
	})
	require.ErrorIs(t, err, web.ErrBadRequest)

	// codes are trimmed and uppercased before validation
	for _, code := range []string{"161725", "HK00700", "AAPL", "BRK.A", "aapl", " hk00700 "} {
		resp, err := f.api.SubmitAnalysis(context.Background(), web.Params{"code": {code}})
		require.NoError(t, err, code)
		require.Equal(t, http.StatusAccepted, resp.StatusCode)
	}
}

func TestAPISubmitAnalysisDefaultsToSimpleReport(t *testing.T) {
	f := setupFixture(t)

	resp, err := f.api.SubmitAnalysis(context.Background(), web.Params{"code": {"161725"}})
	require.NoError(t, err)

	var body struct {
		Task analysis.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	require.Equal(t, "simple", body.Task.ReportType)
}

func TestAPITaskStatus(t *testing.T) {
	f := setupFixture(t)

	_, err := f.api.TaskStatus(context.Background(), web.Params{})
	require.ErrorIs(t, err, web.ErrBadRequest)

	_, err = f.api.TaskStatus(context.Background(), web.Params{"id": {"nope"}})
	require.ErrorIs(t, err, web.ErrNotFound)

	task := f.analysis.Submit("161725", "full", false)
	awaitTask(t, f.analysis, task.ID)

	resp, err := f.api.TaskStatus(context.Background(), web.Params{"id": {task.ID}})
	require.NoError(t, err)

	var body struct {
		Success bool          `json:"success"`
		Task    analysis.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	require.True(t, body.Success)
	require.Equal(t, analysis.TaskSucceeded, body.Task.Status)
}

func TestAPITasksNewestFirst(t *testing.T) {
	f := setupFixture(t)

	task := f.analysis.Submit("161725", "full", false)
	awaitTask(t, f.analysis, task.ID)

	resp, err := f.api.Tasks(context.Background(), nil)
	require.NoError(t, err)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	require.Equal(t, 1, body.Count)
}

func TestAPITasksHonorsLimit(t *testing.T) {
	f := setupFixture(t)

	for _, code := range []string{"161725", "110011"} {
		task := f.analysis.Submit(code, "full", false)
		awaitTask(t, f.analysis, task.ID)
	}

	resp, err := f.api.Tasks(context.Background(), web.Params{"limit": {"1"}})
	require.NoError(t, err)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	require.Equal(t, 1, body.Count)
}
