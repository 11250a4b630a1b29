package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Alvin-MXK/daily-stock-analysis/handler"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/metrics"
	"github.com/Alvin-MXK/daily-stock-analysis/web"
)

type stubWebhooks struct{}

func (stubWebhooks) HandleWebhook(_ context.Context, platform string, _ http.Header, _ []byte) (web.WebhookResult, error) {
	return web.WebhookResult{
		StatusCode: http.StatusOK,
		Body:       map[string]any{"platform": platform},
	}, nil
}

func setupServer(t *testing.T) *httptest.Server {
	f := setupFixture(t)
	log := zaptest.NewLogger(t)

	router := web.NewRouter(web.RouterParams{
		Webhooks: stubWebhooks{},
		Log:      log,
	})
	handler.RegisterRoutes(router, f.pages, f.api)

	dashboard := handler.NewDashboardHandler(handler.DashboardParams{
		Router:  router,
		Metrics: metrics.NewRegistry(),
		Log:     log,
	})

	server := httptest.NewServer(dashboard)
	t.Cleanup(server.Close)
	return server
}

func TestServeHTTP_FramesResponses(t *testing.T) {
	server := setupServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	require.NotEmpty(t, resp.Header.Get("Content-Length"))
}

func TestServeHTTP_UnknownPathIsMarkup404(t *testing.T) {
	server := setupServer(t)

	resp, err := http.Get(server.URL + "/no/such/page")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestServeHTTP_QueryReachesHandler(t *testing.T) {
	server := setupServer(t)

	resp, err := http.Get(server.URL + "/analysis?code=161725&report_type=simple")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestServeHTTP_PostFormReachesHandler(t *testing.T) {
	server := setupServer(t)

	form := "STOCK_LIST=161725"
	req, err := http.NewRequest(http.MethodPost, server.URL+"/update", strings.NewReader(form))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.ContentLength = int64(len(form))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestServeHTTP_WebhookBypassesRouteTable(t *testing.T) {
	server := setupServer(t)

	resp, err := http.Post(server.URL+"/bot/telegram", "application/json",
		strings.NewReader(`{"update_id":1}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
}

func TestServeHTTP_ContentLengthMatchesBody(t *testing.T) {
	server := setupServer(t)

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	length, err := strconv.Atoi(resp.Header.Get("Content-Length"))
	require.NoError(t, err)
	require.Greater(t, length, 0)
}
