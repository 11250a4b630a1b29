package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Alvin-MXK/daily-stock-analysis/web"
)

// mockWebhooks implements the web.WebhookService interface.
type mockWebhooks struct {
	mock.Mock
}

func (m *mockWebhooks) HandleWebhook(ctx context.Context, platform string, header http.Header, body []byte) (web.WebhookResult, error) {
	args := m.Called(ctx, platform, header, body)
	return args.Get(0).(web.WebhookResult), args.Error(1)
}

func setupRouter(t *testing.T, webhooks web.WebhookService) *web.Router {
	if webhooks == nil {
		webhooks = new(mockWebhooks)
	}

	return web.NewRouter(web.RouterParams{
		Webhooks: webhooks,
		Log:      zaptest.NewLogger(t),
	})
}

func staticHandler(body string) web.HandlerFunc {
	return func(ctx context.Context, params web.Params) (web.Response, error) {
		return web.Markup([]byte(body), http.StatusOK), nil
	}
}

func TestRouter_RegisterOverwrites(t *testing.T) {
	router := setupRouter(t, nil)

	router.Register("/config", http.MethodGet, web.KindMarkup, staticHandler("first"), "")
	router.Register("/config", http.MethodGet, web.KindMarkup, staticHandler("second"), "")

	resp := router.Dispatch(context.Background(), web.Request{
		Path:   "/config",
		Method: http.MethodGet,
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "second", string(resp.Body))
}

func TestRouter_MatchIsMethodAndCaseSensitive(t *testing.T) {
	router := setupRouter(t, nil)
	router.Register("/history", http.MethodGet, web.KindMarkup, staticHandler("ok"), "")

	_, ok := router.Match("/history", http.MethodGet)
	require.True(t, ok)

	_, ok = router.Match("/history", http.MethodPost)
	require.False(t, ok)

	_, ok = router.Match("/History", http.MethodGet)
	require.False(t, ok)
}

func TestRouter_UnmatchedRouteIs404Markup(t *testing.T) {
	router := setupRouter(t, nil)

	resp := router.Dispatch(context.Background(), web.Request{
		Path:   "/nope",
		Method: http.MethodGet,
	})

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "text/html; charset=utf-8", resp.ContentType)
	require.Contains(t, string(resp.Body), "/nope")
}

func TestRouter_HandlerFailureIs500AndRouterSurvives(t *testing.T) {
	router := setupRouter(t, nil)

	router.Register("/boom", http.MethodGet, web.KindMarkup, func(ctx context.Context, params web.Params) (web.Response, error) {
		return web.Response{}, errors.New("kaboom happened")
	}, "")
	router.Register("/healthy", http.MethodGet, web.KindMarkup, staticHandler("fine"), "")

	resp := router.Dispatch(context.Background(), web.Request{Path: "/boom", Method: http.MethodGet})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "text/html; charset=utf-8", resp.ContentType)
	require.Contains(t, string(resp.Body), "kaboom happened")

	resp = router.Dispatch(context.Background(), web.Request{Path: "/healthy", Method: http.MethodGet})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "fine", string(resp.Body))
}

func TestRouter_DeclaredErrorKindsMapToStatusCodes(t *testing.T) {
	router := setupRouter(t, nil)

	router.Register("/fund/detail", http.MethodGet, web.KindMarkup, func(ctx context.Context, params web.Params) (web.Response, error) {
		return web.Response{}, fmt.Errorf("%w: missing fund code", web.ErrBadRequest)
	}, "")

	resp := router.Dispatch(context.Background(), web.Request{Path: "/fund/detail", Method: http.MethodGet})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_JSONRouteFailureIsJSON(t *testing.T) {
	router := setupRouter(t, nil)

	router.Register("/task", http.MethodGet, web.KindJSON, func(ctx context.Context, params web.Params) (web.Response, error) {
		return web.Response{}, fmt.Errorf("%w: no such task", web.ErrNotFound)
	}, "")

	resp := router.Dispatch(context.Background(), web.Request{Path: "/task", Method: http.MethodGet})

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "application/json; charset=utf-8", resp.ContentType)

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	require.Equal(t, false, body["success"])
	require.Contains(t, body["error"], "no such task")
}

func TestRouter_PostFormDecoding(t *testing.T) {
	router := setupRouter(t, nil)

	var seen web.Params
	router.Register("/update", http.MethodPost, web.KindMarkup, func(ctx context.Context, params web.Params) (web.Response, error) {
		seen = params
		return web.Markup([]byte("updated"), http.StatusOK), nil
	}, "")

	resp := router.Dispatch(context.Background(), web.Request{
		Path:    "/update",
		Method:  http.MethodPost,
		RawBody: []byte("stock_list=161725%2C110011&note=two+words&note=second"),
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "161725,110011", seen.First("stock_list", ""))
	require.Equal(t, []string{"two words", "second"}, seen.All("note"))
}

func TestRouter_WebhookForwardsRawBytesAndHeaders(t *testing.T) {
	webhooks := new(mockWebhooks)
	router := setupRouter(t, webhooks)

	header := http.Header{
		"X-Telegram-Bot-Api-Secret-Token": []string{"s3cret"},
		"Content-Type":                    []string{"application/json"},
	}
	body := []byte(`{"update_id":7}`)

	webhooks.
		On("HandleWebhook", mock.Anything, "telegram", header, body).
		Return(web.WebhookResult{StatusCode: http.StatusOK, Body: map[string]any{"ok": true}}, nil)

	resp := router.Dispatch(context.Background(), web.Request{
		Path:    "/bot/telegram",
		Method:  http.MethodPost,
		Header:  header,
		RawBody: body,
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json; charset=utf-8", resp.ContentType)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(resp.Body, &decoded))
	require.Equal(t, true, decoded["ok"])

	webhooks.AssertExpectations(t)
}

func TestRouter_WebhookRelaysServiceStatusCode(t *testing.T) {
	webhooks := new(mockWebhooks)
	router := setupRouter(t, webhooks)

	webhooks.
		On("HandleWebhook", mock.Anything, "discord", mock.Anything, mock.Anything).
		Return(web.WebhookResult{StatusCode: http.StatusAccepted, Body: map[string]any{"queued": true}}, nil)

	resp := router.Dispatch(context.Background(), web.Request{
		Path:    "/bot/discord",
		Method:  http.MethodPost,
		RawBody: []byte(`{}`),
	})

	require.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestRouter_WebhookMissingPlatformIs404WithoutCall(t *testing.T) {
	webhooks := new(mockWebhooks)
	router := setupRouter(t, webhooks)

	// No platform segment at all: falls through to the regular POST
	// path and misses the route table.
	resp := router.Dispatch(context.Background(), web.Request{Path: "/bot", Method: http.MethodPost})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Reserved prefix but an empty platform segment.
	resp = router.Dispatch(context.Background(), web.Request{Path: "/bot/", Method: http.MethodPost})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	webhooks.AssertNotCalled(t, "HandleWebhook", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_WebhookFailureIsJSON500(t *testing.T) {
	webhooks := new(mockWebhooks)
	router := setupRouter(t, webhooks)

	webhooks.
		On("HandleWebhook", mock.Anything, "telegram", mock.Anything, mock.Anything).
		Return(web.WebhookResult{}, errors.New("relay exploded"))

	resp := router.Dispatch(context.Background(), web.Request{
		Path:    "/bot/telegram",
		Method:  http.MethodPost,
		RawBody: []byte(`{}`),
	})

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "application/json; charset=utf-8", resp.ContentType)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	require.Equal(t, "relay exploded", body["error"])
}

func TestRouter_RoutesSortedByPathThenMethod(t *testing.T) {
	router := setupRouter(t, nil)

	router.Register("/b", http.MethodGet, web.KindMarkup, staticHandler(""), "b page")
	router.Register("/a", http.MethodGet, web.KindMarkup, staticHandler(""), "a page")
	router.Register("/a", http.MethodPost, web.KindMarkup, staticHandler(""), "a update")

	infos := router.Routes()
	require.Len(t, infos, 3)
	require.Equal(t, web.RouteInfo{Method: "GET", Path: "/a", Description: "a page"}, infos[0])
	require.Equal(t, web.RouteInfo{Method: "POST", Path: "/a", Description: "a update"}, infos[1])
	require.Equal(t, web.RouteInfo{Method: "GET", Path: "/b", Description: "b page"}, infos[2])
}
