package market_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Alvin-MXK/daily-stock-analysis/internal/market"
)

func setupClient(t *testing.T, handler http.HandlerFunc) *market.Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return market.NewClient(market.ClientParams{
		Config: market.Config{BaseURL: server.URL, TimeoutSeconds: 2},
		Log:    zaptest.NewLogger(t),
	})
}

func TestClient_RealtimeRates(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/funds/realtime", r.URL.Path)
		require.Equal(t, "161725,110011", r.URL.Query().Get("codes"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"code":"161725","name":"白酒指数","change_percent":-1.23,"source":"estimate","time":"14:30"},
			{"code":"110011","name":"Growth Mix","change_percent":0.45,"source":"estimate","time":"14:30"}
		]`))
	})

	rates, err := client.RealtimeRates(context.Background(), []string{"161725", "110011"})
	require.NoError(t, err)
	require.Len(t, rates, 2)
	require.InDelta(t, -1.23, rates["161725"].ChangePercent, 0.001)
}

func TestClient_Info(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/funds/info", r.URL.Path)
		require.Equal(t, "161725", r.URL.Query().Get("code"))

		w.Write([]byte(`{"code":"161725","name":"白酒指数","type":"index","manager":"x","net_value":1.234}`))
	})

	info, err := client.Info(context.Background(), "161725")
	require.NoError(t, err)
	require.Equal(t, "白酒指数", info.Name)
	require.InDelta(t, 1.234, info.NetValue, 0.0001)
}

func TestClient_UpstreamFailure(t *testing.T) {
	client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Info(context.Background(), "161725")
	require.Error(t, err)
	require.Contains(t, err.Error(), "502")
}

func TestClient_NotConfigured(t *testing.T) {
	client := market.NewClient(market.ClientParams{
		Config: market.Config{},
		Log:    zaptest.NewLogger(t),
	})

	_, err := client.Holdings(context.Background(), "161725")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not configured")
}
