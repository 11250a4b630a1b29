package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Alvin-MXK/daily-stock-analysis/internal/metrics"
	"github.com/Alvin-MXK/daily-stock-analysis/web"
)

type DashboardParams struct {
	fx.In

	Router  *web.Router
	Metrics *metrics.Registry

	Log *zap.Logger
}

// DashboardHandler bridges net/http to the router. It normalizes the
// inbound request, dispatches it and frames the response with explicit
// Content-Type and Content-Length headers.
type DashboardHandler struct {
	router  *web.Router
	metrics *metrics.Registry
	log     *zap.Logger
}

func NewDashboardHandler(params DashboardParams) *DashboardHandler {
	return &DashboardHandler{
		router:  params.Router,
		metrics: params.Metrics,
		log:     params.Log.Named("http"),
	}
}

func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	resp := h.router.Dispatch(r.Context(), web.Request{
		Path:    r.URL.Path,
		Method:  r.Method,
		Query:   web.ParseParams(r.URL.RawQuery),
		RawBody: readBody(r),
		Header:  r.Header,
	})

	w.Header().Set("Content-Type", resp.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		h.log.Debug("response write failed", zap.Error(err))
	}

	h.metrics.ObserveRequest(r.Method, resp.StatusCode, time.Since(start))
}

// readBody reads exactly Content-Length bytes. A missing or invalid
// length, or a short read, yields an empty body; the dispatch then
// proceeds as if no body was sent.
func readBody(r *http.Request) []byte {
	if r.Body == nil || r.ContentLength <= 0 {
		return nil
	}

	body := make([]byte, r.ContentLength)
	if _, err := io.ReadFull(r.Body, body); err != nil {
		return nil
	}
	return body
}
