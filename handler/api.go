package handler

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Alvin-MXK/daily-stock-analysis/internal/analysis"
	"github.com/Alvin-MXK/daily-stock-analysis/util"
	"github.com/Alvin-MXK/daily-stock-analysis/web"
)

// codePatterns accepts mainland fund codes, HK codes and US tickers.
var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{6}$`),
	regexp.MustCompile(`^HK\d{5}$`),
	regexp.MustCompile(`^[A-Z]{1,5}(\.[A-Z]{1,2})?$`),
}

func validCode(code string) bool {
	for _, pattern := range codePatterns {
		if pattern.MatchString(code) {
			return true
		}
	}
	return false
}

type APIParams struct {
	fx.In

	Analysis *analysis.Service

	Log *zap.Logger
}

// APIHandler serves the JSON endpoints under /api.
type APIHandler struct {
	analysis *analysis.Service
	log      *zap.Logger
}

func NewAPIHandler(params APIParams) *APIHandler {
	return &APIHandler{
		analysis: params.Analysis,
		log:      params.Log.Named("api"),
	}
}

// Health reports liveness.
func (h *APIHandler) Health(_ context.Context, _ web.Params) (web.Response, error) {
	return web.JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "daily-stock-analysis",
	}, http.StatusOK), nil
}

// SubmitAnalysis queues an analysis for one fund. The code is trimmed
// and uppercased before validation, so lowercase tickers are accepted.
func (h *APIHandler) SubmitAnalysis(_ context.Context, params web.Params) (web.Response, error) {
	code := strings.ToUpper(strings.TrimSpace(params.First("code", "")))
	if code == "" {
		return web.Response{}, fmt.Errorf("missing fund code: %w", web.ErrBadRequest)
	}
	if !validCode(code) {
		return web.Response{}, fmt.Errorf("invalid fund code %q: %w", code, web.ErrBadRequest)
	}

	reportType := params.First("report_type", "simple")
	if reportType != "full" && reportType != "simple" {
		return web.Response{}, fmt.Errorf("invalid report type %q: %w", reportType, web.ErrBadRequest)
	}

	snapshot := util.Truthy(params.First("save_context_snapshot", ""))

	task := h.analysis.Submit(code, reportType, snapshot)

	return web.JSON(map[string]any{
		"success": true,
		"task":    task,
	}, http.StatusAccepted), nil
}

// TaskStatus reports one task by id.
func (h *APIHandler) TaskStatus(_ context.Context, params web.Params) (web.Response, error) {
	id := strings.TrimSpace(params.First("id", ""))
	if id == "" {
		return web.Response{}, fmt.Errorf("missing task id: %w", web.ErrBadRequest)
	}

	task, ok := h.analysis.TaskStatus(id)
	if !ok {
		return web.Response{}, fmt.Errorf("task %s: %w", id, web.ErrNotFound)
	}

	return web.JSON(map[string]any{
		"success": true,
		"task":    task,
	}, http.StatusOK), nil
}

// Tasks lists tracked tasks, newest first, at most limit (default 20).
func (h *APIHandler) Tasks(_ context.Context, params web.Params) (web.Response, error) {
	limit, err := strconv.Atoi(params.First("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	tasks := h.analysis.Tasks(limit)

	return web.JSON(map[string]any{
		"success": true,
		"count":   len(tasks),
		"tasks":   tasks,
	}, http.StatusOK), nil
}
