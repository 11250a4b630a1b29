package handler

import (
	"net/http"

	"github.com/Alvin-MXK/daily-stock-analysis/internal/metrics"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/server"
	"github.com/Alvin-MXK/daily-stock-analysis/web"
)

// RegisterRoutes binds every dashboard route to the router. Called
// once during startup via fx.Invoke.
func RegisterRoutes(router *web.Router, pages *PageHandler, api *APIHandler) {
	router.Register("/", http.MethodGet, web.KindMarkup, pages.Index,
		"watched fund list")
	router.Register("/fund/detail", http.MethodGet, web.KindMarkup, pages.FundDetail,
		"fund profile and latest analysis")
	router.Register("/history", http.MethodGet, web.KindMarkup, pages.History,
		"paged analysis history")
	router.Register("/market_review", http.MethodGet, web.KindMarkup, pages.MarketReviewList,
		"paged market reviews")
	router.Register("/market_review/detail", http.MethodGet, web.KindMarkup, pages.MarketReviewDetail,
		"single market review")
	router.Register("/market_review/run", http.MethodGet, web.KindMarkup, pages.RunMarketReview,
		"generate a market review now")
	router.Register("/config", http.MethodGet, web.KindMarkup, pages.ConfigPage,
		"settings form")
	router.Register("/update", http.MethodPost, web.KindMarkup, pages.UpdateConfig,
		"apply settings changes")
	router.Register("/email/send_report", http.MethodPost, web.KindJSON, pages.SendEmailReport,
		"mail the latest verdicts")
	router.Register("/system/status", http.MethodGet, web.KindMarkup, pages.SystemStatus,
		"recent tasks and health")

	router.Register("/health", http.MethodGet, web.KindJSON, api.Health,
		"liveness probe")
	router.Register("/analysis", http.MethodGet, web.KindJSON, api.SubmitAnalysis,
		"queue analysis for one fund")
	router.Register("/analysis/all", http.MethodGet, web.KindMarkup, pages.RunAllAnalysis,
		"queue analysis for all watched funds")
	router.Register("/tasks", http.MethodGet, web.KindJSON, api.Tasks,
		"tracked tasks, newest first")
	router.Register("/task", http.MethodGet, web.KindJSON, api.TaskStatus,
		"single task status")
}

// NewDashboardRoute mounts the dispatching handler at the mux root.
func NewDashboardRoute(dashboard *DashboardHandler) server.HttpHandlerResult {
	return server.AsHttpHandler("/", dashboard)
}

// NewMetricsRoute mounts the prometheus endpoint beside the dashboard.
func NewMetricsRoute(registry *metrics.Registry) server.HttpHandlerResult {
	return server.AsHttpHandler("/metrics", registry.Handler())
}
