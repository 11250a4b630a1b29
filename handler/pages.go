package handler

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Alvin-MXK/daily-stock-analysis/internal/analysis"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/market"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/notify"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/settings"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/templates"
	"github.com/Alvin-MXK/daily-stock-analysis/web"
)

const (
	historyPageSize = 20
	reviewPageSize  = 10
	timeFormat      = "2006-01-02 15:04"
)

// updatableKeys is the closed set of settings keys POST /update may
// touch. Form keys outside this set are discarded, never written.
var updatableKeys = []string{
	"STOCK_LIST",
	"GEMINI_API_KEY",
	"SCHEDULE_TIME",
	"EMAIL_SENDER",
	"EMAIL_PASSWORD",
	"EMAIL_RECEIVERS",
	"TAVILY_API_KEYS",
	"SERPAPI_API_KEYS",
}

// maskedKeys are settings shown on the config page with their values
// obscured. The settings layer skips masked values on update, so a
// round-tripped form never overwrites them.
var maskedKeys = []string{
	"GEMINI_API_KEY",
	"EMAIL_PASSWORD",
	"TAVILY_API_KEYS",
	"SERPAPI_API_KEYS",
}

type PagesParams struct {
	fx.In

	Renderer *templates.Renderer
	Analysis *analysis.Service
	Settings *settings.Service
	Market   *market.Client
	Mailer   notify.Mailer

	Log *zap.Logger
}

// PageHandler serves the markup pages of the dashboard.
type PageHandler struct {
	renderer *templates.Renderer
	analysis *analysis.Service
	settings *settings.Service
	market   *market.Client
	mailer   notify.Mailer
	log      *zap.Logger
}

func NewPageHandler(params PagesParams) *PageHandler {
	return &PageHandler{
		renderer: params.Renderer,
		analysis: params.Analysis,
		settings: params.Settings,
		market:   params.Market,
		mailer:   params.Mailer,
		log:      params.Log.Named("pages"),
	}
}

func markup(body []byte, err error) (web.Response, error) {
	if err != nil {
		return web.Response{}, err
	}
	return web.Markup(body, http.StatusOK), nil
}

func (h *PageHandler) fundRows() []templates.FundRow {
	codes := h.settings.StockList()
	latest := h.analysis.LatestSuccessful(codes)

	rows := make([]templates.FundRow, 0, len(codes))
	for _, code := range codes {
		row := templates.FundRow{Code: code, Name: "fund " + code}
		if record, ok := latest[code]; ok {
			row.Name = record.Name
			row.HasAnalysis = true
			row.Advice = record.Advice
			row.Score = record.Score
			row.Trend = record.Trend
			row.Summary = record.Summary
			row.AnalyzedAt = record.CreatedAt.Format(timeFormat)
		}
		rows = append(rows, row)
	}
	return rows
}

// Index renders the watched fund list with the latest verdicts.
func (h *PageHandler) Index(_ context.Context, _ web.Params) (web.Response, error) {
	return markup(h.renderer.FundList(templates.FundListData{
		Funds:        h.fundRows(),
		ScheduleTime: h.settings.ScheduleTime(),
	}))
}

// FundDetail renders one fund's profile, market data and latest
// analysis. Market data failures leave their section empty rather
// than failing the page.
func (h *PageHandler) FundDetail(ctx context.Context, params web.Params) (web.Response, error) {
	code := params.First("code", "")
	if code == "" {
		return web.Response{}, fmt.Errorf("missing fund code: %w", web.ErrBadRequest)
	}

	data := templates.FundDetailData{Code: code, Name: "fund " + code}

	if info, err := h.market.Info(ctx, code); err != nil {
		h.log.Debug("fund info unavailable", zap.String("code", code), zap.Error(err))
	} else {
		if info.Name != "" {
			data.Name = info.Name
		}
		data.Profile = []templates.KeyValue{
			{Key: "Type", Value: info.Type},
			{Key: "Manager", Value: info.Manager},
			{Key: "Net value", Value: fmt.Sprintf("%.4f", info.NetValue)},
			{Key: "Updated", Value: info.UpdatedAt},
		}
	}

	if rates, err := h.market.RealtimeRates(ctx, []string{code}); err == nil {
		if quote, ok := rates[code]; ok {
			data.Valuation = &templates.ValuationView{
				ChangePercent: quote.ChangePercent,
				Source:        quote.Source,
				Time:          quote.Time,
			}
		}
	}

	if periods, err := h.market.PeriodChanges(ctx, code); err == nil {
		labels := make([]string, 0, len(periods))
		for label := range periods {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			data.Performance = append(data.Performance, templates.KeyValue{
				Key:   label,
				Value: fmt.Sprintf("%.2f%%", periods[label]),
			})
		}
	}

	if holdings, err := h.market.Holdings(ctx, code); err == nil {
		for _, holding := range holdings {
			data.Holdings = append(data.Holdings, templates.HoldingRow{
				Code:  holding.Code,
				Name:  holding.Name,
				Ratio: holding.Ratio,
			})
		}
	}

	if latest, ok := h.analysis.LatestSuccessful([]string{code})[code]; ok {
		if data.Name == "fund "+code && latest.Name != "" {
			data.Name = latest.Name
		}
		data.Latest = &templates.AnalysisView{
			Advice:    latest.Advice,
			Score:     latest.Score,
			Trend:     latest.Trend,
			Summary:   latest.Summary,
			CreatedAt: latest.CreatedAt.Format(timeFormat),
		}
	}

	return markup(h.renderer.FundDetail(data))
}

func recordRows(records []analysis.Record) []templates.RecordRow {
	rows := make([]templates.RecordRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, templates.RecordRow{
			ID:        record.ID,
			Code:      record.Code,
			Name:      record.Name,
			Success:   record.Success,
			Advice:    record.Advice,
			Score:     record.Score,
			Trend:     record.Trend,
			Summary:   record.Summary,
			Error:     record.Error,
			CreatedAt: record.CreatedAt.Format(timeFormat),
		})
	}
	return rows
}

func pageNumber(params web.Params) int {
	page, err := strconv.Atoi(params.First("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func limitParam(params web.Params, fallback int) int {
	limit, err := strconv.Atoi(params.First("limit", ""))
	if err != nil || limit < 1 {
		return fallback
	}
	return limit
}

func successParam(params web.Params) *bool {
	switch strings.ToLower(params.First("success", "")) {
	case "true":
		value := true
		return &value
	case "false":
		value := false
		return &value
	}
	return nil
}

func pageCount(total, limit int) int {
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	return pages
}

// History renders paged analysis records. The query accepts code,
// success, sort_by, sort_order, page and limit.
func (h *PageHandler) History(_ context.Context, params web.Params) (web.Response, error) {
	code := params.First("code", "")
	page := pageNumber(params)
	limit := limitParam(params, historyPageSize)

	query := analysis.HistoryQuery{
		Code:      code,
		Success:   successParam(params),
		SortBy:    params.First("sort_by", "created_at"),
		Ascending: strings.EqualFold(params.First("sort_order", "desc"), "asc"),
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	total := h.analysis.HistoryCount(query)
	pages := pageCount(total, limit)

	return markup(h.renderer.History(templates.HistoryData{
		Records: recordRows(h.analysis.History(query)),
		Code:    code,
		Total:   total,
		Page:    page,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page < pages,
		Prev:    page - 1,
		Next:    page + 1,
	}))
}

// MarketReviewList renders paged portfolio reviews.
func (h *PageHandler) MarketReviewList(_ context.Context, params web.Params) (web.Response, error) {
	page := pageNumber(params)
	limit := limitParam(params, reviewPageSize)

	query := analysis.HistoryQuery{
		Code:   analysis.MarketReviewCode,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	total := h.analysis.HistoryCount(query)
	pages := pageCount(total, limit)

	return markup(h.renderer.ReviewList(templates.ReviewListData{
		Records: recordRows(h.analysis.History(query)),
		Total:   total,
		Page:    page,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page < pages,
		Prev:    page - 1,
		Next:    page + 1,
	}))
}

// MarketReviewDetail renders one review's full report.
func (h *PageHandler) MarketReviewDetail(_ context.Context, params web.Params) (web.Response, error) {
	raw := params.First("id", "")
	if raw == "" {
		return web.Response{}, fmt.Errorf("missing review id: %w", web.ErrBadRequest)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return web.Response{}, fmt.Errorf("invalid review id %q: %w", raw, web.ErrBadRequest)
	}

	record, ok := h.analysis.HistoryRecord(id)
	if !ok || record.Code != analysis.MarketReviewCode {
		return web.Response{}, fmt.Errorf("market review %d: %w", id, web.ErrNotFound)
	}

	rows := recordRows([]analysis.Record{record})
	return markup(h.renderer.ReviewDetail(templates.ReviewDetailData{
		Record: rows[0],
		Report: record.Summary,
	}))
}

// RunMarketReview generates a portfolio review synchronously and
// renders it.
func (h *PageHandler) RunMarketReview(ctx context.Context, _ web.Params) (web.Response, error) {
	record, err := h.analysis.RunMarketReview(ctx, h.settings.StockList())
	if err != nil {
		return web.Response{}, err
	}

	rows := recordRows([]analysis.Record{record})
	return markup(h.renderer.ReviewDetail(templates.ReviewDetailData{
		Record: rows[0],
		Report: record.Summary,
	}))
}

// RunAllAnalysis queues an analysis for every watched fund and shows
// the status page tracking them.
func (h *PageHandler) RunAllAnalysis(ctx context.Context, params web.Params) (web.Response, error) {
	codes := h.settings.StockList()
	if len(codes) == 0 {
		return web.Response{}, fmt.Errorf("no funds configured: %w", web.ErrBadRequest)
	}

	h.analysis.RunAll(codes, params.First("report_type", "full"))

	return h.SystemStatus(ctx, nil)
}

func maskValue(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}

func (h *PageHandler) configData(message string) templates.ConfigData {
	keys := []templates.KeyValue{
		{Key: "SCHEDULE_TIME", Value: h.settings.ScheduleTime()},
		{Key: "EMAIL_SENDER", Value: h.settings.Get("EMAIL_SENDER")},
		{Key: "EMAIL_RECEIVERS", Value: h.settings.Get("EMAIL_RECEIVERS")},
	}
	for _, key := range maskedKeys {
		keys = append(keys, templates.KeyValue{
			Key:   key,
			Value: maskValue(h.settings.Get(key)),
		})
	}

	return templates.ConfigData{
		FileName:  h.settings.FileName(),
		StockList: h.settings.StockList(),
		Keys:      keys,
		Message:   message,
	}
}

// ConfigPage renders the settings form. Secrets are masked.
func (h *PageHandler) ConfigPage(_ context.Context, _ web.Params) (web.Response, error) {
	return markup(h.renderer.ConfigPage(h.configData("")))
}

// UpdateConfig applies posted settings and re-renders the form. Only
// the whitelisted keys are considered; the settings layer additionally
// ignores empty and still-masked values.
func (h *PageHandler) UpdateConfig(_ context.Context, params web.Params) (web.Response, error) {
	updates := make(map[string]string, len(updatableKeys))
	for _, key := range updatableKeys {
		updates[key] = params.First(key, "")
	}

	if err := h.settings.Update(updates); err != nil {
		return web.Response{}, err
	}

	return markup(h.renderer.ConfigPage(h.configData("Settings saved.")))
}

// SystemStatus renders recent tasks and basic health.
func (h *PageHandler) SystemStatus(_ context.Context, _ web.Params) (web.Response, error) {
	tasks := h.analysis.Tasks(20)

	rows := make([]templates.TaskRow, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, templates.TaskRow{
			ID:        task.ID,
			Code:      task.Code,
			Status:    string(task.Status),
			Error:     task.Error,
			CreatedAt: task.CreatedAt.Format(timeFormat),
		})
	}

	return markup(h.renderer.SystemStatus(templates.StatusData{
		Service:   "daily-stock-analysis",
		Healthy:   true,
		Tasks:     rows,
		FundCount: len(h.settings.StockList()),
	}))
}

// SendEmailReport mails the latest verdicts to the configured
// receivers. Registered as a JSON route so integrations can call it.
func (h *PageHandler) SendEmailReport(_ context.Context, _ web.Params) (web.Response, error) {
	rows := h.fundRows()

	report := buildReportHTML(rows, time.Now())
	subject := "Fund analysis report " + time.Now().Format("2006-01-02")

	if err := h.mailer.SendReport(subject, report); err != nil {
		return web.Response{}, fmt.Errorf("report delivery failed: %v: %w", err, web.ErrUnavailable)
	}

	return web.JSON(map[string]any{
		"success": true,
		"message": "report sent",
	}, http.StatusOK), nil
}

func buildReportHTML(rows []templates.FundRow, now time.Time) []byte {
	var b strings.Builder

	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h2>Fund analysis report %s</h2>", now.Format("2006-01-02"))
	b.WriteString("<table border=\"1\" cellpadding=\"6\" cellspacing=\"0\">")
	b.WriteString("<tr><th>Code</th><th>Name</th><th>Advice</th><th>Score</th><th>Trend</th><th>Summary</th></tr>")

	for _, row := range rows {
		if !row.HasAnalysis {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td colspan=\"4\">no analysis yet</td></tr>",
				html.EscapeString(row.Code), html.EscapeString(row.Name))
			continue
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(row.Code), html.EscapeString(row.Name),
			html.EscapeString(row.Advice), row.Score,
			html.EscapeString(row.Trend), html.EscapeString(row.Summary))
	}

	b.WriteString("</table></body></html>")
	return []byte(b.String())
}
