package templates

import (
	"bytes"
	"fmt"
	"html/template"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Alvin-MXK/daily-stock-analysis/web"
)

type RendererParams struct {
	fx.In

	Log *zap.Logger
}

// Renderer renders the dashboard pages. All templates are parsed once
// at construction, so a template error surfaces at startup.
type Renderer struct {
	tmpl *template.Template
	log  *zap.Logger
}

func NewRenderer(params RendererParams) (*Renderer, error) {
	tmpl, err := template.New("dashboard").Parse(pageTemplates)
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}

	return &Renderer{
		tmpl: tmpl,
		log:  params.Log.Named("templates"),
	}, nil
}

func (r *Renderer) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) FundList(data FundListData) ([]byte, error) {
	return r.render("fund_list", data)
}

func (r *Renderer) FundDetail(data FundDetailData) ([]byte, error) {
	return r.render("fund_detail", data)
}

func (r *Renderer) History(data HistoryData) ([]byte, error) {
	return r.render("history", data)
}

func (r *Renderer) ReviewList(data ReviewListData) ([]byte, error) {
	return r.render("review_list", data)
}

func (r *Renderer) ReviewDetail(data ReviewDetailData) ([]byte, error) {
	return r.render("review_detail", data)
}

func (r *Renderer) ConfigPage(data ConfigData) ([]byte, error) {
	return r.render("config", data)
}

func (r *Renderer) SystemStatus(data StatusData) ([]byte, error) {
	return r.render("status", data)
}

// ErrorPage renders the markup error page. It never fails; a template
// error falls back to a minimal page so error paths stay renderable.
func (r *Renderer) ErrorPage(status int, title, message string) []byte {
	body, err := r.render("error", struct {
		Status  int
		Title   string
		Message string
	}{status, title, message})
	if err != nil {
		r.log.Error("error page render failed", zap.Error(err))
		return []byte(fmt.Sprintf(
			"<html><body><h1>%d %s</h1></body></html>",
			status, template.HTMLEscapeString(title),
		))
	}
	return body
}

// NewErrorPageFunc exposes the renderer's error page to the router.
func NewErrorPageFunc(renderer *Renderer) web.ErrorPageFunc {
	return renderer.ErrorPage
}
