package web

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"

	"github.com/getsentry/sentry-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// webhookPrefix is the reserved path prefix for bot callbacks. Paths
// below it bypass the route table and form decoding entirely.
const webhookPrefix = "/bot/"

// ErrorPageFunc renders the markup body for router-level failures
// (404s and handler errors on markup routes). The page layer provides
// the real implementation; a plain fallback is used when absent.
type ErrorPageFunc func(status int, title, message string) []byte

// RouterParams defines the dependencies for the router.
type RouterParams struct {
	fx.In

	Webhooks  WebhookService
	ErrorPage ErrorPageFunc `optional:"true"`

	Log *zap.Logger
}

// Router owns the route table and converts every dispatch outcome,
// including failures, into a framed Response. The table is populated
// once during startup and is read-only while serving traffic, so
// concurrent dispatch needs no locking.
type Router struct {
	routes    map[string]map[string]Route
	webhooks  WebhookService
	errorPage ErrorPageFunc
	log       *zap.Logger
}

func NewRouter(params RouterParams) *Router {
	errorPage := params.ErrorPage
	if errorPage == nil {
		errorPage = plainErrorPage
	}

	return &Router{
		routes:    make(map[string]map[string]Route),
		webhooks:  params.Webhooks,
		errorPage: errorPage,
		log:       params.Log,
	}
}

// Register stores the route for (path, method), replacing any prior
// registration for the same pair. Paths are matched by exact string
// equality; the query string is never part of the path key.
func (r *Router) Register(path, method string, kind Kind, handler HandlerFunc, description string) {
	method = strings.ToUpper(method)

	byMethod, ok := r.routes[path]
	if !ok {
		byMethod = make(map[string]Route)
		r.routes[path] = byMethod
	}

	byMethod[method] = Route{
		Path:        path,
		Method:      method,
		Kind:        kind,
		Handler:     handler,
		Description: description,
	}

	r.log.Debug("registered route",
		zap.String("method", method),
		zap.String("path", path),
	)
}

// Match looks up the route for (path, method). The path lookup is
// case-sensitive and exact; the method is normalized to upper case.
func (r *Router) Match(path, method string) (Route, bool) {
	byMethod, ok := r.routes[path]
	if !ok {
		return Route{}, false
	}

	route, ok := byMethod[strings.ToUpper(method)]
	return route, ok
}

// Routes lists all registered routes sorted by (path, method)
// ascending. Used for introspection, not on the request hot path.
func (r *Router) Routes() []RouteInfo {
	infos := make([]RouteInfo, 0, len(r.routes))
	for path, byMethod := range r.routes {
		for method, route := range byMethod {
			infos = append(infos, RouteInfo{
				Method:      method,
				Path:        path,
				Description: route.Description,
			})
		}
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Path != infos[j].Path {
			return infos[i].Path < infos[j].Path
		}
		return infos[i].Method < infos[j].Method
	})

	return infos
}

// Dispatch matches the request to a route, invokes its handler and
// converts the outcome into a response. No failure escapes Dispatch:
// each request fails independently and the router stays usable for
// subsequent requests.
func (r *Router) Dispatch(ctx context.Context, req Request) Response {
	if strings.ToUpper(req.Method) == http.MethodPost {
		return r.dispatchPost(ctx, req)
	}
	return r.dispatchGet(ctx, req)
}

func (r *Router) dispatchGet(ctx context.Context, req Request) Response {
	route, ok := r.Match(req.Path, req.Method)
	if !ok {
		return r.notFound(req.Path)
	}

	return r.invoke(ctx, route, req.Query)
}

func (r *Router) dispatchPost(ctx context.Context, req Request) Response {
	if strings.HasPrefix(req.Path, webhookPrefix) {
		return r.dispatchWebhook(ctx, req)
	}

	req.Form = ParseParams(string(req.RawBody))

	route, ok := r.Match(req.Path, http.MethodPost)
	if !ok {
		return r.notFound(req.Path)
	}

	return r.invoke(ctx, route, req.Form)
}

// dispatchWebhook forwards the raw body and headers of a /bot/
// callback to the webhook service. Webhook callers are programmatic
// integrations, so failures are reported as JSON rather than markup.
func (r *Router) dispatchWebhook(ctx context.Context, req Request) Response {
	segments := strings.Split(strings.Trim(req.Path, "/"), "/")
	if len(segments) < 2 {
		// Malformed webhook path, nothing external is invoked.
		return JSON(map[string]any{"error": "webhook platform missing"}, http.StatusNotFound)
	}
	platform := segments[1]

	result, err := r.webhooks.HandleWebhook(ctx, platform, req.Header, req.RawBody)
	if err != nil {
		r.log.Error("webhook dispatch failed",
			zap.String("platform", platform),
			zap.String("path", req.Path),
			zap.Error(err),
		)
		sentry.CaptureException(err)

		return JSON(map[string]any{"error": err.Error()}, http.StatusInternalServerError)
	}

	return JSON(result.Body, result.StatusCode)
}

func (r *Router) invoke(ctx context.Context, route Route, params Params) Response {
	resp, err := route.Handler(ctx, params)
	if err != nil {
		return r.failure(route, err)
	}
	return resp
}

// failure converts a handler error into a response matching the
// route's declared response kind.
func (r *Router) failure(route Route, err error) Response {
	status := statusForError(err)

	r.log.Error("handler failed",
		zap.String("method", route.Method),
		zap.String("path", route.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	if status >= http.StatusInternalServerError {
		sentry.CaptureException(err)
	}

	if route.Kind == KindJSON {
		return JSON(map[string]any{"success": false, "error": err.Error()}, status)
	}

	body := r.errorPage(status, http.StatusText(status), err.Error())
	return Markup(body, status)
}

// notFound reports an unregistered (path, method) pair. This is an
// expected class of client mistake, so it is not logged as an error.
func (r *Router) notFound(path string) Response {
	r.log.Debug("no route", zap.String("path", path))

	message := fmt.Sprintf("path %s does not exist", path)
	body := r.errorPage(http.StatusNotFound, "Page Not Found", message)

	return Markup(body, http.StatusNotFound)
}

func plainErrorPage(status int, title, message string) []byte {
	return fmt.Appendf(nil,
		"<html><body><h1>%d %s</h1><p>%s</p></body></html>",
		status, html.EscapeString(title), html.EscapeString(message),
	)
}
