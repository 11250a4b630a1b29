package web

import (
	"context"
	"net/http"
)

// Kind is the response kind a route declares. It also selects how
// failures on that route are rendered: markup routes get error pages,
// JSON routes get JSON error objects.
type Kind int

const (
	KindMarkup Kind = iota
	KindJSON
)

// HandlerFunc is the contract between the router and business-logic
// handlers: query or form data in, a response or a declared error
// kind out. Handlers are bound explicitly at registration time.
type HandlerFunc func(ctx context.Context, params Params) (Response, error)

// Route binds a (path, method) pair to a handler. Identity is the
// pair itself; registering it again replaces the previous handler.
type Route struct {
	Path        string
	Method      string
	Kind        Kind
	Handler     HandlerFunc
	Description string
}

// RouteInfo describes a registered route for diagnostics.
type RouteInfo struct {
	Method      string
	Path        string
	Description string
}

// Request is the normalized view of an inbound request the router
// dispatches on. Query holds the decoded query string; Form is
// populated during POST dispatch from RawBody. Headers are passed
// through from the transport verbatim.
type Request struct {
	Path    string
	Method  string
	Query   Params
	Form    Params
	RawBody []byte
	Header  http.Header
}
