package server

import (
	"net/http"

	"go.uber.org/fx"
)

// HttpHandler is a named mount point on the server mux.
type HttpHandler struct {
	Name    string
	Handler http.Handler
}

type HttpHandlerResult struct {
	fx.Out

	Handler *HttpHandler `group:"handlers"`
}

// AsHttpHandler wraps an http.Handler as a mux mount provided to the
// "handlers" fx group.
func AsHttpHandler(name string, handler http.Handler) HttpHandlerResult {
	return HttpHandlerResult{
		Handler: &HttpHandler{
			Name:    name,
			Handler: handler,
		},
	}
}
