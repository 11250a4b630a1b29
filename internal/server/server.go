package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type HttpServerParams struct {
	fx.In

	Context context.Context

	Config HttpConfig

	Handlers []*HttpHandler `group:"handlers"`
	Logger   *zap.Logger
}

// HttpServer is the standalone transport for the dashboard. Socket
// and timeout concerns live here; the mounted handlers only ever see
// fully framed requests.
type HttpServer struct {
	ctx    context.Context
	host   string
	port   int
	server *http.Server
	log    *zap.Logger
}

func NewHttpServer(params HttpServerParams) *HttpServer {
	mux := http.NewServeMux()

	for _, handler := range params.Handlers {
		mux.Handle(handler.Name, handler.Handler)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", params.Config.Host, params.Config.Port),
		Handler: mux,
	}

	return &HttpServer{
		ctx:    params.Context,
		host:   params.Config.Host,
		port:   params.Config.Port,
		server: server,
		log:    params.Logger,
	}
}

func NewLifecycleServer(params HttpServerParams, lc fx.Lifecycle) *HttpServer {
	server := NewHttpServer(params)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go server.Serve(ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
	return server
}

func (s *HttpServer) Serve(context.Context) error {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	cfg := net.ListenConfig{}

	listener, err := cfg.Listen(
		ctx,
		"tcp",
		fmt.Sprintf("%s:%d", s.host, s.port),
	)

	if err != nil {
		s.log.With(zap.Error(err)).Fatal("failed to listen")
		return err
	}

	s.log.With(zap.String("address", listener.Addr().String())).Info("dashboard listening")

	if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
		s.log.With(zap.Error(err)).Error("failed to serve")
		return err
	}

	return nil
}

func (s *HttpServer) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		s.log.With(zap.Error(err)).Error("failed to shutdown")
		return err
	}

	return nil
}
