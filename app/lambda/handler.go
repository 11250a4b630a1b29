package lambda

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Alvin-MXK/daily-stock-analysis/internal/server"
)

type LambdaHandlerParams struct {
	fx.In

	// Config is the configuration for the Lambda handler.
	Config Config

	// Handlers is a slice of HTTP handlers grouped together.
	Handlers []*server.HttpHandler `group:"handlers"`

	// Context is the context for the Lambda handler.
	Context context.Context

	// Logger is the logger for the Lambda handler.
	Logger *zap.Logger
}

// LambdaHandler serves the dashboard mux through the AWS Lambda
// runtime interface instead of a listening socket.
type LambdaHandler struct {
	config Config
	ctx    context.Context
	cancel context.CancelFunc
	mux    *http.ServeMux
	log    *zap.Logger
}

func NewLambdaHandler(params LambdaHandlerParams) *LambdaHandler {
	ctx, cancel := context.WithCancel(params.Context)

	mux := http.NewServeMux()
	for _, handler := range params.Handlers {
		mux.Handle(handler.Name, handler.Handler)
	}

	return &LambdaHandler{
		config: params.Config,
		ctx:    ctx,
		cancel: cancel,
		mux:    mux,
		log:    params.Logger,
	}
}

// NewLifecycleHandler attaches lifecycle hooks that start and stop
// the handler with the application.
func NewLifecycleHandler(params LambdaHandlerParams, lc fx.Lifecycle) *LambdaHandler {
	handler := NewLambdaHandler(params)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return handler.Start()
		},
		OnStop: func(context.Context) error {
			handler.Shutdown()
			return nil
		},
	})
	return handler
}

// Start starts the Lambda handler in a new goroutine. An error is
// returned if the configured proxy source is unknown.
func (s *LambdaHandler) Start() error {
	handler, err := s.getProxyFunction()
	if err != nil {
		return err
	}

	s.log.Debug("using lambda event proxy", zap.Stringer("proxy_source", s.config.ProxySource))

	go lambda.StartWithOptions(handler, lambda.WithContext(s.ctx))

	return nil
}

// Shutdown cancels the execution of the LambdaHandler.
func (s *LambdaHandler) Shutdown() {
	s.cancel()
}

func (s *LambdaHandler) getProxyFunction() (any, error) {
	switch s.config.ProxySource {
	case ProxySourceApiGatewayV1:
		return httpadapter.New(s.mux).ProxyWithContext, nil
	case ProxySourceApiGatewayV2:
		return httpadapter.NewV2(s.mux).ProxyWithContext, nil
	case ProxySourceAlb:
		return httpadapter.NewALB(s.mux).ProxyWithContext, nil
	default:
		return nil, fmt.Errorf("invalid proxy source: %s", s.config.ProxySource)
	}
}
