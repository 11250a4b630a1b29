package logging

import (
	"context"
	"errors"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type contextKey int

var loggerKey = contextKey(0)

var ErrNoLoggerInContext = errors.New("no logger in context")

// ContextWithLogger stores the root logger on the context so cli
// command actions can retrieve it after the Before hook built it.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func LoggerFromContext(ctx context.Context) (*zap.Logger, error) {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger, nil
	}

	return nil, ErrNoLoggerInContext
}

// DecorateLogger renames the injected logger within an fx module.
func DecorateLogger(name string) fx.Option {
	return fx.Decorate(func(log *zap.Logger) *zap.Logger {
		return log.Named(name)
	})
}
