package shell

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Shell runs an fx application: start, wait for a shutdown signal,
// stop gracefully. Modules shared by every command are supplied at
// construction, command-specific ones at Run time.
type Shell struct {
	log     *zap.Logger
	options []fx.Option
}

func New(log *zap.Logger, options ...fx.Option) *Shell {
	return &Shell{
		log:     log,
		options: options,
	}
}

func (s *Shell) Run(ctx context.Context, options ...fx.Option) error {
	defer s.log.Sync()

	appCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := fx.New(
		// the application context, for anything that outlives a request
		fx.Supply(fx.Annotate(appCtx, fx.As(new(context.Context)))),
		// the root logger, reused for fx's own events
		fx.Supply(s.log),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: s.log.Named("fx")}
		}),
		fx.Options(s.options...),
		fx.Options(options...),
	)

	startCtx, cancelStart := context.WithTimeout(ctx, app.StartTimeout())
	defer cancelStart()

	if err := app.Start(startCtx); err != nil {
		return NewExitError(1)
	}

	sig := <-app.Wait()

	stopCtx, cancelStop := context.WithTimeout(ctx, app.StopTimeout())
	defer cancelStop()

	if err := app.Stop(stopCtx); err != nil {
		return NewExitError(1)
	}

	return NewExitError(sig.ExitCode)
}
