package lambda

import (
	"go.uber.org/fx"

	"github.com/Alvin-MXK/daily-stock-analysis/handler"
	"github.com/Alvin-MXK/daily-stock-analysis/util/logging"
)

func Module(config Config) fx.Option {
	return fx.Module(
		"lambda",
		// provide lambda config
		fx.Supply(config),
		// rename logger for module
		logging.DecorateLogger("lambda"),
		// provide handlers
		handler.Module(),
		// provide lambda runtime handler
		fx.Provide(NewLifecycleHandler),
		// invoke handler
		fx.Invoke(func(*LambdaHandler) {}),
	)
}
