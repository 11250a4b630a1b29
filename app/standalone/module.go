package standalone

import (
	"go.uber.org/fx"

	"github.com/Alvin-MXK/daily-stock-analysis/handler"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/server"
	"github.com/Alvin-MXK/daily-stock-analysis/util/logging"
)

func Module(config Config) fx.Option {
	return fx.Module(
		"serve",
		// rename logger for module
		logging.DecorateLogger("serve"),
		// provide handlers
		handler.Module(),
		// provide server
		server.Module(config.HttpConfig),
	)
}
