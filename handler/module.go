package handler

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module("handler",
		fx.Provide(
			NewPageHandler,
			NewAPIHandler,
			NewDashboardHandler,
			NewDashboardRoute,
			NewMetricsRoute,
		),
		fx.Invoke(RegisterRoutes),
	)
}
