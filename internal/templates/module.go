package templates

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module("templates",
		fx.Provide(
			NewRenderer,
			NewErrorPageFunc,
		),
	)
}
