package market

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module("market",
		fx.Provide(NewClient),
	)
}
