package analysis

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module("analysis",
		fx.Provide(
			NewGeminiClient,
			NewAnalyzerFactory,
			NewLifecycleService,
		),
	)
}
