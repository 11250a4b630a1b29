package webhook

import (
	"go.uber.org/fx"

	"github.com/Alvin-MXK/daily-stock-analysis/web"
)

func Module() fx.Option {
	return fx.Module("webhook",
		fx.Provide(
			NewTelegramPlatform,
			NewGenericPlatform,
			NewService,
			func(service *Service) web.WebhookService { return service },
		),
	)
}
