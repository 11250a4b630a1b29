package app

import (
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"github.com/Alvin-MXK/daily-stock-analysis/config"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/analysis"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/market"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/metrics"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/notify"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/settings"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/shell"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/templates"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/webhook"
	"github.com/Alvin-MXK/daily-stock-analysis/util/conf"
	"github.com/Alvin-MXK/daily-stock-analysis/util/logging"
	"github.com/Alvin-MXK/daily-stock-analysis/web"
)

// New builds the application shell with the modules shared by every
// command. Platform-specific modules (http server, lambda handler)
// are passed to Run by the individual commands.
func New(ctx *cli.Context) (*shell.Shell, error) {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return nil, err
	}

	cfg, err := conf.GetConfigFromContext[config.Config](ctx.Context)
	if err != nil {
		return nil, err
	}

	sharedModule := fx.Module(
		"shared",
		// provide global config
		fx.Supply(cfg),
		// provide per-package configs
		fx.Supply(cfg.Settings),
		fx.Supply(cfg.Analysis),
		fx.Supply(cfg.Market),
		fx.Supply(cfg.Mail),
		// provide the domain services
		settings.Module(),
		market.Module(),
		notify.Module(),
		analysis.Module(),
		webhook.Module(),
		// provide the web layer
		templates.Module(),
		metrics.Module(),
		web.Module(),
	)

	return shell.New(log, sharedModule), nil
}
