package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Alvin-MXK/daily-stock-analysis/config"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/shell"
	"github.com/Alvin-MXK/daily-stock-analysis/util/conf"
	"github.com/Alvin-MXK/daily-stock-analysis/util/logging"
)

var (
	appName  = "daily-stock-analysis"
	appUsage = `A monitoring dashboard for a fund portfolio: queues
model-driven analyses, tracks their history and serves the results
over http pages, a json api and bot webhooks.`
	rootApp = &cli.App{
		Name:            appName,
		Usage:           appUsage,
		HideHelpCommand: true,
		Args:            true,
		Flags: []cli.Flag{
			// general flags
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "set the log level. Options: debug, info, warn, error, panic, fatal.",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:     "env-file",
				Usage:    "the dotenv file holding the stock list and provider keys.",
				Category: "settings",
				EnvVars:  []string{"SETTINGS_ENV_FILE"},
			},
		},
		Before: func(ctx *cli.Context) error {
			// create the logger
			log, err := createLogger(ctx)
			if err != nil {
				return err
			}

			// inject logger into cli context
			ctx.Context = logging.ContextWithLogger(ctx.Context, log)

			// parse config using defaults, env and cli flags
			cfg, err := conf.Parse[config.Config](conf.ParseOptions{
				Cli: ctx,
				CliMap: map[string]string{
					"env-file": "settings.env_file",
				},
				Defaults:  config.Defaults(),
				EnvPrefix: config.EnvPrefix,
				Log:       log,
			})
			if err != nil {
				return err
			}

			// inject the config into the cli context
			ctx.Context = conf.ContextWithConfig(ctx.Context, cfg)

			return nil
		},
		After: func(ctx *cli.Context) error {
			log, err := logging.LoggerFromContext(ctx.Context)
			if err != nil {
				return err
			}

			log.Sync()

			return nil
		},
	}
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version",
		Usage:              "print the version",
		DisableDefaultText: true,
	}
}

type ExecuteParams struct {
	Version  string
	Compiled time.Time
}

func Execute(params ExecuteParams) {
	rootApp.Version = params.Version
	rootApp.Compiled = params.Compiled

	run(context.Background(), os.Args)
}

func run(ctx context.Context, args []string) {
	err := rootApp.RunContext(ctx, args)

	// if app exited without error, return
	if err == nil {
		return
	}

	// if app exited with an ExitError, exit with the given exit code
	var exitErr *shell.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.ExitCode)
	}

	fmt.Printf("exit error: %s\n", err.Error())

	// otherwise, exit with exit code 1
	os.Exit(1)
}

func createLogger(ctx *cli.Context) (*zap.Logger, error) {
	level := getLogLevelFromCLI(ctx)
	format := getLogFormatFromCLI(ctx)

	var config zap.Config
	if format == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	config.InitialFields = map[string]any{
		"app": appName,
	}

	config.Level = level

	return config.Build()
}

func getLogFormatFromCLI(ctx *cli.Context) string {
	format := ctx.String("log-format")
	if format != "" {
		return format
	}

	return "production"
}

func getLogLevelFromCLI(ctx *cli.Context) zap.AtomicLevel {
	lvl := ctx.String("log-level")

	if atom, err := zap.ParseAtomicLevel(lvl); err == nil {
		return atom
	}

	return zap.NewAtomicLevelAt(zap.InfoLevel)
}
