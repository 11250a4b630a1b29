package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/Alvin-MXK/daily-stock-analysis/app"
	"github.com/Alvin-MXK/daily-stock-analysis/app/standalone"
	"github.com/Alvin-MXK/daily-stock-analysis/internal/server"
)

var (
	serveCmdDescription = `The serve command starts the dashboard http server and blocks
	indefinitely, serving the fund pages, the json api, the
	prometheus endpoint and the bot webhooks.`
	serveCmd = &cli.Command{
		Name:        "serve",
		Usage:       "Start the dashboard http server.",
		Description: serveCmdDescription,
		Action:      serveAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "host",
				Aliases:  []string{"H"},
				Usage:    "The host to listen on.",
				Value:    "localhost",
				Category: "http",
				EnvVars:  []string{"HTTP_HOST"},
			},
			&cli.IntFlag{
				Name:     "port",
				Aliases:  []string{"P"},
				Usage:    "The port to listen on.",
				Value:    8080,
				Category: "http",
				EnvVars:  []string{"HTTP_PORT"},
			},
		},
	}
)

func serveAction(ctx *cli.Context) error {
	app, err := app.New(ctx)
	if err != nil {
		return err
	}

	httpConfig := standalone.Config{
		HttpConfig: server.HttpConfig{
			Host: ctx.String("host"),
			Port: ctx.Int("port"),
		},
	}

	return app.Run(ctx.Context, standalone.Module(httpConfig))
}

func init() {
	rootApp.Commands = append(rootApp.Commands, serveCmd)
}
