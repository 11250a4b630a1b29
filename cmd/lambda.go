package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/Alvin-MXK/daily-stock-analysis/app"
	"github.com/Alvin-MXK/daily-stock-analysis/app/lambda"
	"github.com/Alvin-MXK/daily-stock-analysis/util/conf"
	"github.com/Alvin-MXK/daily-stock-analysis/util/logging"
)

var (
	lambdaCmdDescription = `The lambda command starts the dashboard as an AWS Lambda
runtime interface client, letting the same handlers serve API
Gateway or ALB events without a listening socket.

The command starts the AWS runtime interface client and blocks
indefinitely, processing incoming AWS Lambda events.`
	lambdaCmd = &cli.Command{
		Name:        "lambda",
		Usage:       "Run the AWS Lambda handler",
		Description: lambdaCmdDescription,
		Action:      lambdaAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "lambda-proxy-source",
				Usage:    "the source of the AWS Lambda event. Options: API_GW_V1, API_GW_V2, ALB.",
				Value:    "API_GW_V2",
				EnvVars:  []string{"LAMBDA_PROXY_SOURCE"},
				Category: "lambda",
			},
		},
	}
)

func lambdaAction(ctx *cli.Context) error {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return err
	}

	app, err := app.New(ctx)
	if err != nil {
		return err
	}

	cfg, err := conf.Parse[lambda.Config](conf.ParseOptions{
		Log: log,
		Cli: ctx,
	})
	if err != nil {
		return err
	}

	log.Info("starting AWS Lambda handler")

	return app.Run(ctx.Context, lambda.Module(cfg))
}

func init() {
	rootApp.Commands = append(rootApp.Commands, lambdaCmd)
}
