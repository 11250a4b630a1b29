package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"github.com/Alvin-MXK/daily-stock-analysis/app"
	"github.com/Alvin-MXK/daily-stock-analysis/handler"
	"github.com/Alvin-MXK/daily-stock-analysis/web"
)

var routesCmd = &cli.Command{
	Name:        "routes",
	Usage:       "Print the registered routes and exit.",
	Description: "The routes command prints the route table sorted by path and method.",
	Action:      routesAction,
}

func routesAction(ctx *cli.Context) error {
	application, err := app.New(ctx)
	if err != nil {
		return err
	}

	return application.Run(ctx.Context, fx.Options(
		handler.Module(),
		fx.Invoke(func(router *web.Router, shutdowner fx.Shutdowner) error {
			for _, route := range router.Routes() {
				fmt.Printf("%-6s %-28s %s\n", route.Method, route.Path, route.Description)
			}
			return shutdowner.Shutdown()
		}),
	))
}

func init() {
	rootApp.Commands = append(rootApp.Commands, routesCmd)
}
