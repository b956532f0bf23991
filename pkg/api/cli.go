package api

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/travigo/routespeed/pkg/export"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Serves stored segment speeds over HTTP",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:     "sqlite",
						Usage:    "SQLite database written by routespeed run",
						EnvVars:  []string{"ROUTESPEED_SQLITE"},
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					store, err := export.OpenSQLiteStore(ctx, c.String("sqlite"))
					if err != nil {
						return err
					}
					defer store.Close()

					return SetupServer(ctx, c.String("listen"), store)
				},
			},
		},
	}
}

