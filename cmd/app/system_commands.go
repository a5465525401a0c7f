package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/allisson/quickie/cmd/app/commands"
	"github.com/allisson/quickie/internal/app"
	"github.com/allisson/quickie/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations for the SQL store backends",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(cfg *config.Config, container *app.Container) error {
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				})
			},
		},
		{
			Name:  "purge-expired",
			Usage: "Delete expired entries from the SQL store",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Usage:   "Show how many entries would be deleted without deleting",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(_ *config.Config, container *app.Container) error {
					purger, err := container.ExpiredPurger()
					if err != nil {
						return err
					}
					return commands.RunPurgeExpired(
						ctx,
						purger,
						container.Logger(),
						commands.DefaultIO().Writer,
						time.Now().UTC(),
						cmd.Bool("dry-run"),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
