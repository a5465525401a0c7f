package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/quickie/internal/app"
	"github.com/allisson/quickie/internal/config"
)

func getCommands(version string) []*cli.Command {
	return append(getSystemCommands(version), getSecretCommands()...)
}

// withContainer loads the configuration, builds a container for one command and shuts it
// down afterwards.
func withContainer(ctx context.Context, run func(cfg *config.Config, container *app.Container) error) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()

	return run(cfg, container)
}

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}
