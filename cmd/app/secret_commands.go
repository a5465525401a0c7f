package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/quickie/cmd/app/commands"
	"github.com/allisson/quickie/internal/app"
	"github.com/allisson/quickie/internal/config"
)

func getSecretCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-token-hash",
			Usage: "Generate a creation token and the CREATE_TOKEN_HASH that gates secret creation",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(_ *config.Config, container *app.Container) error {
					tokens, err := container.AccessTokenService()
					if err != nil {
						return err
					}
					return commands.RunCreateTokenHash(tokens, commands.DefaultIO().Writer, cmd.String("format"))
				})
			},
		},
		{
			Name:  "generate-password",
			Usage: "Generate a random password like the ones the server issues",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(cfg *config.Config, container *app.Container) error {
					return commands.RunGeneratePassword(
						container.KeyGenerator(),
						cfg.PasswordMinBytes,
						cfg.PasswordMaxBytes,
						commands.DefaultIO().Writer,
					)
				})
			},
		},
		{
			Name:  "generate-passphrase",
			Usage: "Generate a passphrase from the configured word list",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "words",
					Aliases: []string{"w"},
					Usage:   "Number of words (defaults to PASSPHRASE_WORDS)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(cfg *config.Config, container *app.Container) error {
					generator, err := container.PassphraseGenerator()
					if err != nil {
						return err
					}

					words := cfg.PassphraseWords
					if cmd.IsSet("words") {
						words = int(cmd.Int("words"))
					}
					return commands.RunGeneratePassphrase(generator, words, commands.DefaultIO().Writer)
				})
			},
		},
	}
}
