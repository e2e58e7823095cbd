// Package main provides the entry point for the citadel CLI.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/citadel/cmd/citadel/commands"
	"github.com/allisson/citadel/internal/app"
	"github.com/allisson/citadel/internal/config"
)

func main() {
	cmd := &cli.Command{
		Name:    "citadel",
		Usage:   "post-quantum hybrid envelope encryption and adaptive key lifecycle",
		Version: "1.0.0",
		Commands: []*cli.Command{
			{
				Name:      "keygen",
				Usage:     "generate a hybrid keypair",
				ArgsUsage: "NAME",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name := cmd.Args().First()
					if name == "" {
						return cli.Exit("keygen requires a NAME argument", 1)
					}
					return commands.RunKeygen(name)
				},
			},
			{
				Name:  "seal",
				Usage: "encrypt a file under a public key",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "key", Required: true, Usage: "path to the recipient's public key"},
					&cli.StringFlag{Name: "in", Required: true, Usage: "path to the plaintext file"},
					&cli.StringFlag{Name: "aad", Usage: "associated data bound to the ciphertext"},
					&cli.StringFlag{Name: "ctx", Usage: "context string mixed into the derived key"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunSeal(cmd.String("key"), cmd.String("in"), cmd.String("aad"), cmd.String("ctx"))
				},
			},
			{
				Name:  "open",
				Usage: "decrypt a .ctd file under a secret key",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "key", Required: true, Usage: "path to the recipient's secret key"},
					&cli.StringFlag{Name: "in", Required: true, Usage: "path to the .ctd ciphertext file"},
					&cli.StringFlag{Name: "aad", Usage: "associated data bound to the ciphertext"},
					&cli.StringFlag{Name: "ctx", Usage: "context string mixed into the derived key"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunOpen(cmd.String("key"), cmd.String("in"), cmd.String("aad"), cmd.String("ctx"))
				},
			},
			{
				Name:      "inspect",
				Usage:     "print the header fields of a wire frame",
				ArgsUsage: "FILE",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := cmd.Args().First()
					if path == "" {
						return cli.Exit("inspect requires a FILE argument", 1)
					}
					return commands.RunInspect(path)
				},
			},
			{
				Name:  "audit",
				Usage: "audit log operations",
				Commands: []*cli.Command{
					{
						Name:  "verify",
						Usage: "verify the hash chain integrity of the audit log",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "path", Usage: "path to the audit log (defaults to AUDIT_LOG_PATH)"},
						},
						Action: func(ctx context.Context, cmd *cli.Command) error {
							cfg := config.Load()
							container := app.NewContainer(cfg)
							logger := container.Logger()
							defer closeContainer(container, logger)

							path := cmd.String("path")
							if path == "" {
								path = cfg.AuditLogPath
							}
							return commands.RunAuditVerify(ctx, path)
						},
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}
