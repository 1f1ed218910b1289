// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/icarushq/icarus/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "icarus",
		Usage:   "Token-based authentication and authorization service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "register-user",
				Usage: "Register a new user account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Full name of the user",
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Required: true,
						Usage:    "Email address (must be unique)",
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Password (omit for interactive prompt)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRegisterUser(
						ctx,
						cmd.String("name"),
						cmd.String("email"),
						cmd.String("password"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "create-token",
				Usage: "Authenticate a user and issue a bearer token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Required: true,
						Usage:    "Email address of the user",
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Password of the user",
					},
					&cli.StringFlag{
						Name:    "context",
						Aliases: []string{"c"},
						Value:   "account",
						Usage:   "Operating context: 'account' or 'platform'",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateToken(
						ctx,
						cmd.String("email"),
						cmd.String("password"),
						cmd.String("context"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "revoke-token",
				Usage: "Revoke a bearer token by its ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Token ID (UUID)",
					},
					&cli.StringFlag{
						Name:    "reason",
						Aliases: []string{"r"},
						Usage:   "Reason for the revocation",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRevokeToken(ctx, cmd.String("id"), cmd.String("reason"))
				},
			},
			{
				Name:  "create-role",
				Usage: "Create a new role with permission grants",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "context",
						Aliases: []string{"c"},
						Value:   "account",
						Usage:   "Operating context: 'account' or 'platform'",
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Role name",
					},
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "Role description",
					},
					&cli.StringFlag{
						Name:    "permissions",
						Aliases: []string{"p"},
						Usage:   "JSON map of namespace to permissions (omit for interactive mode)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateRole(
						ctx,
						cmd.String("context"),
						cmd.String("name"),
						cmd.String("description"),
						cmd.String("permissions"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "assign-role",
				Usage: "Assign an existing role to a user",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "role-id",
						Aliases:  []string{"r"},
						Required: true,
						Usage:    "Role ID (UUID)",
					},
					&cli.StringFlag{
						Name:     "user-id",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "User ID (UUID)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunAssignRole(ctx, cmd.String("role-id"), cmd.String("user-id"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
