// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/taibuivan/panelkit/internal/app"
	"github.com/taibuivan/panelkit/internal/panel/request"
	"github.com/taibuivan/panelkit/internal/panel/resource"
	"github.com/taibuivan/panelkit/internal/panel/trash"
	"github.com/taibuivan/panelkit/internal/panel/versioning"
	"github.com/taibuivan/panelkit/internal/platform/config"
	"github.com/taibuivan/panelkit/internal/platform/constants"
	"github.com/taibuivan/panelkit/internal/platform/ctxutil"
	"github.com/taibuivan/panelkit/internal/platform/sec"
)

// systemUser is the caller recorded for changes made from the CLI.
var systemUser = &sec.AuthClaims{UserID: "system", Username: "panelctl", Role: string(sec.RoleAdmin)}

type loader func() (*config.Config, error)

// cliRunner carries what every command needs.
type cliRunner struct {
	load   loader
	logger *slog.Logger
	out    io.Writer
}

func newRoot(load loader, logger *slog.Logger, out io.Writer) *cli.Command {
	runner := &cliRunner{load: load, logger: logger, out: out}

	return &cli.Command{
		Name:    "panelctl",
		Usage:   "Operate the admin panel",
		Version: constants.AppVersion,
		Writer:  out,
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply pending schema migrations",
				Action: runner.migrate,
			},
			{
				Name:  "rollback",
				Usage: "Revert the latest schema migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1},
				},
				Action: runner.rollback,
			},
			{
				Name:   "resources",
				Usage:  "List registered resources and their concerns",
				Action: runner.resources,
			},
			{
				Name:  "trash",
				Usage: "Soft delete maintenance",
				Commands: []*cli.Command{{
					Name:   "cleanup",
					Usage:  "Permanently delete records trashed longer than their retention",
					Flags:  []cli.Flag{resourceFlag()},
					Action: runner.trashCleanup,
				}},
			},
			{
				Name:  "versions",
				Usage: "Version history maintenance",
				Commands: []*cli.Command{{
					Name:   "prune",
					Usage:  "Drop versions beyond each resource's retention cap",
					Flags:  []cli.Flag{resourceFlag()},
					Action: runner.versionsPrune,
				}},
			},
			{
				Name:  "cache",
				Usage: "Panel cache maintenance",
				Commands: []*cli.Command{{
					Name:   "clear",
					Usage:  "Drop cached listings, records and fields",
					Flags:  []cli.Flag{resourceFlag()},
					Action: runner.cacheClear,
				}},
			},
			{
				Name:  "users",
				Usage: "Panel accounts",
				Commands: []*cli.Command{{
					Name:  "create",
					Usage: "Create an account through the users resource",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "name", Required: true},
						&cli.StringFlag{Name: "email", Required: true},
						&cli.StringFlag{Name: "password", Required: true},
						&cli.StringFlag{Name: "role", Value: string(sec.RoleViewer), Usage: "admin, editor or viewer"},
					},
					Action: runner.createUser,
				}},
			},
			{
				Name:  "token",
				Usage: "Access tokens",
				Commands: []*cli.Command{{
					Name:  "issue",
					Usage: "Sign an access token for an account",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "user", Required: true, Usage: "account id"},
						&cli.StringFlag{Name: "username"},
						&cli.StringFlag{Name: "role", Value: string(sec.RoleViewer)},
						&cli.DurationFlag{Name: "ttl", Value: constants.DefaultTokenTTL},
					},
					Action: runner.issueToken,
				}},
			},
		},
	}
}

func resourceFlag() cli.Flag {
	return &cli.StringFlag{Name: "resource", Aliases: []string{"r"}, Usage: "URI key of one resource; all resources when empty"}
}

// open loads the configuration and opens the panel for one command.
func (runner *cliRunner) open(ctx context.Context) (*app.App, error) {
	cfg, err := runner.load()
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, cfg, runner.logger)
}

// targets resolves the --resource flag.
func targets(application *app.App, uriKey string) ([]*resource.Type, error) {
	if uriKey == "" {
		return application.Registry.All(), nil
	}
	t, ok := application.Registry.Get(uriKey)
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", uriKey)
	}
	return []*resource.Type{t}, nil
}

// # Commands

func (runner *cliRunner) migrate(ctx context.Context, _ *cli.Command) error {
	application, err := runner.open(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.Migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(runner.out, "migrations applied")
	return nil
}

func (runner *cliRunner) rollback(ctx context.Context, cmd *cli.Command) error {
	application, err := runner.open(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	steps := int(cmd.Int("steps"))
	if err := application.Rollback(ctx, steps); err != nil {
		return err
	}
	fmt.Fprintf(runner.out, "%d migrations reverted\n", steps)
	return nil
}

func (runner *cliRunner) resources(ctx context.Context, _ *cli.Command) error {
	application, err := runner.open(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	writer := tabwriter.NewWriter(runner.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(writer, "URI KEY\tLABEL\tGROUP\tCONCERNS")
	for _, t := range application.Registry.All() {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n", t.URIKey(), t.Label(), t.Group(), strings.Join(concerns(t), ","))
	}
	return writer.Flush()
}

func concerns(t *resource.Type) []string {
	var out []string
	if trash.Supports(t) {
		out = append(out, "trash")
	}
	if _, enabled := versioning.ConfigOf(t); enabled {
		out = append(out, "versions")
	}
	if len(out) == 0 {
		out = append(out, "-")
	}
	return out
}

func (runner *cliRunner) trashCleanup(ctx context.Context, cmd *cli.Command) error {
	application, err := runner.open(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	types, err := targets(application, cmd.String("resource"))
	if err != nil {
		return err
	}
	for _, t := range types {
		if !trash.Supports(t) {
			continue
		}
		deleted, err := application.Trash.CleanupOldTrashed(ctx, t)
		if err != nil {
			return fmt.Errorf("%s: %w", t.URIKey(), err)
		}
		fmt.Fprintf(runner.out, "%s: %d permanently deleted\n", t.URIKey(), deleted)
	}
	return nil
}

func (runner *cliRunner) versionsPrune(ctx context.Context, cmd *cli.Command) error {
	application, err := runner.open(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	types, err := targets(application, cmd.String("resource"))
	if err != nil {
		return err
	}
	for _, t := range types {
		if _, enabled := versioning.ConfigOf(t); !enabled {
			continue
		}
		pruned, err := application.Versions.Prune(ctx, t)
		if err != nil {
			return fmt.Errorf("%s: %w", t.URIKey(), err)
		}
		fmt.Fprintf(runner.out, "%s: %d versions pruned\n", t.URIKey(), pruned)
	}
	return nil
}

func (runner *cliRunner) cacheClear(ctx context.Context, cmd *cli.Command) error {
	application, err := runner.open(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	types, err := targets(application, cmd.String("resource"))
	if err != nil {
		return err
	}
	for _, t := range types {
		application.Cache.ClearCache(ctx, t.URIKey())
	}
	fmt.Fprintf(runner.out, "cache cleared for %d resources\n", len(types))
	return nil
}

func (runner *cliRunner) createUser(ctx context.Context, cmd *cli.Command) error {
	application, err := runner.open(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	input := map[string]any{
		"name":     cmd.String("name"),
		"email":    cmd.String("email"),
		"password": cmd.String("password"),
		"role":     cmd.String("role"),
	}
	req := request.New(ctxutil.WithAuthUser(ctx, systemUser), systemUser, input, nil)
	detail, err := application.Panel.Store(req, "users")
	if err != nil {
		return err
	}
	fmt.Fprintf(runner.out, "created user %v\n", detail.ID)
	return nil
}

func (runner *cliRunner) issueToken(_ context.Context, cmd *cli.Command) error {
	cfg, err := runner.load()
	if err != nil {
		return err
	}

	role, err := sec.ParseRole(cmd.String("role"))
	if err != nil {
		return err
	}

	tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return err
	}
	token, err := tokens.GenerateAccessToken(cmd.String("user"), cmd.String("username"), string(role), cmd.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Fprintln(runner.out, token)
	return nil
}
