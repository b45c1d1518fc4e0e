package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-invites"
	"github.com/goliatone/go-invites/cmd/invites/internal/bootstrap"
)

func migrateCmd(opts *bootstrap.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the site tables in the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), *opts, cmd.OutOrStdout())
		},
	}
}

func runMigrate(ctx context.Context, opts bootstrap.Options, stdout io.Writer) error {
	cfg, err := bootstrap.LoadConfig(opts)
	if err != nil {
		return err
	}
	db, err := invites.OpenDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := invites.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintf(stdout, "schema ready (%s)\n", cfg.Storage.Driver)
	return nil
}

func showCmd(opts *bootstrap.Options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Print a stored invitation document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), *opts, args[0], out, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the document to this path instead of stdout")
	return cmd
}

func runShow(ctx context.Context, opts bootstrap.Options, slug, out string, stdout io.Writer) error {
	module, err := moduleBuilder(ctx, opts)
	if err != nil {
		return err
	}
	defer module.Close()

	site, err := module.Module.Sites().GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return err
	}
	if out == "" {
		_, err := io.WriteString(stdout, site.Document)
		return err
	}
	return os.WriteFile(out, []byte(site.Document), 0o644)
}
