package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-invites/cmd/invites/internal/bootstrap"
)

const (
	Version = "0.1.0"
	appName = "invites"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &bootstrap.Options{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Generate themed invitation sites",
		Long: `invites turns an event description into a single-page invitation site.

Each request is queued, enriched by a text generator and a geocoder when
they are configured, themed, rendered and stored under a unique slug.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().IntVar(&opts.Workers, "workers", 0, "Worker pool size (defaults to config)")

	cmd.AddCommand(
		generateCmd(opts),
		workerCmd(opts),
		migrateCmd(opts),
		showCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}
