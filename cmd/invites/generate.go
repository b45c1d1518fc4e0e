package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-invites"
	"github.com/goliatone/go-invites/cmd/invites/internal/bootstrap"
	generationcmd "github.com/goliatone/go-invites/internal/commands/generation"
	"github.com/goliatone/go-invites/internal/domain"
)

var errNoRequestFile = errors.New("a request file is required")

func generateCmd(opts *bootstrap.Options) *cobra.Command {
	var (
		file    string
		out     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one invitation site from a request file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), *opts, file, out, timeout, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Request file (YAML or JSON)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the generated HTML document to this path")
	cmd.Flags().DurationVar(&timeout, "timeout", generationcmd.DefaultWaitTimeout, "Maximum time to wait for the site")
	return cmd
}

// loadRequest reads a generation request. JSON is valid YAML so one decoder serves both.
func loadRequest(path string) (domain.GenerationRequest, error) {
	if strings.TrimSpace(path) == "" {
		return domain.GenerationRequest{}, errNoRequestFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.GenerationRequest{}, fmt.Errorf("read request: %w", err)
	}
	var req domain.GenerationRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return domain.GenerationRequest{}, fmt.Errorf("parse request %s: %w", path, err)
	}
	return req, nil
}

func runGenerate(ctx context.Context, opts bootstrap.Options, file, out string, timeout time.Duration, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := loadRequest(file)
	if err != nil {
		return err
	}

	module, err := moduleBuilder(ctx, opts)
	if err != nil {
		return err
	}
	defer module.Close()

	runDone := startRunner(module.Module)
	defer func() {
		module.Module.Drain()
		<-runDone
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result := &generationcmd.GenerateSiteResult{}
	if err := dispatcher.Dispatch(ctx, generationcmd.GenerateSiteCommand{Request: req, Result: result}); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "task %s queued\n", result.TaskID)

	snapshot, err := streamProgress(ctx, module.Module, result, stdout)
	if err != nil {
		return err
	}
	if snapshot.Status == domain.StatusFailed {
		return fmt.Errorf("generation failed: %s", snapshot.Message)
	}

	fmt.Fprintf(stdout, "slug: %s\nurl:  %s\n", snapshot.Slug, snapshot.URL)
	if out != "" {
		site, err := module.Module.Sites().GetBySlug(ctx, snapshot.Slug)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, []byte(site.Document), 0o644); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
		fmt.Fprintf(stdout, "document written to %s\n", out)
	}
	return nil
}

func startRunner(module *invites.Module) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- module.Run(context.Background())
	}()
	return done
}

func streamProgress(ctx context.Context, module *invites.Module, result *generationcmd.GenerateSiteResult, stdout io.Writer) (invites.StatusSnapshot, error) {
	sub, err := module.Subscribe(result.TaskID)
	if err != nil {
		return invites.StatusSnapshot{}, err
	}
	events := sub.Events()
	for {
		select {
		case <-ctx.Done():
			return invites.StatusSnapshot{}, fmt.Errorf("waiting for task %s: %w", result.TaskID, ctx.Err())
		case event, ok := <-events:
			if !ok {
				return module.Status(result.TaskID)
			}
			fmt.Fprintf(stdout, "[%3d%%] %-18s %s\n", event.Progress, event.Status, event.Message)
			if event.Terminal {
				return event.Snapshot(), nil
			}
		}
	}
}
