package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-invites/cmd/invites/internal/bootstrap"
	generationcmd "github.com/goliatone/go-invites/internal/commands/generation"
	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/internal/pipeline"
	"github.com/goliatone/go-invites/internal/status/natsbridge"
	"github.com/goliatone/go-invites/pkg/interfaces"
)

const workerQueueGroup = "invites-workers"

var errNATSRequired = errors.New("worker requires status.nats_url (INVITES_NATS_URL)")

// submitReply is sent back to NATS requests that carry a reply subject.
type submitReply struct {
	TaskID string `json:"task_id,omitempty"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
}

func workerCmd(opts *bootstrap.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume generation requests from NATS and publish status events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cmd.Context(), *opts)
		},
	}
}

func runWorker(ctx context.Context, opts bootstrap.Options) error {
	cfg, err := bootstrap.LoadConfig(opts)
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Status.NATSURL) == "" {
		return errNATSRequired
	}

	module, err := moduleBuilder(ctx, opts)
	if err != nil {
		return err
	}
	defer module.Close()
	logger := module.Logger

	runDone := make(chan error, 1)
	go func() {
		runDone <- module.Module.Run(context.Background())
	}()

	conn, err := natsbridge.Connect(cfg.Status.NATSURL, "go-invites-worker")
	if err != nil {
		module.Module.Drain()
		<-runDone
		return err
	}
	defer conn.Close()

	sub, err := conn.QueueSubscribe(cfg.Status.RequestSubject, workerQueueGroup, func(msg *nats.Msg) {
		reply := handleRequest(ctx, msg.Data, logger)
		if msg.Reply == "" {
			return
		}
		payload, _ := json.Marshal(reply)
		if err := msg.Respond(payload); err != nil {
			logger.Warn("worker.reply.failed", "error", err)
		}
	})
	if err != nil {
		module.Module.Drain()
		<-runDone
		return fmt.Errorf("subscribe %s: %w", cfg.Status.RequestSubject, err)
	}

	server := metricsServer(cfg.Metrics.Addr, module, logger)

	logger.Info("worker.started",
		"subject", cfg.Status.RequestSubject,
		"queue_group", workerQueueGroup,
		"metrics_addr", cfg.Metrics.Addr,
	)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-runDone:
		runDone = nil
	}

	logger.Info("worker.stopping")
	if err := sub.Drain(); err != nil {
		logger.Warn("worker.subscription.drain_failed", "error", err)
	}
	module.Module.Drain()
	if runDone != nil {
		runErr = <-runDone
	}
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
	return runErr
}

// handleRequest decodes a JSON GenerationRequest and dispatches it without waiting.
func handleRequest(ctx context.Context, data []byte, logger interfaces.Logger) submitReply {
	var req domain.GenerationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		logger.Warn("worker.request.invalid", "error", err)
		return submitReply{Error: "invalid request payload", Code: "INVALID_PAYLOAD"}
	}

	result := &generationcmd.GenerateSiteResult{}
	if err := dispatcher.Dispatch(ctx, generationcmd.GenerateSiteCommand{Request: req, Result: result}); err != nil {
		logger.Warn("worker.request.rejected", "error", err)
		return submitReply{Error: err.Error(), Code: errorCode(err)}
	}
	return submitReply{TaskID: result.TaskID.String()}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrQueueFull):
		return generationcmd.TextCodeQueueFull
	case errors.Is(err, pipeline.ErrServiceClosed):
		return generationcmd.TextCodeServiceClosed
	default:
		return "SUBMIT_FAILED"
	}
}

func metricsServer(addr string, module *bootstrap.Module, logger interfaces.Logger) *http.Server {
	if strings.TrimSpace(addr) == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(module.Module.Registry(), promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker.metrics.failed", "addr", addr, "error", err)
		}
	}()
	return server
}
