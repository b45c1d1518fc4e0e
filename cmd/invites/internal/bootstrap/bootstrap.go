package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-invites"
	"github.com/goliatone/go-invites/internal/commands"
	generationcmd "github.com/goliatone/go-invites/internal/commands/generation"
	"github.com/goliatone/go-invites/internal/logging"
	"github.com/goliatone/go-invites/pkg/interfaces"
)

// Options captures the flags shared by every invites subcommand.
type Options struct {
	ConfigPath string
	LogLevel   string
	Workers    int
	Extra      []invites.Option
}

// Module wraps the invites module with the CLI logger and the registered
// generation command handler.
type Module struct {
	Module *invites.Module
	Logger interfaces.Logger

	unsubscribe func()
}

// LoadConfig resolves the configuration and applies flag overrides.
func LoadConfig(opts Options) (invites.Config, error) {
	cfg, err := invites.LoadConfig(opts.ConfigPath)
	if err != nil {
		return invites.Config{}, err
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if opts.Workers > 0 {
		cfg.Pipeline.Workers = opts.Workers
	}
	if err := cfg.Validate(); err != nil {
		return invites.Config{}, err
	}
	return cfg, nil
}

// BuildModule constructs the module and subscribes the GenerateSite handler
// on the command dispatcher.
func BuildModule(ctx context.Context, opts Options) (*Module, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	module, err := invites.New(ctx, cfg, opts.Extra...)
	if err != nil {
		return nil, fmt.Errorf("initialise invites module: %w", err)
	}

	logger := logging.ModuleLogger(module.LoggerProvider(), "invites.cli")
	commandLogger := commands.CommandLogger(module.LoggerProvider(), "generation")
	handler := generationcmd.NewGenerateSiteHandler(module.Service(), commandLogger,
		commands.WithTelemetry(commands.ChainTelemetry(
			commands.DefaultTelemetry[generationcmd.GenerateSiteCommand](commandLogger),
			commands.MetricsTelemetry[generationcmd.GenerateSiteCommand](commands.NewMetrics(module.Registry())),
		)),
	)
	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(0))

	return &Module{
		Module:      module,
		Logger:      logger,
		unsubscribe: sub.Unsubscribe,
	}, nil
}

// Close unsubscribes the handler and releases module resources.
func (m *Module) Close() error {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	return m.Module.Close()
}
