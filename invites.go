package invites

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-invites/internal/assembler"
	"github.com/goliatone/go-invites/internal/calendar"
	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/internal/geocode"
	"github.com/goliatone/go-invites/internal/jobs"
	"github.com/goliatone/go-invites/internal/llm"
	"github.com/goliatone/go-invites/internal/logging"
	"github.com/goliatone/go-invites/internal/logging/console"
	"github.com/goliatone/go-invites/internal/logging/gologger"
	"github.com/goliatone/go-invites/internal/pipeline"
	"github.com/goliatone/go-invites/internal/status"
	"github.com/goliatone/go-invites/internal/status/natsbridge"
	"github.com/goliatone/go-invites/internal/store"
	"github.com/goliatone/go-invites/internal/theming"
	"github.com/goliatone/go-invites/pkg/interfaces"
)

type (
	GenerationRequest = domain.GenerationRequest
	EventDetails      = domain.EventDetails
	StatusSnapshot    = domain.StatusSnapshot
	StatusEvent       = domain.StatusEvent
	GeneratedSite     = domain.GeneratedSite
	Subscription      = status.Subscription
)

// SiteReader loads persisted sites.
type SiteReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GeneratedSite, error)
	GetBySlug(ctx context.Context, slug string) (*domain.GeneratedSite, error)
}

// SiteStore is the persistence the module writes through and reads from.
type SiteStore interface {
	pipeline.SiteStore
	SiteReader
}

// Module represents the invitation generation runtime.
type Module struct {
	cfg      Config
	service  *pipeline.Service
	sites    SiteStore
	registry *prometheus.Registry
	provider interfaces.LoggerProvider
	logger   interfaces.Logger
	closers  []func() error
}

// New wires every collaborator from cfg. Collaborators supplied through
// options replace the configured ones.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	options := moduleOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	m := &Module{cfg: cfg, registry: options.registry}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	provider, err := resolveLoggerProvider(cfg.Logging, options.loggerProvider)
	if err != nil {
		return nil, err
	}
	m.provider = provider
	m.logger = logging.ModuleLogger(provider, "")

	if err := m.openStore(ctx, options); err != nil {
		m.Close()
		return nil, err
	}

	sink, err := m.statusSink(options)
	if err != nil {
		m.Close()
		return nil, err
	}

	deps, err := m.dependencies(options, sink)
	if err != nil {
		m.Close()
		return nil, err
	}

	service, err := pipeline.NewService(deps, pipeline.Config{
		Workers:       cfg.Pipeline.Workers,
		QueueSize:     cfg.Pipeline.QueueSize,
		Retention:     cfg.Pipeline.Retention,
		SweepInterval: cfg.Pipeline.SweepInterval,
	})
	if err != nil {
		m.Close()
		return nil, err
	}
	m.service = service
	m.logger.Info("invites.module.ready",
		"workers", cfg.Pipeline.Workers,
		"queue_size", cfg.Pipeline.QueueSize,
		"generator_enabled", cfg.Generator.Enabled(),
		"status_bridge", sink != nil,
	)
	return m, nil
}

func (m *Module) openStore(ctx context.Context, options moduleOptions) error {
	if options.store != nil {
		m.sites = options.store
		return nil
	}

	db, err := store.Open(ctx, store.Config{
		Driver:       m.cfg.Storage.Driver,
		DSN:          m.cfg.Storage.DSN,
		MaxOpenConns: m.cfg.Storage.MaxOpenConns,
	})
	if err != nil {
		return err
	}
	m.closers = append(m.closers, db.Close)
	if err := store.Migrate(ctx, db); err != nil {
		return err
	}

	storeOpts := []store.BunOption{store.WithLogger(logging.StoreLogger(m.provider))}
	if m.cfg.Storage.Cache.Enabled {
		cacheOpt, err := m.cacheOption()
		if err != nil {
			return err
		}
		storeOpts = append(storeOpts, cacheOpt)
	}
	m.sites = store.NewBunSiteStore(db, storeOpts...)
	return nil
}

func (m *Module) cacheOption() (store.BunOption, error) {
	cfg := cache.DefaultConfig()
	if m.cfg.Storage.Cache.TTL > 0 {
		cfg.TTL = m.cfg.Storage.Cache.TTL
	}
	service, err := cache.NewCacheService(cfg)
	if err != nil {
		return nil, fmt.Errorf("invites: cache service: %w", err)
	}
	return store.WithCache(service, cache.NewDefaultKeySerializer()), nil
}

func (m *Module) statusSink(options moduleOptions) (status.Sink, error) {
	if options.sink != nil {
		return options.sink, nil
	}
	url := strings.TrimSpace(m.cfg.Status.NATSURL)
	if url == "" {
		return nil, nil
	}
	conn, err := natsbridge.Connect(url, "go-invites")
	if err != nil {
		return nil, err
	}
	m.closers = append(m.closers, func() error {
		return conn.Drain()
	})
	return natsbridge.New(conn, natsbridge.WithSubjectPrefix(m.cfg.Status.SubjectPrefix))
}

func (m *Module) dependencies(options moduleOptions, sink status.Sink) (pipeline.Dependencies, error) {
	cfg := m.cfg

	generator := options.generator
	if generator == nil {
		generator = llm.Disabled{}
		if cfg.Generator.Enabled() {
			generator = llm.New(llm.Config{
				APIKey:        cfg.Generator.APIKey,
				BaseURL:       cfg.Generator.BaseURL,
				Model:         cfg.Generator.Model,
				Timeout:       cfg.Generator.Timeout,
				RetryInterval: cfg.Generator.RetryInterval,
			}, llm.WithLogger(logging.AdapterLogger(m.provider, "llm")))
		}
	}

	geocoder := options.geocoder
	if geocoder == nil {
		geocoder = geocode.New(geocode.Config{
			BaseURL: cfg.Geocoder.BaseURL,
			APIKey:  cfg.Geocoder.APIKey,
			Timeout: cfg.Geocoder.Timeout,
		}, geocode.WithLogger(logging.AdapterLogger(m.provider, "geocode")))
	}

	engine, err := theming.New()
	if err != nil {
		return pipeline.Dependencies{}, err
	}

	weekStart, err := cfg.Locale.WeekStartDay()
	if err != nil {
		return pipeline.Dependencies{}, err
	}
	routes := assembler.NewRoutes(assembler.RouteConfig{
		BaseURL:  cfg.Routes.BaseURL,
		SitePath: cfg.Routes.SitePath,
		RSVPPath: cfg.Routes.RSVPPath,
	})
	asm := assembler.New(
		assembler.WithCalendar(calendar.New(calendar.WithWeekStart(weekStart))),
		assembler.WithRoutes(routes),
		assembler.WithLogger(logging.ModuleLogger(m.provider, "invites.assembler")),
	)

	publisherOpts := []status.Option{
		status.WithBuffer(cfg.Status.Buffer),
		status.WithLogger(logging.StatusLogger(m.provider)),
	}
	if sink != nil {
		publisherOpts = append(publisherOpts, status.WithSink(sink))
	}

	return pipeline.Dependencies{
		Generator: generator,
		Geocoder:  geocoder,
		Store:     m.sites,
		Theming:   engine,
		Assembler: asm,
		Routes:    routes,
		Publisher: status.NewPublisher(publisherOpts...),
		Metrics:   pipeline.NewMetrics(m.registry),
		Journal:   jobs.NewInMemoryJournal(),
		Prompt: llm.PromptOptions{
			MaxTokens:   cfg.Generator.MaxTokens,
			Temperature: cfg.Generator.Temperature,
		},
		Logger: logging.PipelineLogger(m.provider),
		Clock:  options.clock,
	}, nil
}

func resolveLoggerProvider(cfg LoggingConfig, override interfaces.LoggerProvider) (interfaces.LoggerProvider, error) {
	if override != nil {
		return override, nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "gologger":
		return gologger.NewProvider(gologger.Config{Level: cfg.Level, Format: cfg.Format})
	default:
		level, ok := console.ParseLevel(cfg.Level)
		if !ok {
			level = console.LevelInfo
		}
		return console.NewProvider(console.Options{MinLevel: level}), nil
	}
}

// Run executes queued tasks until ctx is cancelled or Close drains the queue.
func (m *Module) Run(ctx context.Context) error {
	return m.service.Run(ctx)
}

// Submit queues req. An empty locale takes the configured default.
func (m *Module) Submit(ctx context.Context, req GenerationRequest) (uuid.UUID, error) {
	if strings.TrimSpace(req.Locale) == "" {
		req.Locale = m.cfg.Locale.Default
	}
	return m.service.Submit(ctx, req)
}

// Status returns the latest snapshot for taskID.
func (m *Module) Status(taskID uuid.UUID) (StatusSnapshot, error) {
	return m.service.Status(taskID)
}

// Subscribe streams status events for taskID.
func (m *Module) Subscribe(taskID uuid.UUID) (*Subscription, error) {
	return m.service.Subscribe(taskID)
}

// Wait blocks until taskID reaches a terminal state.
func (m *Module) Wait(ctx context.Context, taskID uuid.UUID) (StatusSnapshot, error) {
	return m.service.Wait(ctx, taskID)
}

// Outcomes lists finished tasks still inside the retention window.
func (m *Module) Outcomes(ctx context.Context) ([]jobs.Outcome, error) {
	journal := m.service.Journal()
	if journal == nil {
		return nil, nil
	}
	return journal.List(ctx)
}

// Service exposes the pipeline service for command handlers.
func (m *Module) Service() *pipeline.Service {
	return m.service
}

// Sites exposes read access to persisted sites.
func (m *Module) Sites() SiteReader {
	return m.sites
}

// Registry returns the prometheus registry holding the pipeline collectors.
func (m *Module) Registry() *prometheus.Registry {
	return m.registry
}

// LoggerProvider returns the provider used by every module logger.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	return m.provider
}

// Config returns the resolved configuration.
func (m *Module) Config() Config {
	return m.cfg
}

// Drain stops accepting work. Run returns once queued tasks are done.
func (m *Module) Drain() {
	if m.service != nil {
		m.service.Close()
	}
}

// Close drains the queue and releases the database and NATS connections.
// Call it after Run has returned.
func (m *Module) Close() error {
	m.Drain()
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}

// OpenDatabase opens the configured database without building a module.
func OpenDatabase(ctx context.Context, cfg Config) (*bun.DB, error) {
	return store.Open(ctx, store.Config{
		Driver:       cfg.Storage.Driver,
		DSN:          cfg.Storage.DSN,
		MaxOpenConns: cfg.Storage.MaxOpenConns,
	})
}

// Migrate creates the site schema on db.
func Migrate(ctx context.Context, db *bun.DB) error {
	return store.Migrate(ctx, db)
}
