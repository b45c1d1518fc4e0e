package invites_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-invites"
	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/internal/logging/console"
	"github.com/goliatone/go-invites/internal/store"
	"github.com/goliatone/go-invites/pkg/interfaces"
)

type scriptedGenerator struct {
	reply string
	err   error
}

func (g scriptedGenerator) Complete(context.Context, interfaces.CompletionRequest) (string, error) {
	return g.reply, g.err
}

type capturingSink struct {
	mu     sync.Mutex
	events []domain.StatusEvent
}

func (s *capturingSink) Publish(_ context.Context, event domain.StatusEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *capturingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func quietLogger() invites.Option {
	return invites.WithLoggerProvider(console.NewProvider(console.Options{Writer: io.Discard}))
}

func startModule(t *testing.T, cfg invites.Config, opts ...invites.Option) *invites.Module {
	t.Helper()
	module, err := invites.New(context.Background(), cfg, append([]invites.Option{quietLogger()}, opts...)...)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- module.Run(ctx) }()
	t.Cleanup(func() {
		module.Drain()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			cancel()
			<-done
		}
		cancel()
		_ = module.Close()
	})
	return module
}

func weddingRequest() invites.GenerationRequest {
	return invites.GenerationRequest{
		EventCategory: domain.EventWedding,
		ThemeLabel:    "elegant",
		Details: invites.EventDetails{
			Title: "Maria & Ivan",
			Date:  "2025-08-23",
			Time:  "16:00",
		},
	}
}

func waitFor(t *testing.T, module *invites.Module, req invites.GenerationRequest) invites.StatusSnapshot {
	t.Helper()
	taskID, err := module.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	snapshot, err := module.Wait(ctx, taskID)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	return snapshot
}

func TestModuleGeneratesSiteIntoMemoryStore(t *testing.T) {
	cfg := invites.DefaultConfig()
	cfg.Routes.BaseURL = "https://invites.example"
	sink := &capturingSink{}
	sites := store.NewMemorySiteStore()

	module := startModule(t, cfg,
		invites.WithSiteStore(sites),
		invites.WithStatusSink(sink),
		invites.WithTextGenerator(scriptedGenerator{reply: `{"title":"Maria & Ivan","description":"Join us for our wedding day"}`}),
	)

	snapshot := waitFor(t, module, weddingRequest())
	if snapshot.Status != domain.StatusCompleted || snapshot.Progress != 100 {
		t.Fatalf("expected completed task, got %+v", snapshot)
	}
	if snapshot.Slug != "maria-ivan" {
		t.Fatalf("unexpected slug %q", snapshot.Slug)
	}
	if !strings.HasPrefix(snapshot.URL, "https://invites.example/") {
		t.Fatalf("expected public url, got %q", snapshot.URL)
	}

	site, err := module.Sites().GetBySlug(context.Background(), snapshot.Slug)
	if err != nil {
		t.Fatalf("lookup site: %v", err)
	}
	if site.Request.Locale != "en" || !strings.Contains(site.Document, "Join us for our wedding day") {
		t.Fatalf("unexpected site %+v", site.Request)
	}
	if sink.count() == 0 {
		t.Fatalf("expected events forwarded to sink")
	}

	count, err := testutil.GatherAndCount(module.Registry(), "invites_pipeline_tasks_completed_total")
	if err != nil || count != 1 {
		t.Fatalf("expected completed counter registered, got %d (%v)", count, err)
	}
}

func TestModuleJournalsOutcomesAfterDrain(t *testing.T) {
	module, err := invites.New(context.Background(), invites.DefaultConfig(),
		quietLogger(),
		invites.WithSiteStore(store.NewMemorySiteStore()),
		invites.WithTextGenerator(scriptedGenerator{err: errors.New("offline")}),
	)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })

	done := make(chan error, 1)
	go func() { done <- module.Run(context.Background()) }()

	taskID, err := module.Submit(context.Background(), weddingRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	module.Drain()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("run did not return after drain")
	}

	outcomes, err := module.Outcomes(context.Background())
	if err != nil {
		t.Fatalf("outcomes: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].TaskID != taskID.String() {
		t.Fatalf("expected one outcome for %s, got %+v", taskID, outcomes)
	}
	if outcomes[0].Status != string(domain.StatusCompleted) || outcomes[0].Slug != "maria-ivan" {
		t.Fatalf("unexpected outcome %+v", outcomes[0])
	}
}

func TestModuleAppliesDefaultLocale(t *testing.T) {
	cfg := invites.DefaultConfig()
	cfg.Locale.Default = "ru"
	sites := store.NewMemorySiteStore()

	module := startModule(t, cfg,
		invites.WithSiteStore(sites),
		invites.WithTextGenerator(scriptedGenerator{err: errors.New("offline")}),
	)

	snapshot := waitFor(t, module, weddingRequest())
	if snapshot.Status != domain.StatusCompleted {
		t.Fatalf("expected completion with fallback content, got %+v", snapshot)
	}
	site, err := module.Sites().GetByID(context.Background(), snapshot.SiteID)
	if err != nil {
		t.Fatalf("lookup site: %v", err)
	}
	if site.Request.Locale != "ru" {
		t.Fatalf("expected configured default locale, got %q", site.Request.Locale)
	}
}

func TestModulePersistsThroughSQLite(t *testing.T) {
	cfg := invites.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = "file:module_test?mode=memory&cache=shared"

	module := startModule(t, cfg)

	snapshot := waitFor(t, module, weddingRequest())
	if snapshot.Status != domain.StatusCompleted {
		t.Fatalf("expected completed task, got %+v", snapshot)
	}
	site, err := module.Sites().GetBySlug(context.Background(), snapshot.Slug)
	if err != nil {
		t.Fatalf("lookup site: %v", err)
	}
	if site.TaskID != snapshot.TaskID {
		t.Fatalf("expected site linked to task %s, got %s", snapshot.TaskID, site.TaskID)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := invites.DefaultConfig()
	cfg.Pipeline.Workers = 0
	if _, err := invites.New(context.Background(), cfg, quietLogger()); !errors.Is(err, invites.ErrPipelineWorkersInvalid) {
		t.Fatalf("expected ErrPipelineWorkersInvalid, got %v", err)
	}
}
