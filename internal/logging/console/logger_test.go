package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-invites/internal/logging"
	"github.com/goliatone/go-invites/internal/logging/console"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 14, 18, 30, 0, 0, time.UTC)
}

func TestConsoleLoggerWritesModuleLine(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, Clock: fixedClock, MinLevel: console.LevelDebug})

	ctx := logging.ContextWithTask(context.Background(), "8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999")
	logger := logging.FromContext(logging.PipelineLogger(provider), ctx)
	logger.Info("pipeline.task.completed",
		"site_id", uuid.MustParse("2c0b87df-a999-4b2c-8ecd-8a51a9b12d30"),
		"slug", "anna",
		"notes", "",
	)

	got := buf.String()
	want := "2025-06-14T18:30:00Z INFO  [invites.pipeline] pipeline.task.completed notes=\"\" site_id=2c0b87df-a999-4b2c-8ecd-8a51a9b12d30 slug=anna task_id=8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999\n"
	if got != want {
		t.Fatalf("unexpected log line\nwant: %q\ngot:  %q", want, got)
	}
}

func TestConsoleLoggerQuotesAndKeepsStrayArgs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, Clock: fixedClock})

	provider.GetLogger("invites.adapters.llm").Warn("llm.complete.retry",
		"error", errors.New("status 503: try later"),
		"wait", 500*time.Millisecond,
		"orphan",
	)

	got := strings.TrimSpace(buf.String())
	for _, part := range []string{`error="status 503: try later"`, "wait=500ms", "arg_4=orphan", "WARN  [invites.adapters.llm]"} {
		if !strings.Contains(got, part) {
			t.Fatalf("expected %q in %q", part, got)
		}
	}
}

func TestConsoleLoggerDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, Clock: time.Now})

	logger := provider.GetLogger("invites.status")
	logger.Debug("status.subscriber.replaced")
	logger.Info("status.subscriber.closed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "status.subscriber.closed") {
		t.Fatalf("expected only the info entry, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if level, ok := console.ParseLevel(" Warning "); !ok || level != console.LevelWarn {
		t.Fatalf("expected warn, got %v (%v)", level, ok)
	}
	if level, ok := console.ParseLevel("trace"); !ok || level.String() != "TRACE" {
		t.Fatalf("expected trace, got %v (%v)", level, ok)
	}
	if _, ok := console.ParseLevel("verbose"); ok {
		t.Fatalf("expected unknown level to be rejected")
	}
}
