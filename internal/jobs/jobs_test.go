package jobs_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-invites/internal/jobs"
)

func TestQueueRejectsWhenFull(t *testing.T) {
	queue := jobs.NewQueue[int](2)
	if err := queue.Enqueue(1); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := queue.Enqueue(2); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := queue.Enqueue(3); !errors.Is(err, jobs.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if queue.Len() != 2 || queue.Cap() != 2 {
		t.Fatalf("unexpected len/cap %d/%d", queue.Len(), queue.Cap())
	}
	queue.Close()
	queue.Close()
	if err := queue.Enqueue(4); !errors.Is(err, jobs.ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}

func TestPoolDrainsQueueConcurrently(t *testing.T) {
	queue := jobs.NewQueue[int](64)
	for i := 0; i < 40; i++ {
		if err := queue.Enqueue(i); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	queue.Close()

	var (
		mu      sync.Mutex
		seen    = map[int]bool{}
		current atomic.Int64
		peak    atomic.Int64
	)
	pool := jobs.NewPool(queue, func(_ context.Context, item int) {
		n := current.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		mu.Lock()
		seen[item] = true
		mu.Unlock()
		current.Add(-1)
	}, jobs.WithWorkers(4))

	if err := pool.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(seen) != 40 || pool.Handled() != 40 {
		t.Fatalf("expected all items handled, got %d/%d", len(seen), pool.Handled())
	}
	if peak.Load() > 4 {
		t.Fatalf("expected at most 4 concurrent handlers, saw %d", peak.Load())
	}
	if pool.Active() != 0 {
		t.Fatalf("expected no active handlers after run")
	}
}

func TestPoolStopsOnContextCancel(t *testing.T) {
	queue := jobs.NewQueue[int](1)
	pool := jobs.NewPool(queue, func(context.Context, int) {}, jobs.WithWorkers(2))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("pool did not stop after cancel")
	}
}

func TestPoolRecoversHandlerPanic(t *testing.T) {
	queue := jobs.NewQueue[int](2)
	_ = queue.Enqueue(1)
	_ = queue.Enqueue(2)
	queue.Close()
	var handled atomic.Int64
	pool := jobs.NewPool(queue, func(_ context.Context, item int) {
		if item == 1 {
			panic("boom")
		}
		handled.Add(1)
	})
	if err := pool.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if handled.Load() != 1 {
		t.Fatalf("expected worker to survive panic")
	}
}

func TestPoolRunsSweeper(t *testing.T) {
	queue := jobs.NewQueue[int](1)
	swept := make(chan time.Time, 1)
	fixed := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)
	pool := jobs.NewPool(queue, func(context.Context, int) {},
		jobs.WithSweeper(5*time.Millisecond, func(now time.Time) {
			select {
			case swept <- now:
			default:
			}
		}),
		jobs.WithClock(func() time.Time { return fixed }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = pool.Run(ctx) }()

	select {
	case now := <-swept:
		if !now.Equal(fixed) {
			t.Fatalf("expected injected clock, got %v", now)
		}
	case <-time.After(time.Second):
		t.Fatalf("sweeper never ran")
	}
}

func TestJournalRecordsAndPrunes(t *testing.T) {
	ctx := context.Background()
	journal := jobs.NewInMemoryJournal()
	now := time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)
	notes := []string{"generator_unavailable"}
	if err := journal.Record(ctx, jobs.Outcome{TaskID: "a", Status: "completed", Notes: notes, FinishedAt: now.Add(-2 * time.Hour)}); err != nil {
		t.Fatalf("record: %v", err)
	}
	notes[0] = "mutated"
	if err := journal.Record(ctx, jobs.Outcome{TaskID: "b", Status: "failed", FinishedAt: now}); err != nil {
		t.Fatalf("record: %v", err)
	}
	outcomes := journal.Outcomes()
	if len(outcomes) != 2 || outcomes[0].Notes[0] != "generator_unavailable" {
		t.Fatalf("expected copied outcomes, got %+v", outcomes)
	}

	removed, err := journal.Prune(ctx, now.Add(-time.Hour))
	if err != nil || removed != 1 {
		t.Fatalf("expected one pruned outcome, got %d (%v)", removed, err)
	}
	if remaining := journal.Outcomes(); len(remaining) != 1 || remaining[0].TaskID != "b" {
		t.Fatalf("unexpected remaining outcomes %+v", remaining)
	}

	journal.Fail(errors.New("disk full"))
	if err := journal.Record(ctx, jobs.Outcome{TaskID: "c"}); err == nil {
		t.Fatalf("expected configured failure")
	}
}
