package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/internal/jobs"
	"github.com/goliatone/go-invites/internal/status"
)

// Defaults applied by NewService.
const (
	DefaultWorkers       = 4
	DefaultQueueSize     = 64
	DefaultRetention     = time.Hour
	DefaultSweepInterval = time.Minute
)

// Config sizes the worker pool and retention janitor.
type Config struct {
	Workers       int
	QueueSize     int
	Retention     time.Duration
	SweepInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	if c.Retention <= 0 {
		c.Retention = DefaultRetention
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	return c
}

// Service is the entry point callers use: submit a request, poll or stream
// its progress. Tasks are executed by a fixed pool of workers, each owning
// one task for its lifetime.
type Service struct {
	orchestrator *Orchestrator
	queue        *jobs.Queue[*domain.GenerationTask]
	pool         *jobs.Pool[*domain.GenerationTask]
	deps         Dependencies
	cfg          Config
	newID        func() uuid.UUID
	closed       atomic.Bool
}

// NewService wires the orchestrator, queue and pool.
func NewService(deps Dependencies, cfg Config) (*Service, error) {
	orchestrator, err := NewOrchestrator(deps)
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	s := &Service{
		orchestrator: orchestrator,
		queue:        jobs.NewQueue[*domain.GenerationTask](cfg.QueueSize),
		deps:         orchestrator.deps,
		cfg:          cfg,
		newID:        uuid.New,
	}
	s.pool = jobs.NewPool(s.queue, s.handle,
		jobs.WithWorkers(cfg.Workers),
		jobs.WithSweeper(cfg.SweepInterval, s.sweep),
		jobs.WithClock(s.deps.Clock),
		jobs.WithLogger(s.deps.Logger),
	)
	return s, nil
}

// Publisher exposes the status registry, for attaching transports.
func (s *Service) Publisher() *status.Publisher {
	return s.deps.Publisher
}

// Submit enqueues req and returns its task id without waiting for any work.
// The request is validated by the pipeline, so an invalid request yields a
// task that fails rather than a Submit error.
func (s *Service) Submit(ctx context.Context, req domain.GenerationRequest) (uuid.UUID, error) {
	if s.closed.Load() {
		return uuid.Nil, ErrServiceClosed
	}
	task := domain.NewTask(s.newID(), req, s.deps.Clock())
	s.deps.Publisher.Publish(ctx, task.Event())

	if err := s.queue.Enqueue(task); err != nil {
		s.deps.Publisher.Forget(task.ID)
		if errors.Is(err, jobs.ErrQueueClosed) {
			return uuid.Nil, ErrServiceClosed
		}
		if s.deps.Metrics != nil {
			s.deps.Metrics.Rejected.Inc()
		}
		s.deps.Logger.Warn("pipeline.task.rejected", "queued", s.queue.Len(), "capacity", s.queue.Cap())
		return uuid.Nil, ErrQueueFull
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.Submitted.Inc()
	}
	s.deps.Logger.Debug("pipeline.task.submitted", "task_id", task.ID.String(), "category", string(req.EventCategory))
	return task.ID, nil
}

// Status returns the last published state of the task.
func (s *Service) Status(taskID uuid.UUID) (domain.StatusSnapshot, error) {
	snapshot, ok := s.deps.Publisher.Snapshot(taskID)
	if !ok {
		return domain.StatusSnapshot{}, ErrTaskNotFound
	}
	return snapshot, nil
}

// Subscribe opens the live stream for a known task.
func (s *Service) Subscribe(taskID uuid.UUID) (*status.Subscription, error) {
	if _, ok := s.deps.Publisher.Snapshot(taskID); !ok {
		return nil, ErrTaskNotFound
	}
	return s.deps.Publisher.Subscribe(taskID)
}

// Unsubscribe stops delivery to sub. The task keeps running.
func (s *Service) Unsubscribe(sub *status.Subscription) {
	s.deps.Publisher.Unsubscribe(sub)
}

// Wait blocks until the task reaches a terminal state or ctx ends. It claims
// the task's subscription, replacing any other live subscriber.
func (s *Service) Wait(ctx context.Context, taskID uuid.UUID) (domain.StatusSnapshot, error) {
	sub, err := s.Subscribe(taskID)
	if err != nil {
		return domain.StatusSnapshot{}, err
	}
	defer s.Unsubscribe(sub)

	events := sub.Events()
	for {
		select {
		case <-ctx.Done():
			snapshot, _ := s.deps.Publisher.Snapshot(taskID)
			return snapshot, ctx.Err()
		case event, ok := <-events:
			if !ok {
				snapshot, found := s.deps.Publisher.Snapshot(taskID)
				if found && snapshot.Status.IsTerminal() {
					return snapshot, nil
				}
				return snapshot, ErrSubscriptionClosed
			}
			if event.Terminal {
				return event.Snapshot(), nil
			}
		}
	}
}

// Run processes tasks until ctx is cancelled or Close has been called and
// the queue is drained.
func (s *Service) Run(ctx context.Context) error {
	s.deps.Logger.Info("pipeline.service.started", "workers", s.cfg.Workers, "queue", s.cfg.QueueSize)
	err := s.pool.Run(ctx)
	s.deps.Logger.Info("pipeline.service.stopped", "handled", s.pool.Handled())
	return err
}

// Close stops accepting submissions. Queued tasks still run.
func (s *Service) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.queue.Close()
	}
}

// Pending reports tasks waiting for a worker.
func (s *Service) Pending() int {
	return s.queue.Len()
}

// Journal returns the outcome journal, nil when none was configured.
func (s *Service) Journal() jobs.Journal {
	return s.deps.Journal
}

// handle runs the task detached from the pool context so a shutdown never
// leaves a task between states.
func (s *Service) handle(ctx context.Context, task *domain.GenerationTask) {
	s.orchestrator.Run(context.WithoutCancel(ctx), task)
}

func (s *Service) sweep(now time.Time) {
	cutoff := now.Add(-s.cfg.Retention)
	pruned := s.deps.Publisher.Prune(cutoff)
	var journaled int
	if s.deps.Journal != nil {
		n, err := s.deps.Journal.Prune(context.Background(), cutoff)
		if err != nil {
			s.deps.Logger.Warn("pipeline.journal.prune_failed", "error", err)
		}
		journaled = n
	}
	if pruned > 0 || journaled > 0 {
		s.deps.Logger.Debug("pipeline.retention.swept", "snapshots", pruned, "outcomes", journaled)
	}
}
