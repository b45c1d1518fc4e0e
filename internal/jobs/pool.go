package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-invites/internal/logging"
	"github.com/goliatone/go-invites/pkg/interfaces"
)

// Handler processes one queued item. It owns the item for its lifetime.
type Handler[T any] func(ctx context.Context, item T)

// Sweeper runs periodically while the pool is alive.
type Sweeper func(now time.Time)

type poolConfig struct {
	workers    int
	sweeper    Sweeper
	sweepEvery time.Duration
	now        func() time.Time
	logger     interfaces.Logger
}

// PoolOption configures a Pool.
type PoolOption func(*poolConfig)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) PoolOption {
	return func(c *poolConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithSweeper registers a janitor invoked every interval.
func WithSweeper(interval time.Duration, sweeper Sweeper) PoolOption {
	return func(c *poolConfig) {
		if sweeper != nil && interval > 0 {
			c.sweeper = sweeper
			c.sweepEvery = interval
		}
	}
}

// WithClock overrides the time source handed to the sweeper.
func WithClock(clock func() time.Time) PoolOption {
	return func(c *poolConfig) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger interfaces.Logger) PoolOption {
	return func(c *poolConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Pool drains a Queue with a fixed number of workers.
type Pool[T any] struct {
	queue   *Queue[T]
	handler Handler[T]
	cfg     poolConfig
	active  atomic.Int64
	handled atomic.Int64
}

// NewPool builds a pool; it does not start any goroutine until Run.
func NewPool[T any](queue *Queue[T], handler Handler[T], opts ...PoolOption) *Pool[T] {
	cfg := poolConfig{
		workers: 1,
		now:     time.Now,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Pool[T]{queue: queue, handler: handler, cfg: cfg}
}

// Workers returns the configured worker count.
func (p *Pool[T]) Workers() int {
	return p.cfg.workers
}

// Active reports items currently being handled.
func (p *Pool[T]) Active() int {
	return int(p.active.Load())
}

// Handled reports items finished since start.
func (p *Pool[T]) Handled() int {
	return int(p.handled.Load())
}

// Run blocks until ctx is cancelled or the queue is closed and drained.
func (p *Pool[T]) Run(ctx context.Context) error {
	if p.queue == nil || p.handler == nil {
		return errors.New("jobs: pool requires a queue and a handler")
	}
	group, gctx := errgroup.WithContext(ctx)

	var workers sync.WaitGroup
	workersDone := make(chan struct{})
	for i := 0; i < p.cfg.workers; i++ {
		workers.Add(1)
		worker := i
		group.Go(func() error {
			defer workers.Done()
			return p.work(gctx, worker)
		})
	}
	go func() {
		workers.Wait()
		close(workersDone)
	}()

	if p.cfg.sweeper != nil {
		group.Go(func() error {
			return p.sweep(gctx, workersDone)
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (p *Pool[T]) work(ctx context.Context, worker int) error {
	items := p.queue.receive()
	for {
		select {
		case <-ctx.Done():
			return nil
		case item, ok := <-items:
			if !ok {
				return nil
			}
			p.handle(ctx, worker, item)
		}
	}
}

func (p *Pool[T]) handle(ctx context.Context, worker int, item T) {
	p.active.Add(1)
	defer func() {
		p.active.Add(-1)
		p.handled.Add(1)
		if rec := recover(); rec != nil {
			p.cfg.logger.Error("jobs.worker.panic",
				"worker", worker,
				"error", fmt.Sprint(rec),
			)
		}
	}()
	p.handler(ctx, item)
}

func (p *Pool[T]) sweep(ctx context.Context, done <-chan struct{}) error {
	ticker := time.NewTicker(p.cfg.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-done:
			return nil
		case <-ticker.C:
			p.cfg.sweeper(p.cfg.now())
		}
	}
}
