package status

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/internal/logging"
	"github.com/goliatone/go-invites/pkg/interfaces"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 16

var ErrInvalidTask = errors.New("status: task id required")

// Sink receives every published event in addition to the live subscriber.
type Sink interface {
	Publish(ctx context.Context, event domain.StatusEvent) error
}

// Subscription is a live stream of events for one task. The channel is
// closed after the terminal event, on Unsubscribe, or when a newer
// subscription for the same task replaces it.
type Subscription struct {
	TaskID uuid.UUID
	sub    *subscriber
}

// Events returns the receive side of the subscription.
func (s *Subscription) Events() <-chan domain.StatusEvent {
	if s == nil || s.sub == nil {
		return nil
	}
	return s.sub.events
}

type subscriber struct {
	mu        sync.Mutex
	events    chan domain.StatusEvent
	closed    bool
	delivered bool
	progress  int
}

// offer delivers without blocking. It reports false when the event was
// dropped. Events behind what the subscriber already saw are skipped, and a
// snapshot replay is skipped once any live event got through.
func (s *subscriber) offer(event domain.StatusEvent, replay bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if s.delivered && (replay || event.Progress < s.progress) {
		return true
	}
	select {
	case s.events <- event:
		s.delivered = true
		s.progress = event.Progress
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

// Publisher fans progress events out to at most one live subscriber per task
// and keeps the last known snapshot for polling. Safe for concurrent use.
type Publisher struct {
	subscribers *xsync.MapOf[uuid.UUID, *subscriber]
	snapshots   *xsync.MapOf[uuid.UUID, domain.StatusSnapshot]
	sinks       []Sink
	buffer      int
	logger      interfaces.Logger
}

// Option configures the publisher.
type Option func(*Publisher)

// WithSink adds a sink that receives every event.
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

// WithBuffer sets the subscriber channel capacity.
func WithBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.buffer = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPublisher builds an empty registry.
func NewPublisher(opts ...Option) *Publisher {
	p := &Publisher{
		subscribers: xsync.NewMapOf[uuid.UUID, *subscriber](),
		snapshots:   xsync.NewMapOf[uuid.UUID, domain.StatusSnapshot](),
		buffer:      DefaultBuffer,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Publish records the snapshot and forwards the event. It never fails: with
// no subscriber the event is dropped, sink errors are logged.
func (p *Publisher) Publish(ctx context.Context, event domain.StatusEvent) {
	if event.TaskID == uuid.Nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	event.Terminal = event.Status.IsTerminal()
	p.snapshots.Store(event.TaskID, event.Snapshot())

	if sub, ok := p.subscribers.Load(event.TaskID); ok {
		if !sub.offer(event, false) {
			p.logger.Warn("status.event.dropped",
				"task_id", event.TaskID.String(),
				"status", event.Status.String(),
			)
		}
		if event.Terminal {
			p.remove(event.TaskID, sub)
		}
	}

	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			p.logger.Warn("status.sink.failed",
				"task_id", event.TaskID.String(),
				"status", event.Status.String(),
				"error", err,
			)
		}
	}
}

// Subscribe registers the live subscriber for taskID, replacing and closing
// any previous one. The current snapshot, when known, is delivered first; a
// task that already finished yields a closed stream holding its final state.
func (p *Publisher) Subscribe(taskID uuid.UUID) (*Subscription, error) {
	if taskID == uuid.Nil {
		return nil, ErrInvalidTask
	}
	sub := &subscriber{events: make(chan domain.StatusEvent, p.buffer)}
	if previous, loaded := p.subscribers.LoadAndStore(taskID, sub); loaded && previous != nil {
		previous.close()
	}

	if snapshot, ok := p.snapshots.Load(taskID); ok {
		event := snapshotEvent(snapshot)
		sub.offer(event, true)
		if event.Terminal {
			p.remove(taskID, sub)
		}
	}
	return &Subscription{TaskID: taskID, sub: sub}, nil
}

// Unsubscribe removes the subscription if it is still the registered one.
func (p *Publisher) Unsubscribe(s *Subscription) {
	if s == nil || s.sub == nil {
		return
	}
	p.remove(s.TaskID, s.sub)
}

// Snapshot returns the last known state of taskID.
func (p *Publisher) Snapshot(taskID uuid.UUID) (domain.StatusSnapshot, bool) {
	return p.snapshots.Load(taskID)
}

// Forget drops every trace of taskID and closes its subscription.
func (p *Publisher) Forget(taskID uuid.UUID) {
	p.snapshots.Delete(taskID)
	if sub, ok := p.subscribers.LoadAndDelete(taskID); ok && sub != nil {
		sub.close()
	}
}

// Subscribers reports the number of live subscriptions.
func (p *Publisher) Subscribers() int {
	return p.subscribers.Size()
}

// Prune forgets terminal snapshots last updated before cutoff.
func (p *Publisher) Prune(cutoff time.Time) int {
	removed := 0
	p.snapshots.Range(func(taskID uuid.UUID, snapshot domain.StatusSnapshot) bool {
		if snapshot.Status.IsTerminal() && snapshot.UpdatedAt.Before(cutoff) {
			p.snapshots.Delete(taskID)
			removed++
		}
		return true
	})
	return removed
}

func (p *Publisher) remove(taskID uuid.UUID, sub *subscriber) {
	p.subscribers.Compute(taskID, func(current *subscriber, loaded bool) (*subscriber, bool) {
		if !loaded {
			return nil, true
		}
		return current, current == sub
	})
	sub.close()
}

func snapshotEvent(s domain.StatusSnapshot) domain.StatusEvent {
	return domain.StatusEvent{
		TaskID:     s.TaskID,
		Status:     s.Status,
		Progress:   s.Progress,
		Message:    s.Message,
		SiteID:     s.SiteID,
		Slug:       s.Slug,
		URL:        s.URL,
		Terminal:   s.Status.IsTerminal(),
		OccurredAt: s.UpdatedAt,
	}
}
