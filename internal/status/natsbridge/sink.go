// Package natsbridge mirrors status events onto NATS subjects so processes
// other than the one running the pipeline can follow a task.
package natsbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/goliatone/go-invites/internal/domain"
)

// DefaultSubjectPrefix is prepended to the task id.
const DefaultSubjectPrefix = "invites.status"

var ErrNoConnection = errors.New("natsbridge: connection required")

// Conn is the subset of *nats.Conn used by the sink.
type Conn interface {
	Publish(subject string, data []byte) error
}

var _ Conn = (*nats.Conn)(nil)

// Sink publishes JSON encoded events to "<prefix>.<taskID>".
type Sink struct {
	conn   Conn
	prefix string
}

// Option configures the sink.
type Option func(*Sink)

// WithSubjectPrefix overrides DefaultSubjectPrefix.
func WithSubjectPrefix(prefix string) Option {
	return func(s *Sink) {
		if trimmed := strings.Trim(strings.TrimSpace(prefix), "."); trimmed != "" {
			s.prefix = trimmed
		}
	}
}

// New wraps an established connection.
func New(conn Conn, opts ...Option) (*Sink, error) {
	if conn == nil {
		return nil, ErrNoConnection
	}
	s := &Sink{conn: conn, prefix: DefaultSubjectPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Connect dials url and names the client connection.
func Connect(url, name string) (*nats.Conn, error) {
	opts := []nats.Option{}
	if name = strings.TrimSpace(name); name != "" {
		opts = append(opts, nats.Name(name))
	}
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("natsbridge: connect %s: %w", url, err)
	}
	return conn, nil
}

// Subject returns the subject events for taskID are published on.
func (s *Sink) Subject(event domain.StatusEvent) string {
	return s.prefix + "." + event.TaskID.String()
}

// Publish encodes and sends the event.
func (s *Sink) Publish(ctx context.Context, event domain.StatusEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("natsbridge: encode event: %w", err)
	}
	if err := s.conn.Publish(s.Subject(event), payload); err != nil {
		return fmt.Errorf("natsbridge: publish: %w", err)
	}
	return nil
}

// Decode parses a payload produced by Publish.
func Decode(data []byte) (domain.StatusEvent, error) {
	var event domain.StatusEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.StatusEvent{}, fmt.Errorf("natsbridge: decode event: %w", err)
	}
	return event, nil
}
