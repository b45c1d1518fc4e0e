package jobs

import (
	"context"
	"sync"
	"time"
)

// Outcome captures how a finished task ended.
type Outcome struct {
	TaskID     string
	Status     string
	SiteID     string
	Slug       string
	ErrorCode  string
	Notes      []string
	Duration   time.Duration
	FinishedAt time.Time
}

// Journal records task outcomes for inspection until retention expires.
type Journal interface {
	Record(ctx context.Context, outcome Outcome) error
	List(ctx context.Context) ([]Outcome, error)
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// InMemoryJournal accumulates outcomes in process memory.
type InMemoryJournal struct {
	mu       sync.Mutex
	outcomes []Outcome
	err      error
}

// NewInMemoryJournal constructs an empty journal.
func NewInMemoryJournal() *InMemoryJournal {
	return &InMemoryJournal{}
}

// Record stores a copy of outcome.
func (j *InMemoryJournal) Record(_ context.Context, outcome Outcome) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	copied := outcome
	if copied.Notes != nil {
		copied.Notes = append([]string(nil), copied.Notes...)
	}
	j.outcomes = append(j.outcomes, copied)
	return nil
}

// Outcomes returns a snapshot of recorded entries.
func (j *InMemoryJournal) Outcomes() []Outcome {
	outcomes, _ := j.List(context.Background())
	return outcomes
}

// Fail configures the journal to return err on subsequent Record calls.
func (j *InMemoryJournal) Fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.err = err
}

// List returns the outcomes recorded so far, oldest first.
func (j *InMemoryJournal) List(context.Context) ([]Outcome, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Outcome, len(j.outcomes))
	copy(out, j.outcomes)
	return out, nil
}

// Prune drops outcomes that finished before cutoff.
func (j *InMemoryJournal) Prune(_ context.Context, cutoff time.Time) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	kept := j.outcomes[:0]
	removed := 0
	for _, outcome := range j.outcomes {
		if outcome.FinishedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, outcome)
	}
	j.outcomes = kept
	return removed, nil
}
