package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle states of a generation task.
type Status string

const (
	StatusQueued           Status = "queued"
	StatusCallingGenerator Status = "calling_generator"
	StatusParsing          Status = "parsing"
	StatusTheming          Status = "theming"
	StatusGeocoding        Status = "geocoding"
	StatusAssembling       Status = "assembling"
	StatusPersisting       Status = "persisting"
	StatusCompleted        Status = "completed"
	StatusFailed           Status = "failed"
)

// progressSchedule pins the progress value published when a task enters a state.
var progressSchedule = map[Status]int{
	StatusQueued:           0,
	StatusCallingGenerator: 10,
	StatusParsing:          25,
	StatusTheming:          45,
	StatusGeocoding:        60,
	StatusAssembling:       75,
	StatusPersisting:       90,
	StatusCompleted:        100,
}

// Progress returns the scheduled progress for the status. Failed has no
// scheduled value and reports ok=false so callers keep the last published value.
func (s Status) Progress() (int, bool) {
	value, ok := progressSchedule[s]
	return value, ok
}

// IsTerminal reports whether no further transitions can happen.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus maps a raw string into a known Status.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	if status == StatusFailed {
		return status, true
	}
	if _, ok := progressSchedule[status]; ok {
		return status, true
	}
	return "", false
}

// StatusEvent is a single progress notification for a task.
type StatusEvent struct {
	TaskID     uuid.UUID `json:"task_id"`
	Status     Status    `json:"status"`
	Progress   int       `json:"progress"`
	Message    string    `json:"message,omitempty"`
	SiteID     uuid.UUID `json:"site_id,omitempty"`
	Slug       string    `json:"slug,omitempty"`
	URL        string    `json:"url,omitempty"`
	Terminal   bool      `json:"terminal"`
	OccurredAt time.Time `json:"occurred_at"`
}

// StatusSnapshot is the point-in-time view returned by status polling.
type StatusSnapshot struct {
	TaskID    uuid.UUID `json:"task_id"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message,omitempty"`
	SiteID    uuid.UUID `json:"site_id,omitempty"`
	Slug      string    `json:"slug,omitempty"`
	URL       string    `json:"url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot converts the event into the polling view.
func (e StatusEvent) Snapshot() StatusSnapshot {
	return StatusSnapshot{
		TaskID:    e.TaskID,
		Status:    e.Status,
		Progress:  e.Progress,
		Message:   e.Message,
		SiteID:    e.SiteID,
		Slug:      e.Slug,
		URL:       e.URL,
		UpdatedAt: e.OccurredAt,
	}
}
