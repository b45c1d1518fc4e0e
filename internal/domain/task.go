package domain

import (
	"time"

	"github.com/google/uuid"
)

// GenerationTask tracks one pipeline run. Only the worker that owns the
// task mutates it.
type GenerationTask struct {
	ID          uuid.UUID
	Request     GenerationRequest
	Status      Status
	Progress    int
	Message     string
	Notes       []string
	SiteID      uuid.UUID
	Slug        string
	URL         string
	ErrorCode   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// NewTask builds a queued task for the request.
func NewTask(id uuid.UUID, request GenerationRequest, now time.Time) *GenerationTask {
	return &GenerationTask{
		ID:        id,
		Request:   request,
		Status:    StatusQueued,
		Message:   "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Advance moves the task to status, keeping progress non-decreasing.
func (t *GenerationTask) Advance(status Status, message string, now time.Time) {
	t.Status = status
	if progress, ok := status.Progress(); ok && progress > t.Progress {
		t.Progress = progress
	}
	if message != "" {
		t.Message = message
	}
	t.UpdatedAt = now
	if status.IsTerminal() {
		completed := now
		t.CompletedAt = &completed
	}
}

// Note records a non-fatal marker.
func (t *GenerationTask) Note(note string) {
	if note == "" {
		return
	}
	t.Notes = append(t.Notes, note)
}

// Event renders the current state as a status event.
func (t *GenerationTask) Event() StatusEvent {
	return StatusEvent{
		TaskID:     t.ID,
		Status:     t.Status,
		Progress:   t.Progress,
		Message:    t.Message,
		SiteID:     t.SiteID,
		Slug:       t.Slug,
		URL:        t.URL,
		Terminal:   t.Status.IsTerminal(),
		OccurredAt: t.UpdatedAt,
	}
}
