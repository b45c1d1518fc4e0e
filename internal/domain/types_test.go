package domain_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-invites/internal/domain"
	"github.com/google/uuid"
)

func TestGenerationRequestValidateRequiresTitle(t *testing.T) {
	req := domain.GenerationRequest{EventCategory: domain.EventBirthday}
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for missing title")
	}

	req.Details.Title = "  "
	if err := req.Validate(); err == nil {
		t.Fatal("expected validation error for blank title")
	}

	req.Details.Title = "Day of Joy"
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestGenerationRequestValidateOptionalFields(t *testing.T) {
	base := domain.GenerationRequest{Details: domain.EventDetails{Title: "Party"}}

	cases := []struct {
		name    string
		mutate  func(*domain.GenerationRequest)
		wantErr bool
	}{
		{"bad time", func(r *domain.GenerationRequest) { r.Details.Time = "25:99" }, true},
		{"good time", func(r *domain.GenerationRequest) { r.Details.Time = "18:30" }, false},
		{"bad email", func(r *domain.GenerationRequest) { r.Details.Contact.Email = "nobody" }, true},
		{"good email", func(r *domain.GenerationRequest) { r.Details.Contact.Email = "host@example.com" }, false},
		{"bad dress code", func(r *domain.GenerationRequest) { r.Details.DressCode.Type = "pyjamas" }, true},
		{"good dress code", func(r *domain.GenerationRequest) { r.Details.DressCode.Type = "smart_casual" }, false},
		{"unknown category", func(r *domain.GenerationRequest) { r.EventCategory = "funeral" }, true},
		{"malformed date is allowed", func(r *domain.GenerationRequest) { r.Details.Date = "next friday" }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			err := req.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestEventCategoryNormalize(t *testing.T) {
	if got := domain.EventCategory(" Baby-Shower ").Normalize(); got != domain.EventBabyShower {
		t.Fatalf("expected baby_shower, got %q", got)
	}
	if got := domain.EventCategory("").Normalize(); got != domain.EventOther {
		t.Fatalf("expected other, got %q", got)
	}
}

func TestEventDetailsEventDate(t *testing.T) {
	details := domain.EventDetails{Date: "2025-06-14"}
	date, ok := details.EventDate()
	if !ok || date.Day() != 14 || date.Month() != time.June {
		t.Fatalf("unexpected date %v (ok=%v)", date, ok)
	}
	if _, ok := (domain.EventDetails{Date: "14/06/2025"}).EventDate(); ok {
		t.Fatal("expected malformed date to be rejected")
	}
}

func TestTaskAdvanceKeepsProgressMonotonic(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	task := domain.NewTask(uuid.New(), domain.GenerationRequest{}, now)

	task.Advance(domain.StatusParsing, "parsing", now)
	if task.Progress != 25 {
		t.Fatalf("expected progress 25, got %d", task.Progress)
	}
	task.Advance(domain.StatusCallingGenerator, "", now)
	if task.Progress != 25 {
		t.Fatalf("expected progress to stay at 25, got %d", task.Progress)
	}
	task.Advance(domain.StatusFailed, "boom", now)
	if task.Progress != 25 || task.CompletedAt == nil {
		t.Fatalf("expected failed task to keep progress and completion time, got %+v", task)
	}
	if !task.Event().Terminal {
		t.Fatal("expected terminal event")
	}
}
