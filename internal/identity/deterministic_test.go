package identity

import (
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-invites/internal/domain"
)

func TestUUIDIsStable(t *testing.T) {
	first := UUID("site", "abc")
	if first == uuid.Nil || first != UUID("site", " abc ") {
		t.Fatalf("expected stable non-nil uuid, got %s", first)
	}
	if UUID("request", "abc") == first {
		t.Fatalf("expected kinds to separate ids")
	}
	if UUID("site", "  ") != uuid.Nil || UUID("site") != uuid.Nil {
		t.Fatalf("expected nil uuid for blank parts")
	}
}

func TestSiteUUIDDependsOnTask(t *testing.T) {
	taskA := uuid.MustParse("8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999")
	taskB := uuid.MustParse("0f2c8e4a-3b1d-4a9e-9c7f-1e2d3c4b5a69")
	if SiteUUID(taskA) != SiteUUID(taskA) {
		t.Fatalf("expected deterministic site id")
	}
	if SiteUUID(taskA) == SiteUUID(taskB) || SiteUUID(taskA) == taskA {
		t.Fatalf("expected distinct site ids per task")
	}
	if SiteUUID(uuid.Nil) != uuid.Nil {
		t.Fatalf("expected nil site id for nil task")
	}
}

func TestFingerprintIgnoresFormatting(t *testing.T) {
	base := domain.GenerationRequest{
		EventCategory: domain.EventBirthday,
		ThemeLabel:    "vintage",
		Details:       domain.EventDetails{Title: "Anna's Party", Date: "2025-06-14"},
	}
	noisy := base
	noisy.EventCategory = " Birthday "
	noisy.ThemeLabel = "  vintage "

	if Fingerprint(base) == "" || Fingerprint(base) != Fingerprint(noisy) {
		t.Fatalf("expected equal fingerprints for equivalent requests")
	}
	changed := base
	changed.Details.Date = "2025-06-15"
	if Fingerprint(base) == Fingerprint(changed) {
		t.Fatalf("expected different fingerprint for different request")
	}
}
