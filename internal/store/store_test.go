package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/internal/pipeline"
	"github.com/goliatone/go-invites/internal/store"
	"github.com/goliatone/go-invites/pkg/testsupport"
)

var (
	_ pipeline.SiteStore = (*store.BunSiteStore)(nil)
	_ pipeline.SiteStore = (*store.MemorySiteStore)(nil)
)

func newBunDB(t *testing.T) *bun.DB {
	t.Helper()
	return testsupport.NewSiteDB(t)
}

func sampleSite(slug string) *domain.GeneratedSite {
	return &domain.GeneratedSite{
		ID:            uuid.New(),
		TaskID:        uuid.New(),
		Slug:          slug,
		Title:         "Anna's Party",
		EventCategory: domain.EventBirthday,
		Scheme:        "vintage",
		Theme:         domain.ThemeProfile{Scheme: "vintage", Palette: domain.Palette{Primary: "amber", Secondary: "orange", Accent: "yellow"}},
		Content:       domain.ParsedContent{Title: "Anna's Party", Description: "Cake and music", Source: domain.ContentStructured},
		Request:       domain.GenerationRequest{EventCategory: domain.EventBirthday, Details: domain.EventDetails{Title: "Anna's Party!!"}},
		Geocode:       &domain.GeocodeResult{Latitude: 55.75, Longitude: 37.61},
		Document:      "<!DOCTYPE html><html></html>",
		Fingerprint:   "fp",
		IsPublished:   true,
		CreatedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestBunSiteStoreSaveAndLookup(t *testing.T) {
	ctx := context.Background()
	db := newBunDB(t)

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheSvc, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	sites := store.NewBunSiteStore(db, store.WithCache(cacheSvc, repocache.NewDefaultKeySerializer()))

	site := sampleSite("annas-party")
	id, err := sites.Save(ctx, site)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id != site.ID {
		t.Fatalf("expected preallocated id %s, got %s", site.ID, id)
	}

	existing, err := sites.ListExistingSlugs(ctx)
	if err != nil {
		t.Fatalf("list slugs: %v", err)
	}
	if !existing.Has("annas-party") || len(existing) != 1 {
		t.Fatalf("unexpected slugs %v", existing)
	}

	byID, err := sites.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Slug != "annas-party" || byID.Theme.Palette.Primary != "amber" || byID.Geocode == nil {
		t.Fatalf("unexpected record %+v", byID)
	}
	bySlug, err := sites.GetBySlug(ctx, "annas-party")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if bySlug.ID != id || bySlug.Content.Description != "Cake and music" {
		t.Fatalf("unexpected record %+v", bySlug)
	}
}

func TestBunSiteStoreRejectsDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	sites := store.NewBunSiteStore(newBunDB(t))

	if _, err := sites.Save(ctx, sampleSite("day-of-joy")); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, err := sites.Save(ctx, sampleSite("day-of-joy"))
	if !errors.Is(err, domain.ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryConflict) {
		t.Fatalf("expected conflict category, got %v", err)
	}
}

func TestBunSiteStoreReportsDuplicateID(t *testing.T) {
	ctx := context.Background()
	sites := store.NewBunSiteStore(newBunDB(t))

	first := sampleSite("day-of-joy")
	if _, err := sites.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	again := sampleSite("another-day")
	again.ID = first.ID
	_, err := sites.Save(ctx, again)
	if errors.Is(err, domain.ErrSlugTaken) {
		t.Fatalf("expected a duplicate site error, got slug conflict %v", err)
	}
	var stored *goerrors.Error
	if !errors.As(err, &stored) || stored.TextCode != store.TextCodeDuplicate {
		t.Fatalf("expected %s, got %v", store.TextCodeDuplicate, err)
	}
}

func TestBunSiteStoreNotFound(t *testing.T) {
	sites := store.NewBunSiteStore(newBunDB(t))
	_, err := sites.GetBySlug(context.Background(), "missing")
	if !errors.Is(err, store.ErrSiteNotFound) {
		t.Fatalf("expected ErrSiteNotFound, got %v", err)
	}
}

func TestMemorySiteStore(t *testing.T) {
	ctx := context.Background()
	sites := store.NewMemorySiteStore()

	site := sampleSite("day-of-joy")
	if _, err := sites.Save(ctx, site); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := sites.Save(ctx, sampleSite("day-of-joy")); !errors.Is(err, domain.ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
	if _, err := sites.Save(ctx, site); err == nil {
		t.Fatalf("expected duplicate id rejection")
	}

	existing, _ := sites.ListExistingSlugs(ctx)
	if !existing.Has("day-of-joy") {
		t.Fatalf("expected slug listed")
	}
	got, err := sites.GetBySlug(ctx, "day-of-joy")
	if err != nil || got.ID != site.ID {
		t.Fatalf("unexpected lookup %+v (%v)", got, err)
	}
	if _, err := sites.GetByID(ctx, uuid.New()); !errors.Is(err, store.ErrSiteNotFound) {
		t.Fatalf("expected ErrSiteNotFound, got %v", err)
	}
	all, _ := sites.List(ctx)
	if len(all) != 1 {
		t.Fatalf("expected one site, got %d", len(all))
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := store.Open(context.Background(), store.Config{Driver: "mysql"}); !errors.Is(err, store.ErrUnsupportedDriver) {
		t.Fatalf("expected ErrUnsupportedDriver, got %v", err)
	}
}

func TestOpenSQLite(t *testing.T) {
	db, err := store.Open(context.Background(), store.Config{Driver: "sqlite", DSN: "file:open_test?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := store.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}
