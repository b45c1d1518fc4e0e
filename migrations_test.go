package invites_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-invites"
	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/internal/store"
	"github.com/goliatone/go-invites/pkg/testsupport"
)

func TestEmbeddedMigrationsMatchSiteModel(t *testing.T) {
	files, err := fs.Glob(invites.GetMigrationsFS(), "data/sql/migrations/*.up.sql")
	if err != nil || len(files) == 0 {
		t.Fatalf("expected embedded up migrations, got %v (%v)", files, err)
	}

	db := testsupport.NewSQLiteDB(t)
	ctx := context.Background()
	for _, name := range files {
		contents, err := fs.ReadFile(invites.GetMigrationsFS(), name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		for _, statement := range strings.Split(string(contents), ";") {
			if strings.TrimSpace(statement) == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, statement); err != nil {
				t.Fatalf("apply %s: %v", name, err)
			}
		}
	}

	sites := store.NewBunSiteStore(db)
	site := &domain.GeneratedSite{
		ID:            uuid.New(),
		TaskID:        uuid.New(),
		Slug:          "garden-brunch",
		Title:         "Garden Brunch",
		EventCategory: domain.EventCorporate,
		Document:      "<html></html>",
		IsPublished:   true,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := sites.Save(ctx, site); err != nil {
		t.Fatalf("save against migrated schema: %v", err)
	}
	got, err := sites.GetBySlug(ctx, "garden-brunch")
	if err != nil || got.ID != site.ID {
		t.Fatalf("unexpected lookup %+v (%v)", got, err)
	}
}
