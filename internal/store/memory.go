package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/internal/slugs"
)

// MemorySiteStore keeps sites in process memory. Slug uniqueness is enforced
// the same way the database does.
type MemorySiteStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*domain.GeneratedSite
	bySlug map[string]uuid.UUID
}

// NewMemorySiteStore returns an empty store.
func NewMemorySiteStore() *MemorySiteStore {
	return &MemorySiteStore{
		byID:   make(map[uuid.UUID]*domain.GeneratedSite),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (m *MemorySiteStore) ListExistingSlugs(context.Context) (slugs.Set, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slugs.NewSet()
	for slug := range m.bySlug {
		out[slug] = struct{}{}
	}
	return out, nil
}

func (m *MemorySiteStore) Save(_ context.Context, site *domain.GeneratedSite) (uuid.UUID, error) {
	if site == nil {
		return uuid.Nil, goerrors.New("site required", goerrors.CategoryValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if site.ID == uuid.Nil {
		site.ID = uuid.New()
	}
	if _, ok := m.bySlug[site.Slug]; ok {
		return uuid.Nil, goerrors.Wrap(domain.ErrSlugTaken, goerrors.CategoryConflict, "slug "+site.Slug).
			WithTextCode(TextCodeSlugTaken).
			WithMetadata(map[string]any{"slug": site.Slug})
	}
	if _, ok := m.byID[site.ID]; ok {
		return uuid.Nil, goerrors.New("site already stored", goerrors.CategoryConflict).
			WithTextCode(TextCodeDuplicate).
			WithMetadata(map[string]any{"site_id": site.ID.String()})
	}
	copied := *site
	m.byID[site.ID] = &copied
	m.bySlug[site.Slug] = site.ID
	return site.ID, nil
}

func (m *MemorySiteStore) GetByID(_ context.Context, id uuid.UUID) (*domain.GeneratedSite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	site, ok := m.byID[id]
	if !ok {
		return nil, notFound("id", id.String())
	}
	copied := *site
	return &copied, nil
}

func (m *MemorySiteStore) GetBySlug(ctx context.Context, slug string) (*domain.GeneratedSite, error) {
	m.mu.RLock()
	id, ok := m.bySlug[strings.TrimSpace(slug)]
	m.mu.RUnlock()
	if !ok {
		return nil, notFound("slug", slug)
	}
	return m.GetByID(ctx, id)
}

// List returns stored sites ordered by slug.
func (m *MemorySiteStore) List(context.Context) ([]*domain.GeneratedSite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.GeneratedSite, 0, len(m.byID))
	for _, site := range m.byID {
		copied := *site
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}
