package store

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/internal/logging"
	"github.com/goliatone/go-invites/internal/slugs"
	"github.com/goliatone/go-invites/pkg/interfaces"
)

// NewSiteRepository creates the bun repository for generated sites.
func NewSiteRepository(db *bun.DB) repository.Repository[*domain.GeneratedSite] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*domain.GeneratedSite]{
		NewRecord:          func() *domain.GeneratedSite { return &domain.GeneratedSite{} },
		GetID:              func(site *domain.GeneratedSite) uuid.UUID { return site.ID },
		SetID:              func(site *domain.GeneratedSite, id uuid.UUID) { site.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(site *domain.GeneratedSite) string { return site.Slug },
	})
}

// BunSiteStore persists sites through go-repository-bun, optionally behind
// a read cache.
type BunSiteStore struct {
	db     *bun.DB
	repo   repository.Repository[*domain.GeneratedSite]
	logger interfaces.Logger
}

// BunOption configures the bun store.
type BunOption func(*bunOptions)

type bunOptions struct {
	cache      cache.CacheService
	serializer cache.KeySerializer
	logger     interfaces.Logger
}

// WithCache enables cached lookups by id and slug.
func WithCache(service cache.CacheService, serializer cache.KeySerializer) BunOption {
	return func(o *bunOptions) {
		o.cache = service
		o.serializer = serializer
	}
}

// WithLogger sets the store logger.
func WithLogger(logger interfaces.Logger) BunOption {
	return func(o *bunOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewBunSiteStore wires the repository over db.
func NewBunSiteStore(db *bun.DB, opts ...BunOption) *BunSiteStore {
	options := bunOptions{logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	base := NewSiteRepository(db)
	if options.cache != nil && options.serializer != nil {
		base = repositorycache.New(base, options.cache, options.serializer)
	}
	return &BunSiteStore{db: db, repo: base, logger: options.logger}
}

// ListExistingSlugs returns every slug currently stored.
func (s *BunSiteStore) ListExistingSlugs(ctx context.Context) (slugs.Set, error) {
	var values []string
	if err := s.db.NewSelect().
		Model((*domain.GeneratedSite)(nil)).
		Column("slug").
		Scan(ctx, &values); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "list site slugs")
	}
	return slugs.NewSet(values...), nil
}

// Save inserts the site in a single statement. A slug collision yields an
// error matching domain.ErrSlugTaken.
func (s *BunSiteStore) Save(ctx context.Context, site *domain.GeneratedSite) (uuid.UUID, error) {
	if site == nil {
		return uuid.Nil, goerrors.New("site required", goerrors.CategoryValidation)
	}
	if site.ID == uuid.Nil {
		site.ID = uuid.New()
	}
	record, err := s.repo.Create(ctx, site)
	if err != nil {
		mapped := s.mapSaveError(ctx, err, site)
		s.logger.Warn("store.site.save_failed", "site_id", site.ID.String(), "slug", site.Slug, "error", err)
		return uuid.Nil, mapped
	}
	s.logger.Debug("store.site.saved", "site_id", record.ID.String(), "slug", record.Slug)
	return record.ID, nil
}

// GetByID loads a site by primary key.
func (s *BunSiteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GeneratedSite, error) {
	record, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapLookupError(err, "id", id.String())
	}
	return record, nil
}

// GetBySlug loads a site by its public slug.
func (s *BunSiteStore) GetBySlug(ctx context.Context, slug string) (*domain.GeneratedSite, error) {
	slug = strings.TrimSpace(slug)
	record, err := s.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapLookupError(err, "slug", slug)
	}
	return record, nil
}

func (s *BunSiteStore) mapSaveError(ctx context.Context, err error, site *domain.GeneratedSite) error {
	violated, column := duplicateKey(err)
	if violated && column == columnUnknown && s.slugOwnedElsewhere(ctx, site) {
		column = columnSlug
	}
	switch {
	case violated && column == columnSlug:
		return goerrors.Wrap(domain.ErrSlugTaken, goerrors.CategoryConflict, err.Error()).
			WithTextCode(TextCodeSlugTaken).
			WithMetadata(map[string]any{"slug": site.Slug})
	case violated:
		return goerrors.Wrap(err, goerrors.CategoryConflict, "site already stored").
			WithTextCode(TextCodeDuplicate).
			WithMetadata(map[string]any{"site_id": site.ID.String()})
	default:
		return goerrors.Wrap(err, goerrors.CategoryOperation, "insert site")
	}
}

// slugOwnedElsewhere reports whether another site already holds site.Slug.
func (s *BunSiteStore) slugOwnedElsewhere(ctx context.Context, site *domain.GeneratedSite) bool {
	exists, err := s.db.NewSelect().
		Model((*domain.GeneratedSite)(nil)).
		Where("slug = ?", site.Slug).
		Where("id != ?", site.ID).
		Exists(ctx)
	if err != nil {
		s.logger.Warn("store.site.slug_check_failed", "slug", site.Slug, "error", err)
		return false
	}
	return exists
}

func mapLookupError(err error, field, value string) error {
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return notFound(field, value)
	}
	return goerrors.Wrap(err, goerrors.CategoryOperation, "load site")
}

func notFound(field, value string) error {
	return goerrors.Wrap(ErrSiteNotFound, goerrors.CategoryNotFound, "site lookup").
		WithTextCode(TextCodeSiteNotFound).
		WithMetadata(map[string]any{field: value})
}
