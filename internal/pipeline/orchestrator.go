package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-invites/internal/assembler"
	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/internal/identity"
	"github.com/goliatone/go-invites/internal/jobs"
	"github.com/goliatone/go-invites/internal/llm"
	"github.com/goliatone/go-invites/internal/logging"
	"github.com/goliatone/go-invites/internal/parser"
	"github.com/goliatone/go-invites/internal/slugs"
	"github.com/goliatone/go-invites/internal/status"
	"github.com/goliatone/go-invites/internal/theming"
	"github.com/goliatone/go-invites/pkg/interfaces"
)

// Geocoder resolves a venue address. ok is false whenever no coordinates
// are available; implementations never return errors.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*domain.GeocodeResult, bool)
}

// SiteStore is the persistence gateway for generated sites.
type SiteStore interface {
	ListExistingSlugs(ctx context.Context) (slugs.Set, error)
	Save(ctx context.Context, site *domain.GeneratedSite) (uuid.UUID, error)
}

// Notes recorded on a task when a collaborator degrades.
const (
	NoteGeneratorUnavailable = "generator_unavailable"
	NoteParseDegraded        = "parse_degraded"
	NoteContentFallback      = "content_fallback"
	NoteGeocodeUnavailable   = "geocode_unavailable"
	NoteGeocodeSkipped       = "geocode_skipped"
	NoteSlugRetried          = "slug_retried"
)

var noteMessages = map[string]string{
	NoteGeneratorUnavailable: "text service unavailable, using request details",
	NoteParseDegraded:        "generated text was unstructured",
	NoteContentFallback:      "using fallback content",
	NoteGeocodeUnavailable:   "map unavailable, showing address only",
	NoteGeocodeSkipped:       "no address to locate",
	NoteSlugRetried:          "address collided, picked another",
}

var stateMessages = map[domain.Status]string{
	domain.StatusQueued:           "queued",
	domain.StatusCallingGenerator: "writing invitation copy",
	domain.StatusParsing:          "reading generated content",
	domain.StatusTheming:          "choosing colors and layout",
	domain.StatusGeocoding:        "locating the venue",
	domain.StatusAssembling:       "assembling the page",
	domain.StatusPersisting:       "publishing the invitation",
	domain.StatusCompleted:        "invitation ready",
}

// DefaultSaveAttempts bounds slug regeneration when a concurrent task takes
// the same slug between listing and insert.
const DefaultSaveAttempts = 3

// step performs the work of one state and returns the next state.
type step func(ctx context.Context, r *run) (domain.Status, error)

// run is the per-task scratch space. Only the owning worker touches it.
type run struct {
	task     *domain.GenerationTask
	request  domain.GenerationRequest
	reply    string
	replyErr error
	content  domain.ParsedContent
	theme    domain.ThemeProfile
	geocode  *domain.GeocodeResult
	existing slugs.Set
	slug     string
	document assembler.Document
	notes    []string
	logger   interfaces.Logger
}

func (r *run) note(note string) {
	r.task.Note(note)
	r.notes = append(r.notes, note)
}

// Dependencies are the collaborators the orchestrator drives.
type Dependencies struct {
	Generator interfaces.TextGenerator
	Geocoder  Geocoder
	Store     SiteStore
	Parser    *parser.Parser
	Theming   *theming.Engine
	Assembler *assembler.Assembler
	Slugs     *slugs.Generator
	Routes    interfaces.RouteResolver
	Publisher *status.Publisher
	Journal   jobs.Journal
	Metrics   *Metrics
	Prompt    llm.PromptOptions
	Logger    interfaces.Logger
	Clock     func() time.Time
}

// Orchestrator drives one task at a time through the state table. It keeps
// no per-task state between calls and may be shared by all workers.
type Orchestrator struct {
	deps         Dependencies
	steps        map[domain.Status]step
	saveAttempts int
}

// NewOrchestrator fills defaults for optional collaborators.
func NewOrchestrator(deps Dependencies) (*Orchestrator, error) {
	if deps.Store == nil {
		return nil, ErrStoreRequired
	}
	if deps.Generator == nil {
		deps.Generator = llm.Disabled{}
	}
	if deps.Geocoder == nil {
		deps.Geocoder = noGeocoder{}
	}
	if deps.Parser == nil {
		deps.Parser = parser.New()
	}
	if deps.Theming == nil {
		engine, err := theming.New()
		if err != nil {
			return nil, err
		}
		deps.Theming = engine
	}
	if deps.Routes == nil {
		deps.Routes = assembler.NewRoutes(assembler.RouteConfig{})
	}
	if deps.Assembler == nil {
		deps.Assembler = assembler.New(assembler.WithRoutes(deps.Routes))
	}
	if deps.Slugs == nil {
		deps.Slugs = slugs.New()
	}
	if deps.Publisher == nil {
		deps.Publisher = status.NewPublisher()
	}
	if deps.Prompt == (llm.PromptOptions{}) {
		deps.Prompt = llm.DefaultPromptOptions()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return time.Now().UTC() }
	}

	o := &Orchestrator{deps: deps, saveAttempts: DefaultSaveAttempts}
	o.steps = map[domain.Status]step{
		domain.StatusQueued:           o.validate,
		domain.StatusCallingGenerator: o.callGenerator,
		domain.StatusParsing:          o.parse,
		domain.StatusTheming:          o.resolveTheme,
		domain.StatusGeocoding:        o.locate,
		domain.StatusAssembling:       o.assemble,
		domain.StatusPersisting:       o.persist,
	}
	return o, nil
}

type noGeocoder struct{}

func (noGeocoder) Geocode(context.Context, string) (*domain.GeocodeResult, bool) { return nil, false }

// Run drives task to a terminal state, publishing every transition.
func (o *Orchestrator) Run(ctx context.Context, task *domain.GenerationTask) *domain.GenerationTask {
	ctx = logging.ContextWithTask(ctx, task.ID.String())
	r := &run{
		task:    task,
		request: task.Request.Normalized(),
		logger:  logging.WithTaskContext(o.deps.Logger, task.ID.String(), ""),
	}
	if o.deps.Metrics != nil {
		o.deps.Metrics.InFlight.Inc()
		defer o.deps.Metrics.InFlight.Dec()
	}

	current := task.Status
	var kind FailureKind
	for !current.IsTerminal() {
		fn, ok := o.steps[current]
		if !ok {
			kind = o.fail(ctx, r, current, internalFailure(fmt.Errorf("%w: %s", errMissingStep, current)))
			break
		}
		started := o.deps.Clock()
		noteMark := len(r.notes)
		next, err := fn(ctx, r)
		o.deps.Metrics.observeStep(current, o.deps.Clock().Sub(started))
		if err != nil {
			kind = o.fail(ctx, r, current, err)
			break
		}
		o.advance(ctx, r, next, r.notes[noteMark:])
		r.logger.Debug("pipeline.task.transition", "from", current.String(), "to", next.String(), "progress", task.Progress)
		current = next
	}

	o.deps.Metrics.finished(task, kind)
	o.record(ctx, r, kind)
	if task.Status == domain.StatusCompleted {
		r.logger.Info("pipeline.task.completed",
			"site_id", task.SiteID.String(),
			"slug", task.Slug,
			"notes", strings.Join(task.Notes, ","),
		)
	}
	return task
}

func (o *Orchestrator) advance(ctx context.Context, r *run, next domain.Status, notes []string) {
	message := stateMessages[next]
	for _, note := range notes {
		if text, ok := noteMessages[note]; ok {
			message += "; " + text
		}
	}
	r.task.Advance(next, message, o.deps.Clock())
	o.deps.Publisher.Publish(ctx, r.task.Event())
}

func (o *Orchestrator) fail(ctx context.Context, r *run, at domain.Status, err error) FailureKind {
	f := classify(err)
	r.task.ErrorCode = f.code
	r.task.SiteID = uuid.Nil
	r.task.Advance(domain.StatusFailed, f.message, o.deps.Clock())
	fields := []any{"at", at.String(), "reason", string(f.kind), "error", err}
	if f.loud {
		r.logger.Error("pipeline.task.failed", fields...)
	} else {
		r.logger.Warn("pipeline.task.failed", fields...)
	}
	o.deps.Publisher.Publish(ctx, r.task.Event())
	return f.kind
}

func (o *Orchestrator) record(ctx context.Context, r *run, kind FailureKind) {
	if o.deps.Journal == nil {
		return
	}
	finished := o.deps.Clock()
	if r.task.CompletedAt != nil {
		finished = *r.task.CompletedAt
	}
	outcome := jobs.Outcome{
		TaskID:     r.task.ID.String(),
		Status:     r.task.Status.String(),
		Slug:       r.task.Slug,
		ErrorCode:  r.task.ErrorCode,
		Notes:      r.task.Notes,
		Duration:   finished.Sub(r.task.CreatedAt),
		FinishedAt: finished,
	}
	if r.task.SiteID != uuid.Nil {
		outcome.SiteID = r.task.SiteID.String()
	}
	if err := o.deps.Journal.Record(ctx, outcome); err != nil {
		r.logger.Warn("pipeline.journal.failed", "error", err, "reason", string(kind))
	}
}

func (o *Orchestrator) validate(_ context.Context, r *run) (domain.Status, error) {
	if err := r.task.Request.Validate(); err != nil {
		return "", validationFailed(err)
	}
	return domain.StatusCallingGenerator, nil
}

func (o *Orchestrator) callGenerator(ctx context.Context, r *run) (domain.Status, error) {
	prompt := llm.BuildPrompt(r.request, o.deps.Prompt)
	reply, err := o.deps.Generator.Complete(ctx, prompt)
	if err != nil {
		if !errors.Is(err, interfaces.ErrGeneratorUnavailable) {
			err = fmt.Errorf("%w: %v", interfaces.ErrGeneratorUnavailable, err)
		}
		r.replyErr = err
		r.note(NoteGeneratorUnavailable)
		o.deps.Metrics.fallback(FallbackGenerator)
		r.logger.Warn("pipeline.generator.unavailable", "error", err)
		return domain.StatusParsing, nil
	}
	r.reply = reply
	return domain.StatusParsing, nil
}

func (o *Orchestrator) parse(_ context.Context, r *run) (domain.Status, error) {
	content, outcome := o.deps.Parser.Parse(r.reply, r.replyErr, r.request)
	switch outcome {
	case parser.OutcomeDegraded:
		r.note(NoteParseDegraded)
		o.deps.Metrics.fallback(FallbackParser)
	case parser.OutcomeFallback:
		r.note(NoteContentFallback)
	}
	r.content = content
	return domain.StatusTheming, nil
}

func (o *Orchestrator) resolveTheme(_ context.Context, r *run) (domain.Status, error) {
	r.theme = o.deps.Theming.Resolve(theming.InputFromRequest(r.request))
	return domain.StatusGeocoding, nil
}

func (o *Orchestrator) locate(ctx context.Context, r *run) (domain.Status, error) {
	address := r.request.Details.Location()
	if address == "" {
		r.note(NoteGeocodeSkipped)
		return domain.StatusAssembling, nil
	}
	result, ok := o.deps.Geocoder.Geocode(ctx, address)
	if !ok {
		r.note(NoteGeocodeUnavailable)
		o.deps.Metrics.fallback(FallbackGeocoder)
		return domain.StatusAssembling, nil
	}
	r.geocode = result
	return domain.StatusAssembling, nil
}

func (o *Orchestrator) assemble(ctx context.Context, r *run) (domain.Status, error) {
	r.task.SiteID = identity.SiteUUID(r.task.ID)
	existing, err := o.deps.Store.ListExistingSlugs(ctx)
	if err != nil {
		return "", persistenceFailed(err)
	}
	r.existing = existing
	if err := o.render(r); err != nil {
		return "", err
	}
	return domain.StatusPersisting, nil
}

// render picks a slug against r.existing and assembles the document.
func (o *Orchestrator) render(r *run) error {
	slug, err := o.deps.Slugs.Generate(r.content.Title, r.existing)
	if err != nil {
		return slugExhausted(err)
	}
	r.slug = slug
	doc, err := o.deps.Assembler.Assemble(assembler.Input{
		Request: r.request,
		Content: r.content,
		Theme:   r.theme,
		Geocode: r.geocode,
		Slug:    slug,
		SiteID:  r.task.SiteID,
	})
	if err != nil {
		return assemblyFailed(err)
	}
	r.document = doc
	return nil
}

func (o *Orchestrator) persist(ctx context.Context, r *run) (domain.Status, error) {
	for attempt := 1; ; attempt++ {
		site := o.site(r)
		id, err := o.deps.Store.Save(ctx, site)
		if err == nil {
			r.task.SiteID = id
			r.task.Slug = site.Slug
			if url, urlErr := o.deps.Routes.SiteURL(site.Slug); urlErr == nil {
				r.task.URL = url
			} else {
				r.logger.Warn("pipeline.route.failed", "slug", site.Slug, "error", urlErr)
			}
			return domain.StatusCompleted, nil
		}
		if !errors.Is(err, domain.ErrSlugTaken) {
			return "", persistenceFailed(err)
		}
		if attempt >= o.saveAttempts {
			return "", persistenceFailed(goerrors.Wrap(errSlugRaceExhaust, goerrors.CategoryConflict, err.Error()))
		}
		r.logger.Warn("pipeline.slug.collision", "slug", site.Slug, "attempt", attempt)
		if r.existing == nil {
			r.existing = slugs.NewSet()
		}
		r.existing[site.Slug] = struct{}{}
		if existing, listErr := o.deps.Store.ListExistingSlugs(ctx); listErr == nil {
			for value := range existing {
				r.existing[value] = struct{}{}
			}
		}
		if len(r.notes) == 0 || r.notes[len(r.notes)-1] != NoteSlugRetried {
			r.note(NoteSlugRetried)
		}
		if err := o.render(r); err != nil {
			return "", err
		}
	}
}

func (o *Orchestrator) site(r *run) *domain.GeneratedSite {
	return &domain.GeneratedSite{
		ID:              r.task.SiteID,
		TaskID:          r.task.ID,
		Slug:            r.slug,
		Title:           r.content.Title,
		MetaDescription: r.content.Description,
		EventCategory:   r.request.EventCategory,
		Scheme:          r.theme.Scheme,
		Theme:           r.theme,
		Content:         r.content,
		Request:         r.request,
		Geocode:         r.geocode,
		Document:        r.document.HTML,
		Fingerprint:     identity.Fingerprint(r.request),
		IsPublished:     true,
		CreatedAt:       o.deps.Clock(),
	}
}
