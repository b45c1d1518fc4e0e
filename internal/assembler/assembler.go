package assembler

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-invites/internal/calendar"
	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/internal/logging"
	"github.com/goliatone/go-invites/internal/markdown"
	"github.com/goliatone/go-invites/internal/theming"
	"github.com/goliatone/go-invites/pkg/interfaces"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	ErrMissingSiteID = errors.New("assembler: site id required")
	ErrRender        = errors.New("assembler: render failed")
)

// Input is everything needed to assemble one invitation document.
type Input struct {
	Request domain.GenerationRequest
	Content domain.ParsedContent
	Theme   domain.ThemeProfile
	Geocode *domain.GeocodeResult
	Slug    string
	SiteID  uuid.UUID
}

// Document is the assembled markup plus the names of the sections it contains.
type Document struct {
	HTML     string
	URL      string
	Sections []string
	RSVP     *domain.RSVPWidgetConfig
}

// Has reports whether the named section was rendered.
func (d Document) Has(name string) bool {
	for _, section := range d.Sections {
		if section == name {
			return true
		}
	}
	return false
}

// Assembler composes typed sections into a page. It holds no per-request
// state and is safe for concurrent use.
type Assembler struct {
	templates *template.Template
	calendar  *calendar.Generator
	markdown  *markdown.Renderer
	routes    interfaces.RouteResolver
	sections  []Section
	logger    interfaces.Logger
}

// Option configures the assembler.
type Option func(*Assembler)

// WithCalendar overrides the calendar generator.
func WithCalendar(generator *calendar.Generator) Option {
	return func(a *Assembler) {
		if generator != nil {
			a.calendar = generator
		}
	}
}

// WithMarkdown overrides the renderer used for info card bodies.
func WithMarkdown(renderer *markdown.Renderer) Option {
	return func(a *Assembler) {
		if renderer != nil {
			a.markdown = renderer
		}
	}
}

// WithRoutes sets the resolver used for the RSVP endpoint.
func WithRoutes(routes interfaces.RouteResolver) Option {
	return func(a *Assembler) {
		if routes != nil {
			a.routes = routes
		}
	}
}

// WithSections replaces the section list.
func WithSections(sections ...Section) Option {
	return func(a *Assembler) {
		if len(sections) > 0 {
			a.sections = sections
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// DefaultSections returns the page sections in render order.
func DefaultSections() []Section {
	return []Section{
		heroSection{},
		aboutSection{},
		calendarSection{},
		locationSection{},
		infoCardsSection{},
		timelineSection{},
		rsvpSection{},
		contactSection{},
		footerSection{},
	}
}

// New builds an assembler with embedded templates.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		templates: template.Must(template.New("assembler").ParseFS(templateFS, "templates/*.tmpl")),
		calendar:  calendar.New(),
		markdown:  markdown.NewRenderer(markdown.Options{SafeMode: true, HardWraps: true}),
		routes:    NewRoutes(RouteConfig{}),
		sections:  DefaultSections(),
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

type pageView struct {
	Lang        string
	Title       string
	Description string
	URL         string
	Scheme      string
	Classes     domain.ThemeClasses
	Layout      domain.LayoutTokens
	Sections    []template.HTML
}

// Assemble renders the document for in.
func (a *Assembler) Assemble(in Input) (Document, error) {
	if in.SiteID == uuid.Nil {
		return Document{}, ErrMissingSiteID
	}
	in = prepareInput(in)
	r := a.newRenderer(in)

	doc := Document{}
	parts := make([]template.HTML, 0, len(a.sections))
	for _, section := range a.sections {
		if section == nil || !section.Include(in) {
			continue
		}
		html, err := section.Render(r, in)
		if err != nil {
			return Document{}, fmt.Errorf("%w: %s: %v", ErrRender, section.Name(), err)
		}
		parts = append(parts, html)
		doc.Sections = append(doc.Sections, section.Name())
	}

	if in.Slug != "" && a.routes != nil {
		if url, err := a.routes.SiteURL(in.Slug); err == nil {
			doc.URL = url
		}
	}

	page, err := r.execute("document", pageView{
		Lang:        r.labels.Lang,
		Title:       in.Content.Title,
		Description: in.Content.Description,
		URL:         doc.URL,
		Scheme:      in.Theme.Scheme,
		Classes:     in.Theme.Classes,
		Layout:      in.Theme.Layout,
		Sections:    parts,
	})
	if err != nil {
		return Document{}, fmt.Errorf("%w: document: %v", ErrRender, err)
	}
	doc.HTML = string(page)
	doc.RSVP = r.rsvp

	a.logger.Debug("assembler.document.rendered",
		"site_id", in.SiteID.String(),
		"sections", strings.Join(doc.Sections, ","),
		"bytes", len(doc.HTML),
	)
	return doc, nil
}

func prepareInput(in Input) Input {
	if in.Theme.Palette.IsZero() {
		in.Theme = theming.DefaultProfile()
	}
	if strings.TrimSpace(in.Content.Title) == "" {
		in.Content.Title = strings.TrimSpace(in.Request.Details.Title)
	}
	if strings.TrimSpace(in.Content.Description) == "" {
		in.Content.Description = strings.TrimSpace(in.Request.Details.Description)
	}
	return in
}

type renderer struct {
	templates *template.Template
	calendar  *calendar.Generator
	markdown  *markdown.Renderer
	routes    interfaces.RouteResolver
	labels    Labels
	rsvp      *domain.RSVPWidgetConfig
}

func (a *Assembler) newRenderer(in Input) *renderer {
	return &renderer{
		templates: a.templates,
		calendar:  a.calendar,
		markdown:  a.markdown,
		routes:    a.routes,
		labels:    LabelsFor(in.Request.Locale),
	}
}

func (r *renderer) execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// renderMarkdown converts trusted-by-construction markdown. Raw HTML in the
// source is dropped by the safe-mode renderer.
func (r *renderer) renderMarkdown(source string) (template.HTML, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", nil
	}
	out, err := r.markdown.Render(source)
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}

func eventDate(in Input) (time.Time, bool) {
	return in.Request.Details.EventDate()
}
