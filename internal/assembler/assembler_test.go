package assembler

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/internal/theming"
)

var testSiteID = uuid.MustParse("4b6f0a4e-8a0c-4c52-9c4e-0e1d1f0e2a11")

func newTestAssembler() *Assembler {
	return New(WithRoutes(NewRoutes(RouteConfig{BaseURL: "https://invites.example"})))
}

func baseInput() Input {
	request := domain.GenerationRequest{
		EventCategory: domain.EventBirthday,
		ThemeLabel:    "vintage",
		Locale:        "en-US",
		Details: domain.EventDetails{
			Title:   "Anna's Party",
			Date:    "2025-06-14",
			Time:    "18:30",
			City:    "Moscow",
			Venue:   "Loft Hall",
			Address: "Tverskaya 1",
		},
	}
	return Input{
		Request: request,
		Content: domain.ParsedContent{
			Title:       "Anna's Party",
			Description: "Join us for an evening of music and cake.",
			Source:      domain.ContentStructured,
		},
		Theme:  theming.MustNew().Resolve(theming.InputFromRequest(request)),
		Slug:   "annas-party",
		SiteID: testSiteID,
	}
}

func TestAssembleIncludesCoreSections(t *testing.T) {
	doc, err := newTestAssembler().Assemble(baseInput())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	for _, name := range []string{NameHero, NameCalendar, NameLocation, NameRSVP, NameFooter} {
		if !doc.Has(name) {
			t.Fatalf("expected section %q in %v", name, doc.Sections)
		}
	}
	if doc.Sections[0] != NameHero || doc.Sections[len(doc.Sections)-1] != NameFooter {
		t.Fatalf("expected hero first and footer last, got %v", doc.Sections)
	}
	if !strings.Contains(doc.HTML, `data-calendar="2025-06"`) {
		t.Fatalf("expected calendar widget for June 2025")
	}
	if !strings.Contains(doc.HTML, "14 June 2025") {
		t.Fatalf("expected localized date chip in hero")
	}
}

func TestAssembleOmitsCalendarWithoutDate(t *testing.T) {
	for _, date := range []string{"", "14/06/2025", "2025-02-30"} {
		in := baseInput()
		in.Request.Details.Date = date
		doc, err := newTestAssembler().Assemble(in)
		if err != nil {
			t.Fatalf("assemble: %v", err)
		}
		if doc.Has(NameCalendar) || strings.Contains(doc.HTML, "data-calendar=") {
			t.Fatalf("expected no calendar for date %q", date)
		}
	}
}

func TestAssembleLocationPlaceholderWithoutGeocode(t *testing.T) {
	doc, err := newTestAssembler().Assemble(baseInput())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !doc.Has(NameLocation) {
		t.Fatalf("expected location section")
	}
	if !strings.Contains(doc.HTML, `data-map="placeholder"`) || strings.Contains(doc.HTML, "<iframe") {
		t.Fatalf("expected placeholder card without map")
	}
	if !strings.Contains(doc.HTML, "Moscow, Tverskaya 1") {
		t.Fatalf("expected address on placeholder")
	}
}

func TestAssembleLocationMapWithGeocode(t *testing.T) {
	in := baseInput()
	in.Geocode = &domain.GeocodeResult{Latitude: 55.757, Longitude: 37.615, DisplayName: "Moscow, Tverskaya street, 1"}
	doc, err := newTestAssembler().Assemble(in)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !strings.Contains(doc.HTML, `data-map="2gis"`) || !strings.Contains(doc.HTML, "https://widgets.2gis.com/widget?") {
		t.Fatalf("expected 2gis map widget")
	}
	if !strings.Contains(doc.HTML, "Moscow, Tverskaya street, 1") {
		t.Fatalf("expected resolved display name")
	}
}

func TestAssembleInfoCardsOnlyWhenPresent(t *testing.T) {
	doc, err := newTestAssembler().Assemble(baseInput())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if doc.Has(NameInfoCards) {
		t.Fatalf("expected no info cards for empty extras")
	}

	in := baseInput()
	in.Request.Details.DressCode = domain.DressCode{Type: "smart_casual"}
	in.Request.Details.Menu = "**Cake** and tea"
	doc, err = newTestAssembler().Assemble(in)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !doc.Has(NameInfoCards) {
		t.Fatalf("expected info cards section")
	}
	for _, want := range []string{`data-card="dress_code"`, `data-card="menu"`, "Smart casual", "<strong>Cake</strong>"} {
		if !strings.Contains(doc.HTML, want) {
			t.Fatalf("expected %q in document", want)
		}
	}
	for _, absent := range []string{`data-card="gift_info"`, `data-card="special_notes"`, `data-card="wishes"`} {
		if strings.Contains(doc.HTML, absent) {
			t.Fatalf("did not expect %q", absent)
		}
	}
}

func TestAssembleDropsRawHTMLFromCards(t *testing.T) {
	in := baseInput()
	in.Request.Details.Wishes = "Bring smiles <script>alert(1)</script>"
	doc, err := newTestAssembler().Assemble(in)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if strings.Contains(doc.HTML, "<script>alert(1)") {
		t.Fatalf("expected raw html to be dropped from wishes card")
	}
}

func TestAssembleBindsRSVPWidget(t *testing.T) {
	doc, err := newTestAssembler().Assemble(baseInput())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if doc.RSVP == nil || doc.RSVP.SiteID != testSiteID {
		t.Fatalf("expected rsvp config bound to site, got %+v", doc.RSVP)
	}
	want := "https://invites.example/sites/" + testSiteID.String() + "/rsvp"
	if doc.RSVP.Endpoint != want {
		t.Fatalf("expected endpoint %q, got %q", want, doc.RSVP.Endpoint)
	}
	if len(doc.RSVP.Options) != len(DefaultRSVPOptions) {
		t.Fatalf("expected default options, got %+v", doc.RSVP.Options)
	}
	for _, want := range []string{"data-rsvp-config", `data-rsvp-option="attending"`, "data-rsvp-error", testSiteID.String()} {
		if !strings.Contains(doc.HTML, want) {
			t.Fatalf("expected %q in rsvp markup", want)
		}
	}
}

func TestAssembleRSVPCustomOptionsAndOptOut(t *testing.T) {
	in := baseInput()
	in.Request.Details.RSVP.Options = []string{"yes", "no", "yes", " "}
	doc, err := newTestAssembler().Assemble(in)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(doc.RSVP.Options) != 2 || doc.RSVP.Options[0].Value != "yes" {
		t.Fatalf("expected deduplicated custom options, got %+v", doc.RSVP.Options)
	}

	in.Request.Details.RSVP.Disabled = true
	doc, err = newTestAssembler().Assemble(in)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if doc.Has(NameRSVP) || doc.RSVP != nil {
		t.Fatalf("expected rsvp section to be omitted when disabled")
	}
}

func TestAssembleRequiresSiteID(t *testing.T) {
	in := baseInput()
	in.SiteID = uuid.Nil
	if _, err := newTestAssembler().Assemble(in); !errors.Is(err, ErrMissingSiteID) {
		t.Fatalf("expected ErrMissingSiteID, got %v", err)
	}
}

func TestAssembleUsesOnlyThemeClasses(t *testing.T) {
	in := baseInput()
	in.Request.Details.Contact = domain.ContactInfo{Name: "Anna", Phone: "+7 (900) 000-00-00", Email: "anna@example.com"}
	in.Request.Details.GiftInfo = "Flowers"
	in.Request.Details.Timeline = []domain.TimelineEntry{{Time: "18:30", Title: "Welcome"}}
	in.Geocode = &domain.GeocodeResult{Latitude: 55.7, Longitude: 37.6}
	in.Theme = domain.ThemeProfile{
		Scheme:  "marker",
		Palette: domain.Palette{Primary: "p", Secondary: "s", Accent: "a"},
		Layout: domain.LayoutTokens{
			Name: "marker", Container: "lay-container", Card: "lay-card", Title: "lay-title",
			Description: "lay-description", Button: "lay-button", Spacing: "lay-spacing", Font: "lay-font",
		},
		Classes: domain.ThemeClasses{
			Page: "tok-page", Hero: "tok-hero", HeroTitle: "tok-hero-title", TextGradient: "tok-text-gradient",
			Glass: "tok-glass", PrimaryButton: "tok-primary-button", OutlineButton: "tok-outline-button",
			AccentText: "tok-accent", MutedText: "tok-muted", Border: "tok-border", Badge: "tok-badge",
			Icon: "tok-icon", CalendarActive: "tok-calendar-active", CalendarHeader: "tok-calendar-header",
			Input: "tok-input", Error: "tok-error", Success: "tok-success",
		},
	}

	doc, err := newTestAssembler().Assemble(in)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	literal := regexp.MustCompile(`\b(bg|text|border|from|via|to|ring)-(slate|gray|zinc|neutral|stone|red|orange|amber|yellow|lime|green|emerald|teal|cyan|sky|blue|indigo|violet|purple|fuchsia|pink|rose|white|black)\b`)
	if match := literal.FindString(doc.HTML); match != "" {
		t.Fatalf("found hard-coded palette class %q", match)
	}
	for _, token := range []string{"tok-page", "tok-hero", "tok-calendar-active", "tok-error", "lay-card", "lay-container"} {
		if !strings.Contains(doc.HTML, token) {
			t.Fatalf("expected theme token %q in document", token)
		}
	}
	if hrefs := linkTargets(doc.HTML, "tel:"); len(hrefs) != 1 || hrefs[0] != "tel:+79000000000" {
		t.Fatalf("expected normalized phone link, got %v", hrefs)
	}
}

var hrefAttr = regexp.MustCompile(`href="([^"]*)"`)

// linkTargets returns the unescaped href values starting with scheme.
func linkTargets(doc, scheme string) []string {
	var out []string
	for _, match := range hrefAttr.FindAllStringSubmatch(doc, -1) {
		if target := html.UnescapeString(match[1]); strings.HasPrefix(target, scheme) {
			out = append(out, target)
		}
	}
	return out
}

func TestAssembleFallsBackToDefaultTheme(t *testing.T) {
	in := baseInput()
	in.Theme = domain.ThemeProfile{}
	doc, err := newTestAssembler().Assemble(in)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !strings.Contains(doc.HTML, theming.DefaultProfile().Classes.PrimaryButton) {
		t.Fatalf("expected default profile classes")
	}
}

func TestAssembleLocalizesLabels(t *testing.T) {
	in := baseInput()
	in.Request.Locale = "ru-RU"
	doc, err := newTestAssembler().Assemble(in)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	for _, want := range []string{`lang="ru"`, "Подтвердите участие", "Приду"} {
		if !strings.Contains(doc.HTML, want) {
			t.Fatalf("expected %q in russian document", want)
		}
	}
}

func TestRoutesBuildPublicURLs(t *testing.T) {
	routes := NewRoutes(RouteConfig{BaseURL: "https://invites.example/"})
	url, err := routes.SiteURL("annas-party")
	if err != nil {
		t.Fatalf("site url: %v", err)
	}
	if url != "https://invites.example/s/annas-party" {
		t.Fatalf("unexpected site url %q", url)
	}
	if _, err := routes.SiteURL(" "); !errors.Is(err, ErrRouteParam) {
		t.Fatalf("expected ErrRouteParam, got %v", err)
	}
	endpoint, err := routes.RSVPEndpoint("abc")
	if err != nil {
		t.Fatalf("rsvp endpoint: %v", err)
	}
	if endpoint != "https://invites.example/sites/abc/rsvp" {
		t.Fatalf("unexpected rsvp endpoint %q", endpoint)
	}
}

func TestAssembleCanonicalURLFromSlug(t *testing.T) {
	doc, err := newTestAssembler().Assemble(baseInput())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if doc.URL != "https://invites.example/s/annas-party" {
		t.Fatalf("unexpected url %q", doc.URL)
	}
	if !strings.Contains(doc.HTML, `<link rel="canonical" href="https://invites.example/s/annas-party">`) {
		t.Fatalf("expected canonical link in head")
	}

	in := baseInput()
	in.Slug = ""
	doc, err = newTestAssembler().Assemble(in)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if doc.URL != "" || strings.Contains(doc.HTML, `rel="canonical"`) {
		t.Fatalf("expected no canonical link without slug")
	}
}
