package assembler

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/goliatone/go-invites/internal/calendar"
	"github.com/goliatone/go-invites/internal/domain"
)

// Section names reported on Document.Sections.
const (
	NameHero      = "hero"
	NameAbout     = "about"
	NameCalendar  = "calendar"
	NameLocation  = "location"
	NameInfoCards = "info_cards"
	NameTimeline  = "timeline"
	NameRSVP      = "rsvp"
	NameContact   = "contact"
	NameFooter    = "footer"
)

// Section is one independently rendered block of the page.
type Section interface {
	Name() string
	Include(in Input) bool
	Render(r *renderer, in Input) (template.HTML, error)
}

type themeView struct {
	Classes  domain.ThemeClasses
	Layout   domain.LayoutTokens
	Ornament string
	Labels   Labels
}

func newThemeView(r *renderer, in Input) themeView {
	return themeView{
		Classes:  in.Theme.Classes,
		Layout:   in.Theme.Layout,
		Ornament: in.Theme.Decor.Ornament,
		Labels:   r.labels,
	}
}

type heroSection struct{}

type heroView struct {
	themeView
	Title       string
	Subtitle    string
	Description string
	Date        string
	Time        string
	Place       string
	CTA         string
	ShowRSVP    bool
}

func (heroSection) Name() string { return NameHero }
func (heroSection) Include(Input) bool { return true }

func (heroSection) Render(r *renderer, in Input) (template.HTML, error) {
	details := in.Request.Details
	hero := in.Content.Section(domain.SectionHero)
	view := heroView{
		themeView:   newThemeView(r, in),
		Title:       in.Content.Title,
		Subtitle:    strings.TrimSpace(hero.Subtitle),
		Description: firstNonEmpty(hero.Body, in.Content.Description),
		Time:        strings.TrimSpace(details.Time),
		Place:       firstNonEmpty(details.Venue, details.City),
		CTA:         firstNonEmpty(hero.CTA, r.labels.RSVPHeading),
		ShowRSVP:    !details.RSVP.Disabled,
	}
	if date, ok := eventDate(in); ok {
		view.Date = calendar.FormatDate(date, calendar.ResolveLocale(in.Request.Locale))
	}
	return r.execute("hero", view)
}

type aboutSection struct{}

type aboutView struct {
	themeView
	Title    string
	Body     template.HTML
	Features template.HTML
}

func (aboutSection) Name() string { return NameAbout }

func (aboutSection) Include(in Input) bool {
	return strings.TrimSpace(in.Content.Section(domain.SectionAbout).Body) != "" ||
		strings.TrimSpace(in.Content.Section(domain.SectionFeatures).Body) != ""
}

func (aboutSection) Render(r *renderer, in Input) (template.HTML, error) {
	about := in.Content.Section(domain.SectionAbout)
	features := in.Content.Section(domain.SectionFeatures)
	body, err := r.renderMarkdown(about.Body)
	if err != nil {
		return "", err
	}
	extra, err := r.renderMarkdown(features.Body)
	if err != nil {
		return "", err
	}
	return r.execute("about", aboutView{
		themeView: newThemeView(r, in),
		Title:     firstNonEmpty(about.Title, features.Title),
		Body:      body,
		Features:  extra,
	})
}

type calendarSection struct{}

type calendarView struct {
	themeView
	Widget template.HTML
}

func (calendarSection) Name() string { return NameCalendar }

func (calendarSection) Include(in Input) bool {
	_, ok := eventDate(in)
	return ok
}

func (calendarSection) Render(r *renderer, in Input) (template.HTML, error) {
	date, ok := eventDate(in)
	if !ok {
		return "", nil
	}
	widget, err := r.calendar.Render(date, in.Request.Locale, in.Theme.Classes)
	if err != nil {
		return "", err
	}
	return r.execute("calendar", calendarView{themeView: newThemeView(r, in), Widget: widget})
}

type locationSection struct{}

type locationView struct {
	themeView
	Venue    string
	Address  string
	HasMap   bool
	MapURL   string
	OpenURL  string
	Resolved string
}

func (locationSection) Name() string { return NameLocation }
func (locationSection) Include(Input) bool { return true }

func (locationSection) Render(r *renderer, in Input) (template.HTML, error) {
	details := in.Request.Details
	view := locationView{
		themeView: newThemeView(r, in),
		Venue:     strings.TrimSpace(details.Venue),
		Address:   details.Location(),
	}
	if geo := in.Geocode; geo != nil {
		mapURL, err := mapWidgetURL(*geo, firstNonEmpty(details.Venue, in.Content.Title))
		if err != nil {
			return "", err
		}
		view.HasMap = true
		view.MapURL = mapURL
		view.OpenURL = fmt.Sprintf("https://2gis.ru/?m=%.6f%%2C%.6f%%2F16", geo.Longitude, geo.Latitude)
		view.Resolved = strings.TrimSpace(geo.DisplayName)
	}
	return r.execute("location", view)
}

type mapPoint struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Zoom int     `json:"zoom,omitempty"`
}

type mapOptions struct {
	Pos mapPoint `json:"pos"`
	Opt struct {
		Zoom   int      `json:"zoom"`
		Center mapPoint `json:"center"`
	} `json:"opt"`
	Org struct {
		Name string  `json:"name"`
		Lat  float64 `json:"lat"`
		Lon  float64 `json:"lon"`
	} `json:"org"`
}

func mapWidgetURL(geo domain.GeocodeResult, name string) (string, error) {
	opts := mapOptions{Pos: mapPoint{Lat: geo.Latitude, Lon: geo.Longitude, Zoom: 16}}
	opts.Opt.Zoom = 16
	opts.Opt.Center = mapPoint{Lat: geo.Latitude, Lon: geo.Longitude}
	opts.Org.Name = name
	opts.Org.Lat = geo.Latitude
	opts.Org.Lon = geo.Longitude
	raw, err := json.Marshal(opts)
	if err != nil {
		return "", err
	}
	query := url.Values{}
	query.Set("type", "firmsonmap")
	query.Set("options", string(raw))
	return "https://widgets.2gis.com/widget?" + query.Encode(), nil
}

type infoCardsSection struct{}

type infoCard struct {
	Key   string
	Title string
	Badge string
	Body  template.HTML
}

type infoCardsView struct {
	themeView
	Cards []infoCard
}

func (infoCardsSection) Name() string { return NameInfoCards }

func (infoCardsSection) Include(in Input) bool {
	details := in.Request.Details
	return !details.DressCode.IsZero() ||
		strings.TrimSpace(details.GiftInfo) != "" ||
		strings.TrimSpace(details.Menu) != "" ||
		strings.TrimSpace(details.SpecialNotes) != "" ||
		strings.TrimSpace(details.Wishes) != ""
}

func (infoCardsSection) Render(r *renderer, in Input) (template.HTML, error) {
	details := in.Request.Details
	labels := r.labels
	cards := make([]infoCard, 0, 5)
	add := func(key, title, badge, body string) error {
		if strings.TrimSpace(body) == "" && badge == "" {
			return nil
		}
		html, err := r.renderMarkdown(body)
		if err != nil {
			return err
		}
		cards = append(cards, infoCard{Key: key, Title: title, Badge: badge, Body: html})
		return nil
	}

	var badge string
	if strings.TrimSpace(details.DressCode.Type) != "" {
		badge = labels.dressCode(details.DressCode.Type)
	}
	entries := []struct {
		key, title, badge, body string
	}{
		{"dress_code", labels.DressCode, badge, details.DressCode.Description},
		{"gift_info", labels.Gifts, "", details.GiftInfo},
		{"menu", labels.Menu, "", details.Menu},
		{"special_notes", labels.Notes, "", details.SpecialNotes},
		{"wishes", labels.Wishes, "", details.Wishes},
	}
	for _, entry := range entries {
		if err := add(entry.key, entry.title, entry.badge, entry.body); err != nil {
			return "", err
		}
	}
	return r.execute("info_cards", infoCardsView{themeView: newThemeView(r, in), Cards: cards})
}

type timelineSection struct{}

type timelineView struct {
	themeView
	Entries []domain.TimelineEntry
}

func (timelineSection) Name() string { return NameTimeline }

func (timelineSection) Include(in Input) bool {
	return len(timelineEntries(in.Request.Details.Timeline)) > 0
}

func (timelineSection) Render(r *renderer, in Input) (template.HTML, error) {
	return r.execute("timeline", timelineView{
		themeView: newThemeView(r, in),
		Entries:   timelineEntries(in.Request.Details.Timeline),
	})
}

func timelineEntries(entries []domain.TimelineEntry) []domain.TimelineEntry {
	out := make([]domain.TimelineEntry, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Title) == "" {
			continue
		}
		out = append(out, entry)
	}
	return out
}

type rsvpSection struct{}

type rsvpOptionView struct {
	Value string
	Label string
}

type rsvpView struct {
	themeView
	Config  domain.RSVPWidgetConfig
	Options []rsvpOptionView
}

func (rsvpSection) Name() string { return NameRSVP }

func (rsvpSection) Include(in Input) bool {
	return !in.Request.Details.RSVP.Disabled
}

func (rsvpSection) Render(r *renderer, in Input) (template.HTML, error) {
	endpoint, err := r.routes.RSVPEndpoint(in.SiteID.String())
	if err != nil {
		return "", err
	}
	values := rsvpValues(in.Request.Details.RSVP.Options)
	config := domain.RSVPWidgetConfig{
		SiteID:   in.SiteID,
		Endpoint: endpoint,
		Options:  make([]domain.RSVPOption, 0, len(values)),
	}
	options := make([]rsvpOptionView, 0, len(values))
	for _, value := range values {
		label := r.labels.rsvpOption(value)
		config.Options = append(config.Options, domain.RSVPOption{Value: value, Label: label})
		options = append(options, rsvpOptionView{Value: value, Label: label})
	}
	r.rsvp = &config
	return r.execute("rsvp", rsvpView{themeView: newThemeView(r, in), Config: config, Options: options})
}

func rsvpValues(requested []string) []string {
	values := make([]string, 0, len(requested))
	seen := map[string]struct{}{}
	for _, value := range requested {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		values = append(values, value)
	}
	if len(values) == 0 {
		return append([]string(nil), DefaultRSVPOptions...)
	}
	return values
}

type contactSection struct{}

type contactView struct {
	themeView
	Name  string
	Phone string
	Tel   string
	Email string
	Body  template.HTML
}

func (contactSection) Name() string { return NameContact }

func (contactSection) Include(in Input) bool {
	return !in.Request.Details.Contact.IsZero() ||
		strings.TrimSpace(in.Content.Section(domain.SectionContact).Body) != ""
}

func (contactSection) Render(r *renderer, in Input) (template.HTML, error) {
	contact := in.Request.Details.Contact
	body, err := r.renderMarkdown(in.Content.Section(domain.SectionContact).Body)
	if err != nil {
		return "", err
	}
	return r.execute("contact", contactView{
		themeView: newThemeView(r, in),
		Name:      strings.TrimSpace(contact.Name),
		Phone:     strings.TrimSpace(contact.Phone),
		Tel:       telDigits(contact.Phone),
		Email:     strings.TrimSpace(contact.Email),
		Body:      body,
	})
}

func telDigits(phone string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		if (r >= '0' && r <= '9') || (r == '+' && b.Len() == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type footerSection struct{}

type footerView struct {
	themeView
	Title string
	Note  string
}

func (footerSection) Name() string { return NameFooter }
func (footerSection) Include(Input) bool { return true }

func (footerSection) Render(r *renderer, in Input) (template.HTML, error) {
	footer := in.Content.Section(domain.SectionFooter)
	return r.execute("footer", footerView{
		themeView: newThemeView(r, in),
		Title:     firstNonEmpty(footer.Title, in.Content.Title),
		Note:      firstNonEmpty(footer.Body, r.labels.FooterNote),
	})
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
