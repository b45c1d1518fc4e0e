package parser

import (
	_ "embed"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/internal/markdown"
	"github.com/goliatone/go-invites/internal/validation"
	"golang.org/x/text/language"
)

//go:embed generator_schema.json
var replySchemaDocument []byte

var replySchema = validation.MustCompile(replySchemaDocument)

// Outcome reports which branch produced the content.
type Outcome string

const (
	// OutcomeStructured means the reply carried a usable JSON object.
	OutcomeStructured Outcome = "structured"
	// OutcomeDegraded means the reply was present but had to be mined heuristically.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeFallback means no reply was available and only request fields were used.
	OutcomeFallback Outcome = "fallback"
)

type replySection struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Content  string `json:"content"`
	CTA      string `json:"cta_text"`
}

func (s *replySection) toContent() domain.ContentSection {
	if s == nil {
		return domain.ContentSection{}
	}
	return domain.ContentSection{
		Title:    strings.TrimSpace(s.Title),
		Subtitle: strings.TrimSpace(s.Subtitle),
		Body:     strings.TrimSpace(s.Content),
		CTA:      strings.TrimSpace(s.CTA),
	}
}

type generatorReply struct {
	Title           string                  `json:"title"`
	MetaDescription string                  `json:"meta_description"`
	Description     string                  `json:"description"`
	Hero            *replySection           `json:"hero_section"`
	About           *replySection           `json:"about_section"`
	Features        *replySection           `json:"features_section"`
	Contact         *replySection           `json:"contact_section"`
	Footer          *replySection           `json:"footer_section"`
	Sections        map[string]replySection `json:"sections"`
	Palette         map[string]string       `json:"color_palette"`
}

// Parser turns generator output into ParsedContent. It is stateless.
type Parser struct{}

// New returns a parser.
func New() *Parser {
	return &Parser{}
}

// Parse maps raw generator output to content. genErr signals that the
// generator was unavailable, in which case raw is ignored. The returned
// content always carries a non-empty title and description.
func (p *Parser) Parse(raw string, genErr error, req domain.GenerationRequest) (domain.ParsedContent, Outcome) {
	raw = strings.TrimSpace(raw)
	if genErr != nil || raw == "" {
		return fallbackContent(req), OutcomeFallback
	}

	if content, ok := parseStructured(raw); ok {
		return complete(content, req), OutcomeStructured
	}

	content := parseHeuristic(raw)
	return complete(content, req), OutcomeDegraded
}

func parseStructured(raw string) (domain.ParsedContent, bool) {
	region, ok := firstObject(raw)
	if !ok {
		return domain.ParsedContent{}, false
	}
	if _, err := replySchema.ValidateJSON([]byte(region)); err != nil {
		return domain.ParsedContent{}, false
	}
	var reply generatorReply
	if err := json.Unmarshal([]byte(region), &reply); err != nil {
		return domain.ParsedContent{}, false
	}

	content := domain.ParsedContent{
		Title:        strings.TrimSpace(reply.Title),
		Description:  firstNonEmpty(reply.MetaDescription, reply.Description),
		Sections:     map[string]domain.ContentSection{},
		PaletteHints: paletteHints(reply.Palette),
		Source:       domain.ContentStructured,
	}
	for name, section := range reply.Sections {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.TrimSuffix(key, "_section")
		if key == "" {
			continue
		}
		if mapped := section.toContent(); !mapped.IsZero() {
			content.Sections[key] = mapped
		}
	}
	named := map[string]*replySection{
		domain.SectionHero:     reply.Hero,
		domain.SectionAbout:    reply.About,
		domain.SectionFeatures: reply.Features,
		domain.SectionContact:  reply.Contact,
		domain.SectionFooter:   reply.Footer,
	}
	for key, section := range named {
		if mapped := section.toContent(); !mapped.IsZero() {
			content.Sections[key] = mapped
		}
	}

	if content.Title == "" && content.Description == "" && len(content.Sections) == 0 {
		return domain.ParsedContent{}, false
	}
	return content, true
}

func parseHeuristic(raw string) domain.ParsedContent {
	content := domain.ParsedContent{Source: domain.ContentFallback}

	body := raw
	if fm, rest, err := markdown.ParseFrontMatter([]byte(raw)); err == nil {
		body = string(rest)
		if within(fm.Title, minTitleLen, maxTitleLen) {
			content.Title = fm.Title
		}
		if within(fm.Description, minDescriptionLen, maxDescriptionLen) {
			content.Description = fm.Description
		}
	}

	if content.Title == "" {
		content.Title = extractTitle(body)
	}
	if content.Description == "" {
		content.Description = extractDescription(body)
	}
	if content.Title != "" || content.Description != "" {
		content.Source = domain.ContentHeuristic
	}
	return content
}

func fallbackContent(req domain.GenerationRequest) domain.ParsedContent {
	return complete(domain.ParsedContent{Source: domain.ContentFallback}, req)
}

// complete fills missing fields from the request so the title and
// description are never empty.
func complete(content domain.ParsedContent, req domain.GenerationRequest) domain.ParsedContent {
	details := req.Details
	if content.Title == "" {
		content.Title = strings.TrimSpace(details.Title)
	}
	if content.Title == "" {
		content.Title = defaultTitle(req)
	}
	if content.Description == "" {
		content.Description = strings.TrimSpace(details.Description)
	}
	if content.Description == "" {
		content.Description = defaultDescription(req.Locale)
	}
	if content.Sections == nil {
		content.Sections = map[string]domain.ContentSection{}
	}
	if _, ok := content.Sections[domain.SectionHero]; !ok {
		content.Sections[domain.SectionHero] = domain.ContentSection{
			Title:    content.Title,
			Subtitle: content.Description,
		}
	}
	return content
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

var paletteToken = regexp.MustCompile(`^([a-z]+)(?:-\d{2,3})?$`)

var knownFamilies = map[string]struct{}{
	"slate": {}, "gray": {}, "zinc": {}, "neutral": {}, "stone": {}, "red": {}, "orange": {},
	"amber": {}, "yellow": {}, "lime": {}, "green": {}, "emerald": {}, "teal": {}, "cyan": {},
	"sky": {}, "blue": {}, "indigo": {}, "violet": {}, "purple": {}, "fuchsia": {}, "pink": {}, "rose": {},
}

func paletteFamily(value string) string {
	match := paletteToken.FindStringSubmatch(strings.ToLower(strings.TrimSpace(value)))
	if len(match) < 2 {
		return ""
	}
	if _, ok := knownFamilies[match[1]]; !ok {
		return ""
	}
	return match[1]
}

func paletteHints(values map[string]string) domain.Palette {
	if len(values) == 0 {
		return domain.Palette{}
	}
	return domain.Palette{
		Primary:   paletteFamily(values["primary"]),
		Secondary: paletteFamily(values["secondary"]),
		Accent:    paletteFamily(values["accent"]),
	}
}

var defaultDescriptions = map[string]string{
	"en": "We would be delighted to celebrate this special day with you!",
	"ru": "Приглашаем вас на незабываемое мероприятие!",
	"uk": "Запрошуємо вас на незабутню подію!",
	"de": "Wir freuen uns darauf, diesen besonderen Tag mit Ihnen zu feiern!",
	"es": "¡Nos encantaría celebrar este día especial contigo!",
	"fr": "Nous serions ravis de célébrer ce jour spécial avec vous !",
}

var defaultTitles = map[string]string{
	"en": "You're Invited",
	"ru": "Приглашение",
	"uk": "Запрошення",
	"de": "Einladung",
	"es": "Invitación",
	"fr": "Invitation",
}

func baseLanguage(locale string) string {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
	if err != nil {
		return "en"
	}
	base, _ := tag.Base()
	return base.String()
}

func localized(table map[string]string, locale string) string {
	if value, ok := table[baseLanguage(locale)]; ok {
		return value
	}
	return table["en"]
}

func defaultDescription(locale string) string {
	return localized(defaultDescriptions, locale)
}

func defaultTitle(req domain.GenerationRequest) string {
	return localized(defaultTitles, req.Locale)
}
