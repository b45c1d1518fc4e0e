package domain

// ContentSource records which parser branch produced the content.
type ContentSource string

const (
	ContentStructured ContentSource = "structured"
	ContentHeuristic  ContentSource = "heuristic"
	ContentFallback   ContentSource = "fallback"
)

// Section keys understood by the assembler.
const (
	SectionHero     = "hero"
	SectionAbout    = "about"
	SectionFeatures = "features"
	SectionContact  = "contact"
	SectionFooter   = "footer"
)

// ContentSection is a titled block of copy.
type ContentSection struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Body     string `json:"body,omitempty"`
	CTA      string `json:"cta,omitempty"`
}

// IsZero reports whether the section carries no text.
func (s ContentSection) IsZero() bool {
	return s.Title == "" && s.Subtitle == "" && s.Body == "" && s.CTA == ""
}

// ParsedContent is the structured copy derived from generator output.
// Title and Description are never empty once produced by the parser.
type ParsedContent struct {
	Title        string                    `json:"title"`
	Description  string                    `json:"description"`
	Sections     map[string]ContentSection `json:"sections,omitempty"`
	PaletteHints Palette                   `json:"palette_hints,omitempty"`
	Source       ContentSource             `json:"source"`
}

// Section returns the named section or a zero value.
func (c ParsedContent) Section(name string) ContentSection {
	if c.Sections == nil {
		return ContentSection{}
	}
	return c.Sections[name]
}

// GeocodeResult is a resolved venue location.
type GeocodeResult struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name,omitempty"`
}
