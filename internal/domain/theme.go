package domain

// Palette holds the three resolved color roles. Values are Tailwind color
// family names such as "rose" or "amber".
type Palette struct {
	Primary   string `json:"primary" yaml:"primary"`
	Secondary string `json:"secondary" yaml:"secondary"`
	Accent    string `json:"accent" yaml:"accent"`
}

// IsZero reports whether no role is set.
func (p Palette) IsZero() bool {
	return p.Primary == "" && p.Secondary == "" && p.Accent == ""
}

// LayoutTokens is the class set controlling structure and typography.
type LayoutTokens struct {
	Name        string `json:"name" yaml:"name"`
	Container   string `json:"container" yaml:"container"`
	Card        string `json:"card" yaml:"card"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Button      string `json:"button" yaml:"button"`
	Spacing     string `json:"spacing" yaml:"spacing"`
	Font        string `json:"font" yaml:"font"`
}

// SchemeTokens are the decorative tokens tied to a named scheme.
type SchemeTokens struct {
	Gradient     string `json:"gradient" yaml:"gradient"`
	HeroGradient string `json:"hero_gradient" yaml:"hero_gradient"`
	TextGradient string `json:"text_gradient" yaml:"text_gradient"`
	GlassTint    string `json:"glass_tint" yaml:"glass_tint"`
	Ornament     string `json:"ornament" yaml:"ornament"`
}

// ThemeClasses are the composed classes consumed by section renderers.
type ThemeClasses struct {
	Page           string `json:"page"`
	Hero           string `json:"hero"`
	HeroTitle      string `json:"hero_title"`
	TextGradient   string `json:"text_gradient"`
	Glass          string `json:"glass"`
	PrimaryButton  string `json:"primary_button"`
	OutlineButton  string `json:"outline_button"`
	AccentText     string `json:"accent_text"`
	MutedText      string `json:"muted_text"`
	Border         string `json:"border"`
	Badge          string `json:"badge"`
	Icon           string `json:"icon"`
	CalendarActive string `json:"calendar_active"`
	CalendarHeader string `json:"calendar_header"`
	Input          string `json:"input"`
	Error          string `json:"error"`
	Success        string `json:"success"`
}

// ThemeProfile is the deterministic visual bundle chosen for a request.
type ThemeProfile struct {
	Scheme      string       `json:"scheme"`
	Palette     Palette      `json:"palette"`
	Layout      LayoutTokens `json:"layout"`
	Decor       SchemeTokens `json:"decor"`
	Classes     ThemeClasses `json:"classes"`
	PaletteRule string       `json:"palette_rule,omitempty"`
	SchemeRule  string       `json:"scheme_rule,omitempty"`
	LayoutRule  string       `json:"layout_rule,omitempty"`
}
