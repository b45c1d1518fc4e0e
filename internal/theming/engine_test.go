package theming

import (
	"strings"
	"testing"

	"github.com/goliatone/go-invites/internal/domain"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := New()
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestResolveVintageBirthday(t *testing.T) {
	engine := newTestEngine(t)
	profile := engine.Resolve(Input{EventCategory: domain.EventBirthday, ThemeLabel: "vintage retro"})

	if profile.Scheme != "vintage" {
		t.Fatalf("expected vintage scheme, got %q", profile.Scheme)
	}
	if profile.Palette.Primary != "amber" {
		t.Fatalf("expected amber primary, got %q", profile.Palette.Primary)
	}
	if profile.Layout.Name != "classic" {
		t.Fatalf("expected classic layout for vintage label, got %q", profile.Layout.Name)
	}
}

func TestResolveRomanticColorPreference(t *testing.T) {
	engine := newTestEngine(t)
	profile := engine.Resolve(Input{ColorPreference: "romantic pastel pink"})

	if profile.Scheme != "wedding" {
		t.Fatalf("expected wedding scheme, got %q", profile.Scheme)
	}
	if profile.Palette.Primary != "rose" {
		t.Fatalf("expected rose primary, got %q", profile.Palette.Primary)
	}
}

func TestResolveRulePrecedence(t *testing.T) {
	engine := newTestEngine(t)

	colorWins := engine.Resolve(Input{
		ColorPreference: "pink",
		ThemeLabel:      "vintage",
		EventCategory:   domain.EventCorporate,
	})
	if colorWins.PaletteRule != "romantic_pastels" {
		t.Fatalf("expected color preference to win, got rule %q", colorWins.PaletteRule)
	}

	themeWins := engine.Resolve(Input{ThemeLabel: "rustic barn", EventCategory: domain.EventWedding})
	if themeWins.PaletteRule != "rustic" || themeWins.Palette.Primary != "emerald" {
		t.Fatalf("expected theme label to win over event default, got %+v", themeWins.Palette)
	}

	eventDefault := engine.Resolve(Input{EventCategory: domain.EventGraduation})
	if eventDefault.PaletteRule != "event_graduation" || eventDefault.Scheme != "graduation" {
		t.Fatalf("expected graduation defaults, got rule %q scheme %q", eventDefault.PaletteRule, eventDefault.Scheme)
	}
}

func TestResolveLooseColorWord(t *testing.T) {
	engine := newTestEngine(t)
	profile := engine.Resolve(Input{ColorPreference: "something emerald-ish", EventCategory: domain.EventWedding})
	if profile.PaletteRule != "emerald" || profile.Scheme != "anniversary" {
		t.Fatalf("expected loose emerald match, got rule %q scheme %q", profile.PaletteRule, profile.Scheme)
	}
}

func TestResolveRussianKeywords(t *testing.T) {
	engine := newTestEngine(t)
	profile := engine.Resolve(Input{ColorPreference: "Нежно-розовые тона"})
	if profile.Palette.Primary != "rose" {
		t.Fatalf("expected rose for russian pink stem, got %q", profile.Palette.Primary)
	}

	profile = engine.Resolve(Input{ThemeLabel: "Винтажный стиль"})
	if profile.Scheme != "vintage" {
		t.Fatalf("expected vintage scheme for russian label, got %q", profile.Scheme)
	}
}

func TestResolveEnumAliases(t *testing.T) {
	engine := newTestEngine(t)
	profile := engine.Resolve(Input{ColorPreference: "nature_inspired"})
	if profile.PaletteRule != "nature_inspired" {
		t.Fatalf("expected nature alias to resolve, got %q", profile.PaletteRule)
	}
	profile = engine.Resolve(Input{ColorPreference: "cool_winter"})
	if profile.PaletteRule != "bold_modern" {
		t.Fatalf("expected cool_winter to expand to bold modern, got %q", profile.PaletteRule)
	}
}

func TestKeywordsMatchWordStartsOnly(t *testing.T) {
	engine := newTestEngine(t)
	profile := engine.Resolve(Input{ColorPreference: "multicolored", EventCategory: domain.EventAnniversary})
	if profile.PaletteRule != "event_anniversary" {
		t.Fatalf("expected embedded 'red' to be ignored, got rule %q", profile.PaletteRule)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	engine := newTestEngine(t)
	inputs := []Input{
		{ColorPreference: "Elegant Neutrals", ThemeLabel: "modern", EventCategory: domain.EventWedding},
		{ThemeLabel: "playful", StylePreference: "minimal", EventCategory: domain.EventBirthday},
		{EventCategory: "unknown"},
		{},
	}
	for _, in := range inputs {
		first := engine.Resolve(in)
		for i := 0; i < 5; i++ {
			if again := engine.Resolve(in); again != first {
				t.Fatalf("expected identical profile for %+v", in)
			}
		}
		if again := newTestEngine(t).Resolve(in); again != first {
			t.Fatalf("expected identical profile across engines for %+v", in)
		}
	}
}

func TestDefaultProfileIsComplete(t *testing.T) {
	profile := DefaultProfile()
	if profile.Palette != (domain.Palette{Primary: "blue", Secondary: "indigo", Accent: "purple"}) {
		t.Fatalf("unexpected default palette %+v", profile.Palette)
	}
	if profile.Layout.Name != "default" || profile.Scheme != "celebration" {
		t.Fatalf("unexpected default layout/scheme %q/%q", profile.Layout.Name, profile.Scheme)
	}
	if profile.Classes.PrimaryButton == "" || profile.Decor.Gradient == "" {
		t.Fatalf("expected composed classes, got %+v", profile.Classes)
	}
}

func TestLayoutsDifferPerTheme(t *testing.T) {
	engine := newTestEngine(t)
	seen := map[string]string{}
	for _, label := range []string{"modern", "classic", "minimalist", "elegant", "playful", "rustic"} {
		profile := engine.Resolve(Input{ThemeLabel: label})
		if profile.Layout.Name != label {
			t.Fatalf("expected layout %q, got %q", label, profile.Layout.Name)
		}
		if other, ok := seen[profile.Layout.Card]; ok {
			t.Fatalf("layout %q shares card classes with %q", label, other)
		}
		seen[profile.Layout.Card] = label
	}
}

func TestPlaceholdersExpandWithPalette(t *testing.T) {
	engine := newTestEngine(t)
	profile := engine.Resolve(Input{ThemeLabel: "rustic"})
	if strings.Contains(profile.Layout.Card, "{") || !strings.Contains(profile.Layout.Card, "border-emerald-200") {
		t.Fatalf("expected expanded rustic card, got %q", profile.Layout.Card)
	}
	if !strings.Contains(profile.Classes.PrimaryButton, "bg-emerald-600") {
		t.Fatalf("expected palette-driven button, got %q", profile.Classes.PrimaryButton)
	}
	if !strings.Contains(profile.Classes.Page, "from-emerald-50") {
		t.Fatalf("expected anniversary decor on page, got %q", profile.Classes.Page)
	}
}

func TestParseTableRejectsUnknownField(t *testing.T) {
	doc := []byte(`
tiers:
  - name: bad
    fields: [mood]
default:
  palette: {primary: blue, secondary: indigo, accent: purple}
layouts:
  default: {name: default}
`)
	if _, err := ParseTable(doc); err == nil {
		t.Fatal("expected unknown field error")
	}
}
