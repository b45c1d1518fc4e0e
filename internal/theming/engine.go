package theming

import (
	"strings"
	"sync"

	"github.com/goliatone/go-invites/internal/domain"
)

// Input is the free-text signal the engine reads from a request.
type Input struct {
	ColorPreference string
	ThemeLabel      string
	StylePreference string
	EventCategory   domain.EventCategory
}

// InputFromRequest extracts the theming input from a generation request.
func InputFromRequest(req domain.GenerationRequest) Input {
	return Input{
		ColorPreference: req.ColorPreference,
		ThemeLabel:      req.ThemeLabel,
		StylePreference: req.StylePreference,
		EventCategory:   req.EventCategory,
	}
}

// Engine resolves theme profiles from an ordered rule table. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	table *Table
}

// Option configures the engine.
type Option func(*Engine)

// WithTable replaces the embedded rule table.
func WithTable(table *Table) Option {
	return func(e *Engine) {
		if table != nil {
			e.table = table
		}
	}
}

// New builds an engine backed by the embedded rules unless overridden.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{}
	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}
	if engine.table == nil {
		table, err := DefaultTable()
		if err != nil {
			return nil, err
		}
		engine.table = table
	}
	return engine, nil
}

// MustNew panics when the rule table cannot be loaded.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

var (
	defaultOnce    sync.Once
	defaultProfile domain.ThemeProfile
)

// DefaultProfile is the profile used when nothing in the request matches.
func DefaultProfile() domain.ThemeProfile {
	defaultOnce.Do(func() {
		defaultProfile = MustNew().Resolve(Input{})
	})
	return defaultProfile
}

type normalizedInput struct {
	values map[Field]string
}

func (e *Engine) normalize(in Input) normalizedInput {
	expand := func(value string) string {
		normalized := normalizeText(value)
		if alias, ok := e.table.Aliases[normalized]; ok {
			return alias
		}
		return normalized
	}
	category := in.EventCategory.Normalize()
	return normalizedInput{values: map[Field]string{
		FieldColor: expand(in.ColorPreference),
		FieldTheme: expand(in.ThemeLabel),
		FieldStyle: expand(in.StylePreference),
		FieldEvent: normalizeText(string(category)),
	}}
}

func (n normalizedInput) texts(fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, n.values[field])
	}
	return out
}

func ruleKeywords(rule Rule) []string {
	return rule.Keywords
}

// Resolve returns the deterministic theme profile for the input.
func (e *Engine) Resolve(in Input) domain.ThemeProfile {
	normalized := e.normalize(in)

	paletteRule := e.resolveTier(normalized, func(rule Rule) bool { return !rule.Palette.IsZero() })
	schemeRule := e.resolveTier(normalized, func(rule Rule) bool { return strings.TrimSpace(rule.Scheme) != "" })

	layoutRule, ok := firstMatch(e.table.Layouts.Rules, func(rule LayoutRule) []string {
		return rule.Keywords
	}, normalized.texts(e.table.Layouts.Fields)...)
	layout := e.table.Layouts.Default
	if ok {
		layout = layoutRule.LayoutTokens
	}

	profile := domain.ThemeProfile{
		Scheme:      schemeRule.Scheme,
		Palette:     paletteRule.Palette,
		Decor:       e.table.scheme(schemeRule.Scheme),
		PaletteRule: paletteRule.ID,
		SchemeRule:  schemeRule.ID,
		LayoutRule:  layout.Name,
	}
	profile.Layout = expandLayout(layout, profile.Palette)
	profile.Classes = e.composeClasses(profile)
	return profile
}

func (e *Engine) resolveTier(in normalizedInput, usable func(Rule) bool) Rule {
	for _, tier := range e.table.Tiers {
		rules := make([]Rule, 0, len(tier.Rules))
		for _, rule := range tier.Rules {
			if usable(rule) {
				rules = append(rules, rule)
			}
		}
		if rule, ok := firstMatch(rules, ruleKeywords, in.texts(tier.Fields)...); ok {
			return rule
		}
	}
	return e.table.Default
}
