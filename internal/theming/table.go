package theming

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-invites/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

var (
	// ErrEmptyTable is returned when a rule document defines no tiers.
	ErrEmptyTable = errors.New("theming: rule table has no tiers")
	// ErrUnknownField is returned when a tier references an unsupported input field.
	ErrUnknownField = errors.New("theming: unknown input field")
	// ErrMissingDefault is returned when the table has no default palette or layout.
	ErrMissingDefault = errors.New("theming: default outcome missing")
)

// Field names the request input a tier inspects.
type Field string

const (
	FieldColor Field = "color"
	FieldTheme Field = "theme"
	FieldStyle Field = "style"
	FieldEvent Field = "event"
)

// Rule is a single (predicate, outcome) entry.
type Rule struct {
	ID       string         `yaml:"id"`
	Keywords []string       `yaml:"keywords"`
	Palette  domain.Palette `yaml:"palette"`
	Scheme   string         `yaml:"scheme"`
}

// Tier is an ordered group of rules evaluated against the same fields.
type Tier struct {
	Name   string  `yaml:"name"`
	Fields []Field `yaml:"fields"`
	Rules  []Rule  `yaml:"rules"`
}

// LayoutRule selects a layout token set.
type LayoutRule struct {
	Keywords            []string `yaml:"keywords"`
	domain.LayoutTokens `yaml:",inline"`
}

// LayoutTable resolves layouts from the theme and style text.
type LayoutTable struct {
	Fields  []Field             `yaml:"fields"`
	Rules   []LayoutRule        `yaml:"rules"`
	Default domain.LayoutTokens `yaml:"default"`
}

// Table is the complete data-driven rule set.
type Table struct {
	Aliases map[string]string              `yaml:"aliases"`
	Tiers   []Tier                         `yaml:"tiers"`
	Default Rule                           `yaml:"default"`
	Schemes map[string]domain.SchemeTokens `yaml:"schemes"`
	Layouts LayoutTable                    `yaml:"layouts"`
	Classes map[string]string              `yaml:"classes"`
}

// ParseTable decodes a YAML rule document and normalizes its keywords.
func ParseTable(data []byte) (*Table, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("theming: decode rules: %w", err)
	}
	if err := table.prepare(); err != nil {
		return nil, err
	}
	return &table, nil
}

// DefaultTable returns the embedded rule set.
func DefaultTable() (*Table, error) {
	return ParseTable(defaultRules)
}

func (t *Table) prepare() error {
	if len(t.Tiers) == 0 {
		return ErrEmptyTable
	}
	if t.Default.Palette.IsZero() || t.Layouts.Default.Name == "" {
		return ErrMissingDefault
	}

	aliases := make(map[string]string, len(t.Aliases))
	for key, value := range t.Aliases {
		aliases[normalizeText(key)] = normalizeText(value)
	}
	t.Aliases = aliases

	for i := range t.Tiers {
		if err := validateFields(t.Tiers[i].Fields); err != nil {
			return fmt.Errorf("%w: tier %s", err, t.Tiers[i].Name)
		}
		for j := range t.Tiers[i].Rules {
			t.Tiers[i].Rules[j].Keywords = normalizeKeywords(t.Tiers[i].Rules[j].Keywords)
		}
	}
	if err := validateFields(t.Layouts.Fields); err != nil {
		return fmt.Errorf("%w: layouts", err)
	}
	for i := range t.Layouts.Rules {
		t.Layouts.Rules[i].Keywords = normalizeKeywords(t.Layouts.Rules[i].Keywords)
	}
	return nil
}

func validateFields(fields []Field) error {
	for _, field := range fields {
		switch field {
		case FieldColor, FieldTheme, FieldStyle, FieldEvent:
		default:
			return fmt.Errorf("%w %q", ErrUnknownField, field)
		}
	}
	return nil
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if normalized := normalizeText(keyword); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}

func (t *Table) scheme(name string) domain.SchemeTokens {
	if tokens, ok := t.Schemes[name]; ok {
		return tokens
	}
	return t.Schemes[strings.TrimSpace(t.Default.Scheme)]
}
