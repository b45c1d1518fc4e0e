package slugs

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-slug"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrSlugExhausted is returned when every suffix up to the attempt limit is taken.
var ErrSlugExhausted = errors.New("slugs: no free suffix within attempt limit")

const (
	// DefaultFallback is used when a title normalizes to nothing.
	DefaultFallback = "invitation"
	// DefaultMaxAttempts bounds the collision scan.
	DefaultMaxAttempts = 1000
	// DefaultMaxLength leaves room for a numeric suffix within the column size.
	DefaultMaxLength = 90
)

// Set is a lookup of identifiers already in use.
type Set map[string]struct{}

// NewSet builds a set from the provided slugs.
func NewSet(values ...string) Set {
	set := make(Set, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

// Has reports whether value is taken.
func (s Set) Has(value string) bool {
	_, ok := s[value]
	return ok
}

// Generator produces unique URL-safe identifiers from titles.
type Generator struct {
	normalizer  slug.Normalizer
	fallback    string
	maxAttempts int
	maxLength   int
}

// Option configures the generator.
type Option func(*Generator)

// WithNormalizer overrides the go-slug normalizer applied after folding.
func WithNormalizer(normalizer slug.Normalizer) Option {
	return func(g *Generator) {
		if normalizer != nil {
			g.normalizer = normalizer
		}
	}
}

// WithFallback sets the base used for titles without usable characters.
func WithFallback(value string) Option {
	return func(g *Generator) {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			g.fallback = trimmed
		}
	}
}

// WithMaxAttempts bounds the numeric suffix scan.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithMaxLength caps the base slug length in runes.
func WithMaxLength(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxLength = n
		}
	}
}

// New returns a generator with the default rules.
func New(opts ...Option) *Generator {
	g := &Generator{
		normalizer:  slug.Default(),
		fallback:    DefaultFallback,
		maxAttempts: DefaultMaxAttempts,
		maxLength:   DefaultMaxLength,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Normalize turns a title into its base slug. It never returns an empty string.
func (g *Generator) Normalize(title string) string {
	cleaned := clean(fold(title))
	if cleaned != "" {
		if normalized, err := g.normalizer.Normalize(cleaned); err == nil {
			if normalized = clean(normalized); normalized != "" {
				cleaned = normalized
			}
		}
	}
	cleaned = truncate(cleaned, g.maxLength)
	if cleaned == "" {
		return g.fallback
	}
	return cleaned
}

// Generate returns the base slug for title, or the first free "-N" variant.
func (g *Generator) Generate(title string, existing Set) (string, error) {
	base := g.Normalize(title)
	if !existing.Has(base) {
		return base, nil
	}
	for i := 1; i <= g.maxAttempts; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !existing.Has(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: base %q after %d attempts", ErrSlugExhausted, base, g.maxAttempts)
}

var diacritics = runes.Remove(runes.In(unicode.Mn))

// letters spells single letters from the go-slug charmap in ASCII (ß to ss,
// ł to l, ж to zh). Symbol entries such as & are left to clean.
var letters = sync.OnceValue(func() *strings.Replacer {
	charMap, err := slug.GetCharMap()
	if err != nil {
		return strings.NewReplacer()
	}
	keys := make([]string, 0, len(charMap))
	for key := range charMap {
		r, size := utf8.DecodeRuneInString(key)
		if size == len(key) && r >= utf8.RuneSelf && unicode.IsLetter(r) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	pairs := make([]string, 0, len(keys)*2)
	for _, key := range keys {
		pairs = append(pairs, key, charMap[key])
	}
	return strings.NewReplacer(pairs...)
})

func fold(value string) string {
	value = letters().Replace(norm.NFC.String(value))
	t := transform.Chain(norm.NFD, diacritics, norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return folded
}

func isApostrophe(r rune) bool {
	switch r {
	case '\'', '’', '‘', '`', 'ʼ':
		return true
	}
	return false
}

// clean lower-cases letters and digits, drops apostrophes and collapses
// everything else into single hyphens.
func clean(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	pendingHyphen := false
	for _, r := range strings.ToLower(value) {
		switch {
		case isApostrophe(r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}

func truncate(value string, max int) string {
	if max <= 0 {
		return value
	}
	runesValue := []rune(value)
	if len(runesValue) <= max {
		return value
	}
	return strings.Trim(string(runesValue[:max]), "-")
}
