package theming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lower = cases.Lower(language.Und)

// normalizeText lower-cases the input and reduces it to single-space
// separated words. Underscores, hyphens and punctuation act as separators.
func normalizeText(value string) string {
	value = lower.String(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, "ё", "е")
	var b strings.Builder
	b.Grow(len(value))
	space := true
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// containsKeyword reports whether keyword occurs at a word start in text.
// Both values must already be normalized.
func containsKeyword(text, keyword string) bool {
	if text == "" || keyword == "" {
		return false
	}
	return strings.Contains(" "+text, " "+keyword)
}

func matchesAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if containsKeyword(text, keyword) {
			return true
		}
	}
	return false
}

// firstMatch returns the first rule whose keywords occur in the texts.
// Earlier texts take precedence over later ones.
func firstMatch[R any](rules []R, keywords func(R) []string, texts ...string) (R, bool) {
	for _, text := range texts {
		if text == "" {
			continue
		}
		for _, rule := range rules {
			if matchesAny(text, keywords(rule)) {
				return rule, true
			}
		}
	}
	var zero R
	return zero, false
}
