package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	titlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*["']?(?:title|название|заголовок)["']?\s*[:：]\s*["']?(.+?)["']?,?\s*$`),
		regexp.MustCompile(`(?m)^#{1,6}\s*(.+?)\s*#*\s*$`),
		regexp.MustCompile(`(?m)^\*\*(.+?)\*\*`),
	}
	descriptionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*["']?(?:meta_description|description|описание)["']?\s*[:：]\s*["']?(.+?)["']?,?\s*$`),
	}
)

const (
	minTitleLen       = 4
	maxTitleLen       = 99
	minDescriptionLen = 11
	maxDescriptionLen = 199
	minLineLen        = 21
	maxLineLen        = 199
)

func runeLen(value string) int {
	return utf8.RuneCountInString(value)
}

func within(value string, min, max int) bool {
	n := runeLen(value)
	return n >= min && n <= max
}

func cleanCapture(value string) string {
	value = strings.TrimSpace(value)
	value = strings.Trim(value, `"'`)
	value = strings.TrimSpace(strings.Trim(value, "*"))
	return value
}

func matchLabel(patterns []*regexp.Regexp, text string, min, max int) string {
	for _, pattern := range patterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			if len(match) < 2 {
				continue
			}
			if candidate := cleanCapture(match[1]); within(candidate, min, max) {
				return candidate
			}
		}
	}
	return ""
}

func extractTitle(text string) string {
	return matchLabel(titlePatterns, text, minTitleLen, maxTitleLen)
}

func extractDescription(text string) string {
	if found := matchLabel(descriptionPatterns, text, minDescriptionLen, maxDescriptionLen); found != "" {
		return found
	}
	return firstSentenceLine(text)
}

// firstSentenceLine returns the first line of plausible prose length that is
// not a heading or a structural fragment.
func firstSentenceLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "{") || strings.HasPrefix(line, "}") || strings.HasPrefix(line, "---") {
			continue
		}
		if titlePatterns[0].MatchString(line) {
			continue
		}
		if within(line, minLineLen, maxLineLen) {
			return line
		}
	}
	return ""
}
