package calendar

import (
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

type localeEntry struct {
	tag    language.Tag
	locale monday.Locale
}

var localeTable = []localeEntry{
	{language.AmericanEnglish, monday.LocaleEnUS},
	{language.Russian, monday.LocaleRuRU},
	{language.Ukrainian, monday.LocaleUkUA},
	{language.German, monday.LocaleDeDE},
	{language.French, monday.LocaleFrFR},
	{language.Spanish, monday.LocaleEsES},
	{language.Italian, monday.LocaleItIT},
	{language.MustParse("pt-BR"), monday.LocalePtBR},
}

var localeMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(localeTable))
	for i, entry := range localeTable {
		tags[i] = entry.tag
	}
	return language.NewMatcher(tags)
}()

// ResolveLocale maps a BCP 47 tag to a supported date locale. Unknown or
// malformed values fall back to en_US.
func ResolveLocale(value string) monday.Locale {
	value = strings.TrimSpace(strings.ReplaceAll(value, "_", "-"))
	if value == "" {
		return monday.LocaleEnUS
	}
	tag, err := language.Parse(value)
	if err != nil {
		return monday.LocaleEnUS
	}
	_, index, confidence := localeMatcher.Match(tag)
	if confidence == language.No {
		return monday.LocaleEnUS
	}
	return localeTable[index].locale
}

// reference week starting on Monday 2024-01-01.
var referenceMonday = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// WeekdayNames returns short weekday names ordered from weekStart.
func WeekdayNames(locale monday.Locale, weekStart time.Weekday) []string {
	names := make([]string, 7)
	for i := range names {
		weekday := time.Weekday((int(weekStart) + i) % 7)
		offset := (int(weekday) - int(time.Monday) + 7) % 7
		names[i] = monday.Format(referenceMonday.AddDate(0, 0, offset), "Mon", locale)
	}
	return names
}

// MonthTitle renders the standalone month name with its year.
func MonthTitle(year int, month time.Month, locale monday.Locale) string {
	return monday.Format(time.Date(year, month, 1, 12, 0, 0, 0, time.UTC), "January 2006", locale)
}

// FormatDate renders date as a long localized day, e.g. "14 June 2025".
func FormatDate(date time.Time, locale monday.Locale) string {
	return monday.Format(date, "2 January 2006", locale)
}
