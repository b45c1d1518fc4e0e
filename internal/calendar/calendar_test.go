package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goodsign/monday"
)

func TestBuildMonthOffsets(t *testing.T) {
	// June 2025 starts on a Sunday.
	date := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)

	mondayStart := BuildMonth(date, time.Monday)
	if mondayStart.Offset != 6 {
		t.Fatalf("expected offset 6 for monday start, got %d", mondayStart.Offset)
	}
	if mondayStart.DaysInMonth != 30 || len(mondayStart.Weeks) != 6 {
		t.Fatalf("unexpected grid size: days=%d weeks=%d", mondayStart.DaysInMonth, len(mondayStart.Weeks))
	}

	sunday := BuildMonth(date, time.Sunday)
	if sunday.Offset != 0 || len(sunday.Weeks) != 5 {
		t.Fatalf("unexpected sunday grid: offset=%d weeks=%d", sunday.Offset, len(sunday.Weeks))
	}
}

func TestBuildMonthMarksTargetAndWeekends(t *testing.T) {
	date := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)
	grid := BuildMonth(date, time.Monday)

	targets := 0
	for _, week := range grid.Weeks {
		for col, cell := range week {
			if cell.Target {
				targets++
				if cell.Day != 14 || col != 5 {
					t.Fatalf("expected day 14 in saturday column, got day %d col %d", cell.Day, col)
				}
			}
			if cell.Day != 0 && cell.Weekend != (col >= 5) {
				t.Fatalf("day %d weekend flag mismatch in column %d", cell.Day, col)
			}
		}
	}
	if targets != 1 {
		t.Fatalf("expected exactly one target cell, got %d", targets)
	}
}

func TestDaysInLeapYear(t *testing.T) {
	if got := DaysIn(2024, time.February); got != 29 {
		t.Fatalf("expected 29 days, got %d", got)
	}
	if got := DaysIn(2025, time.February); got != 28 {
		t.Fatalf("expected 28 days, got %d", got)
	}
}

func TestResolveLocale(t *testing.T) {
	cases := map[string]monday.Locale{
		"":       monday.LocaleEnUS,
		"ru":     monday.LocaleRuRU,
		"ru_RU":  monday.LocaleRuRU,
		"de-AT":  monday.LocaleDeDE,
		"zz-bad": monday.LocaleEnUS,
	}
	for input, want := range cases {
		if got := ResolveLocale(input); got != want {
			t.Fatalf("locale %q: expected %s, got %s", input, want, got)
		}
	}
}

func TestMonthNames(t *testing.T) {
	gen := New()
	date := time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)

	en := gen.Month(date, "en")
	if en.Title != "June 2025" {
		t.Fatalf("expected English title, got %q", en.Title)
	}
	if en.Weekdays[0] != "Mon" || en.Weekdays[6] != "Sun" {
		t.Fatalf("unexpected weekday order %v", en.Weekdays)
	}

	ru := gen.Month(date, "ru")
	if ru.Title == en.Title || !strings.Contains(ru.Title, "2025") {
		t.Fatalf("expected localized russian title, got %q", ru.Title)
	}
}

func TestRenderUsesThemeClasses(t *testing.T) {
	classes := domain.ThemeClasses{CalendarActive: "bg-rose-600", CalendarHeader: "text-pink-700"}
	html, err := New().Render(time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC), "en", classes)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(html)
	if !strings.Contains(out, `class="py-2 bg-rose-600" aria-current="date">14<`) {
		t.Fatalf("expected highlighted target day, got %s", out)
	}
	if !strings.Contains(out, "text-pink-700") || !strings.Contains(out, `data-calendar="2025-06"`) {
		t.Fatalf("expected header classes and month marker, got %s", out)
	}
	if again, _ := New().Render(time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC), "en", classes); again != html {
		t.Fatal("expected identical output for identical input")
	}
}
