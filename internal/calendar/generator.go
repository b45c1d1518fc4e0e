package calendar

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/goliatone/go-invites/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var monthTemplate = template.Must(template.ParseFS(templateFS, "templates/month.tmpl"))

// Generator renders month grids. It is stateless apart from its configuration.
type Generator struct {
	weekStart time.Weekday
}

// Option configures the generator.
type Option func(*Generator)

// WithWeekStart sets the first column of the grid.
func WithWeekStart(day time.Weekday) Option {
	return func(g *Generator) {
		if day >= time.Sunday && day <= time.Saturday {
			g.weekStart = day
		}
	}
}

// New returns a generator whose weeks start on Monday unless configured.
func New(opts ...Option) *Generator {
	g := &Generator{weekStart: time.Monday}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Month builds the localized grid for date.
func (g *Generator) Month(date time.Time, locale string) Month {
	resolved := ResolveLocale(locale)
	month := BuildMonth(date, g.weekStart)
	month.Title = MonthTitle(month.Year, month.Month, resolved)
	month.Weekdays = WeekdayNames(resolved, g.weekStart)
	return month
}

type monthView struct {
	Month       Month
	MonthNumber int
	Classes     domain.ThemeClasses
}

// Render produces the calendar fragment for date styled with classes.
func (g *Generator) Render(date time.Time, locale string, classes domain.ThemeClasses) (template.HTML, error) {
	month := g.Month(date, locale)
	var buf bytes.Buffer
	if err := monthTemplate.ExecuteTemplate(&buf, "month", monthView{
		Month:       month,
		MonthNumber: int(month.Month),
		Classes:     classes,
	}); err != nil {
		return "", fmt.Errorf("calendar: render: %w", err)
	}
	return template.HTML(buf.String()), nil
}
