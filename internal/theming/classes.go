package theming

import (
	"strings"

	"github.com/goliatone/go-invites/internal/domain"
)

func paletteReplacer(p domain.Palette) *strings.Replacer {
	return strings.NewReplacer(
		"{primary}", p.Primary,
		"{secondary}", p.Secondary,
		"{accent}", p.Accent,
	)
}

func expandLayout(layout domain.LayoutTokens, palette domain.Palette) domain.LayoutTokens {
	r := paletteReplacer(palette)
	layout.Container = r.Replace(layout.Container)
	layout.Card = r.Replace(layout.Card)
	layout.Title = r.Replace(layout.Title)
	layout.Description = r.Replace(layout.Description)
	layout.Button = r.Replace(layout.Button)
	layout.Spacing = r.Replace(layout.Spacing)
	layout.Font = r.Replace(layout.Font)
	return layout
}

func (e *Engine) composeClasses(profile domain.ThemeProfile) domain.ThemeClasses {
	r := strings.NewReplacer(
		"{primary}", profile.Palette.Primary,
		"{secondary}", profile.Palette.Secondary,
		"{accent}", profile.Palette.Accent,
		"{gradient}", profile.Decor.Gradient,
		"{hero_gradient}", profile.Decor.HeroGradient,
		"{text_gradient}", profile.Decor.TextGradient,
		"{glass_tint}", profile.Decor.GlassTint,
		"{title}", profile.Layout.Title,
		"{button}", profile.Layout.Button,
		"{card}", profile.Layout.Card,
		"{font}", profile.Layout.Font,
	)
	class := func(key string) string {
		return strings.Join(strings.Fields(r.Replace(e.table.Classes[key])), " ")
	}
	return domain.ThemeClasses{
		Page:           class("page"),
		Hero:           class("hero"),
		HeroTitle:      class("hero_title"),
		TextGradient:   class("text_gradient"),
		Glass:          class("glass"),
		PrimaryButton:  class("primary_button"),
		OutlineButton:  class("outline_button"),
		AccentText:     class("accent_text"),
		MutedText:      class("muted_text"),
		Border:         class("border"),
		Badge:          class("badge"),
		Icon:           class("icon"),
		CalendarActive: class("calendar_active"),
		CalendarHeader: class("calendar_header"),
		Input:          class("input"),
		Error:          class("error"),
		Success:        class("success"),
	}
}
