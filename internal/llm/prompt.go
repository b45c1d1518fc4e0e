package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/pkg/interfaces"
)

const systemPrompt = `You write copy for event invitation websites.
Every site must feel unique: write warm, specific headlines instead of templates and respect the color preferences you are given.

Reply with a single JSON object and nothing else:
{
  "title": "creative page title",
  "meta_description": "emotional summary under 160 characters",
  "hero_section": {"title": "headline", "subtitle": "lively subtitle", "cta_text": "call to action"},
  "about_section": {"title": "section title", "content": "rich description of the event"},
  "features_section": {"title": "section title", "content": "what guests can look forward to"},
  "contact_section": {"title": "section title", "content": "how to reach the host"},
  "footer_section": {"content": "closing line"},
  "color_palette": {"primary": "tailwind color family", "secondary": "tailwind color family", "accent": "tailwind color family"}
}`

// PromptOptions tunes the completion request.
type PromptOptions struct {
	MaxTokens   int
	Temperature float32
}

// DefaultPromptOptions mirrors the service defaults.
func DefaultPromptOptions() PromptOptions {
	return PromptOptions{MaxTokens: DefaultMaxTokens, Temperature: DefaultTemperature}
}

// BuildPrompt turns a request into the completion exchange sent to the generator.
func BuildPrompt(req domain.GenerationRequest, opts PromptOptions) interfaces.CompletionRequest {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = DefaultTemperature
	}
	return interfaces.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt(req),
		MaxTokens:    opts.MaxTokens,
		Temperature:  opts.Temperature,
	}
}

func userPrompt(req domain.GenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create the landing page copy for a %s event.\n", displayCategory(req.EventCategory))
	writeLine(&b, "Theme", req.ThemeLabel)
	writeLine(&b, "Color preference", req.ColorPreference)
	writeLine(&b, "Style preference", req.StylePreference)
	writeLine(&b, "Target audience", req.TargetAudience)
	if locale := strings.TrimSpace(req.Locale); locale != "" {
		fmt.Fprintf(&b, "Write all text in the language identified by %q.\n", locale)
	}
	b.WriteString("Sections: hero, about, features, contact, footer.\n")

	details, err := json.MarshalIndent(req.Details, "", "  ")
	if err == nil {
		b.WriteString("Event details:\n")
		b.Write(details)
		b.WriteString("\n")
	}
	return b.String()
}

func writeLine(b *strings.Builder, label, value string) {
	if value = strings.TrimSpace(value); value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}

func displayCategory(category domain.EventCategory) string {
	return strings.ReplaceAll(string(category.Normalize()), "_", " ")
}
