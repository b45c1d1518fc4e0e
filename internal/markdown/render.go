package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// Options configures a Renderer. Guest-facing text (menu, dress code,
// wishes) is rendered with SafeMode so raw HTML never reaches the page.
type Options struct {
	// Extensions by name: gfm, table, strikethrough, linkify, tasklist,
	// definition. Empty selects strikethrough and linkify.
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

var extensions = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
}

// Renderer turns short Markdown snippets into HTML fragments. It is safe
// for concurrent use.
type Renderer struct {
	engine goldmark.Markdown
}

func NewRenderer(opts Options) *Renderer {
	var rendererOpts []renderer.Option
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}
	return &Renderer{engine: goldmark.New(
		goldmark.WithExtensions(selectExtensions(opts.Extensions)...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOpts...),
	)}
}

// Render converts source into an HTML fragment.
func (r *Renderer) Render(source string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(source), &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

func selectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.Strikethrough, extension.Linkify}
	}
	selected := make([]goldmark.Extender, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		ext, ok := extensions[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		selected = append(selected, ext)
	}
	return selected
}
