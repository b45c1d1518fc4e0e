package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the metadata block some generator replies open with.
type FrontMatter struct {
	Title       string
	Description string
	Subtitle    string
	Custom      map[string]any
}

// IsZero reports whether no known key was present.
func (f FrontMatter) IsZero() bool {
	return f.Title == "" && f.Description == "" && f.Subtitle == ""
}

// ParseFrontMatter extracts metadata and the remaining body from source.
// Sources without a front matter block are returned unchanged.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, nil
}

type frontMatterEnvelope struct {
	Title           string         `yaml:"title"`
	Description     string         `yaml:"description"`
	MetaDescription string         `yaml:"meta_description"`
	Summary         string         `yaml:"summary"`
	Subtitle        string         `yaml:"subtitle"`
	Custom          map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) FrontMatter {
	fm := FrontMatter{
		Title:    strings.TrimSpace(env.Title),
		Subtitle: strings.TrimSpace(env.Subtitle),
		Custom:   env.Custom,
	}
	for _, candidate := range []string{env.Description, env.MetaDescription, env.Summary} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			fm.Description = trimmed
			break
		}
	}
	if fm.Custom == nil {
		fm.Custom = map[string]any{}
	}
	return fm
}
