package interfaces

import (
	"context"
	"errors"
)

// ErrGeneratorUnavailable is the sentinel returned by TextGenerator
// implementations when no usable completion could be produced.
var ErrGeneratorUnavailable = errors.New("generator: unavailable")

// CompletionRequest captures a single prompt exchange with a generative-text service.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float32
}

// TextGenerator produces creative copy. Implementations enforce their own
// timeout and retry budget and report every failure as ErrGeneratorUnavailable
// (optionally wrapped) so callers can fall back deterministically.
type TextGenerator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// RouteResolver builds public URLs for generated sites.
type RouteResolver interface {
	RSVPEndpoint(siteID string) (string, error)
	SiteURL(slug string) (string, error)
}
