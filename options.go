package invites

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-invites/internal/pipeline"
	"github.com/goliatone/go-invites/internal/status"
	"github.com/goliatone/go-invites/pkg/interfaces"
)

// Option overrides a collaborator built by New.
type Option func(*moduleOptions)

type moduleOptions struct {
	loggerProvider interfaces.LoggerProvider
	store          SiteStore
	generator      interfaces.TextGenerator
	geocoder       pipeline.Geocoder
	sink           status.Sink
	registry       *prometheus.Registry
	clock          func() time.Time
}

// WithLoggerProvider replaces the configured logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *moduleOptions) {
		o.loggerProvider = provider
	}
}

// WithSiteStore skips opening the configured database.
func WithSiteStore(store SiteStore) Option {
	return func(o *moduleOptions) {
		o.store = store
	}
}

// WithTextGenerator replaces the OpenAI-compatible client.
func WithTextGenerator(generator interfaces.TextGenerator) Option {
	return func(o *moduleOptions) {
		o.generator = generator
	}
}

// WithGeocoder replaces the 2GIS client.
func WithGeocoder(geocoder pipeline.Geocoder) Option {
	return func(o *moduleOptions) {
		o.geocoder = geocoder
	}
}

// WithStatusSink forwards status events to sink instead of the NATS bridge.
func WithStatusSink(sink status.Sink) Option {
	return func(o *moduleOptions) {
		o.sink = sink
	}
}

// WithRegistry registers pipeline collectors on reg.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *moduleOptions) {
		o.registry = reg
	}
}

// WithClock sets the clock used for task timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *moduleOptions) {
		o.clock = clock
	}
}
