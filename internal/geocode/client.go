package geocode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-invites/internal/domain"
	"github.com/goliatone/go-invites/internal/logging"
	"github.com/goliatone/go-invites/pkg/interfaces"
	"github.com/tidwall/gjson"
)

const (
	// DefaultBaseURL is the 2GIS catalog API root.
	DefaultBaseURL = "https://catalog.api.2gis.com"
	// DefaultTimeout bounds a single lookup.
	DefaultTimeout = 5 * time.Second

	geocodePath    = "/3.0/items/geocode"
	geocodeFields  = "items.point,items.full_name"
	maxPayloadSize = 1 << 20
)

// Config describes the address lookup service.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client resolves free-text addresses to coordinates. Every failure is
// reported as an absent result.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	logger  interfaces.Logger
}

// Option customises the client.
type Option func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger sets the adapter logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client. A missing API key yields a client that never calls out.
func New(cfg Config, opts ...Option) *Client {
	client := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		timeout: cfg.Timeout,
		http:    &http.Client{},
		logger:  logging.NoOp(),
	}
	if client.baseURL == "" {
		client.baseURL = DefaultBaseURL
	}
	if client.timeout <= 0 {
		client.timeout = DefaultTimeout
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Enabled reports whether lookups can reach the service.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Geocode resolves address. ok is false when the key is missing, the call
// fails or times out, or the service has no match.
func (c *Client) Geocode(ctx context.Context, address string) (*domain.GeocodeResult, bool) {
	address = strings.TrimSpace(address)
	if !c.Enabled() || address == "" {
		return nil, false
	}

	logger := logging.FromContext(c.logger, ctx)
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.fetch(ctx, address)
	if err != nil {
		logger.Warn("geocode.lookup.unavailable", "error", err)
		return nil, false
	}

	result, ok := parseResult(body)
	if !ok {
		logger.Debug("geocode.lookup.no_match", "address", address)
		return nil, false
	}
	return result, true
}

func (c *Client) fetch(ctx context.Context, address string) ([]byte, error) {
	query := url.Values{}
	query.Set("q", address)
	query.Set("fields", geocodeFields)
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+geocodePath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize))
	if err != nil {
		return nil, fmt.Errorf("geocode: read body: %w", err)
	}
	return body, nil
}

func parseResult(body []byte) (*domain.GeocodeResult, bool) {
	if !gjson.ValidBytes(body) {
		return nil, false
	}
	item := gjson.GetBytes(body, "result.items.0")
	lat := item.Get("point.lat")
	lon := item.Get("point.lon")
	if !item.Exists() || !lat.Exists() || !lon.Exists() {
		return nil, false
	}
	latitude, longitude := lat.Float(), lon.Float()
	if latitude < -90 || latitude > 90 || longitude < -180 || longitude > 180 {
		return nil, false
	}
	return &domain.GeocodeResult{
		Latitude:    latitude,
		Longitude:   longitude,
		DisplayName: strings.TrimSpace(item.Get("full_name").String()),
	}, true
}
