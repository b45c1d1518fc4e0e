package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-invites/internal/logging"
	"github.com/goliatone/go-invites/pkg/interfaces"
	openai "github.com/sashabaranov/go-openai"
)

// ErrUnavailable is the failure sentinel returned for every unusable completion.
var ErrUnavailable = interfaces.ErrGeneratorUnavailable

// TextCodeUnavailable tags wrapped adapter failures.
const TextCodeUnavailable = "EXTERNAL_SERVICE_UNAVAILABLE"

const (
	DefaultModel         = "gpt-4o"
	DefaultTemperature   = float32(0.8)
	DefaultMaxTokens     = 2000
	DefaultTimeout       = 25 * time.Second
	DefaultRetryInterval = 500 * time.Millisecond
	maxRetries           = 1
)

// Config describes the completion service.
type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	RetryInterval time.Duration
}

// Client calls an OpenAI-compatible chat completion endpoint with a bounded
// wait per attempt and at most one retry for transient failures.
type Client struct {
	api           *openai.Client
	model         string
	timeout       time.Duration
	retryInterval time.Duration
	logger        interfaces.Logger
}

var _ interfaces.TextGenerator = (*Client)(nil)

// Option customises the client.
type Option func(*Client)

// WithLogger sets the adapter logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client. It returns a Disabled generator when no API key is configured.
func New(cfg Config, opts ...Option) interfaces.TextGenerator {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Disabled{}
	}
	return NewClient(cfg, nil, opts...)
}

// NewClient builds a client using httpClient as the transport when provided.
func NewClient(cfg Config, httpClient *http.Client, opts ...Option) *Client {
	apiCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		apiCfg.BaseURL = strings.TrimRight(base, "/")
	}
	if httpClient != nil {
		apiCfg.HTTPClient = httpClient
	}

	client := &Client{
		api:           openai.NewClientWithConfig(apiCfg),
		model:         strings.TrimSpace(cfg.Model),
		timeout:       cfg.Timeout,
		retryInterval: cfg.RetryInterval,
		logger:        logging.NoOp(),
	}
	if client.model == "" {
		client.model = DefaultModel
	}
	if client.timeout <= 0 {
		client.timeout = DefaultTimeout
	}
	if client.retryInterval <= 0 {
		client.retryInterval = DefaultRetryInterval
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Complete returns the generated text or an error wrapping ErrUnavailable.
func (c *Client) Complete(ctx context.Context, req interfaces.CompletionRequest) (string, error) {
	request := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
	}
	if request.MaxTokens <= 0 {
		request.MaxTokens = DefaultMaxTokens
	}

	attempt := 0
	operation := func() (string, error) {
		attempt++
		text, err := c.attempt(ctx, request)
		if err == nil {
			return text, nil
		}
		if goerrors.IsRetryableError(err) {
			return "", err
		}
		return "", backoff.Permanent(err)
	}

	logger := logging.FromContext(c.logger, ctx)
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryInterval), maxRetries), ctx)
	text, err := backoff.RetryNotifyWithData(operation, policy, func(err error, wait time.Duration) {
		logger.Warn("llm.complete.retry", "error", err, "wait", wait)
	})
	if err != nil {
		logger.Warn("llm.complete.unavailable", "error", err, "attempts", attempt)
		return "", unavailable(err, attempt)
	}
	return text, nil
}

func (c *Client) attempt(ctx context.Context, request openai.ChatCompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, request)
	if err != nil {
		if isTransient(err) {
			return "", goerrors.WrapRetryable(err, goerrors.CategoryExternal, "completion attempt failed")
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: response has no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("llm: empty completion")
	}
	return text, nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return false
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func unavailable(cause error, attempts int) error {
	return goerrors.Wrap(fmt.Errorf("%w: %v", ErrUnavailable, cause), goerrors.CategoryExternal, "generative text service unavailable").
		WithTextCode(TextCodeUnavailable).
		WithSeverity(goerrors.SeverityWarning).
		WithMetadata(map[string]any{"attempts": attempts})
}

// Disabled is the generator used when no service is configured.
type Disabled struct{}

// Complete always reports the service as unavailable.
func (Disabled) Complete(context.Context, interfaces.CompletionRequest) (string, error) {
	return "", unavailable(errors.New("generator not configured"), 0)
}
