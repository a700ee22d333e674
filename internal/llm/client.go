// Package llm wraps the external LLM classifier endpoint behind the small
// interface the scoring package consumes. Calls carry a bounded timeout and
// are rate limited; retries are the caller's responsibility via the retry
// package.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"golang.org/x/time/rate"

	"github.com/opinionbalance/balancer/internal/logging"
)

// ErrUnavailable indicates the classifier endpoint is unreachable or
// returned an unusable response.
var ErrUnavailable = errors.New("classifier unavailable")

// Low temperature keeps the two-number classification output stable.
const classifyTemperature = 0.1

const (
	defaultTimeout = 30 * time.Second
	defaultRPS     = 5
	defaultBurst   = 5
)

// Config holds classifier client settings.
type Config struct {
	// BaseURL overrides the API endpoint (empty uses the provider default).
	BaseURL string `env:"CLASSIFIER_BASE_URL" yaml:"base_url"`
	// APIKey authenticates requests.
	APIKey string `env:"CLASSIFIER_API_KEY" yaml:"api_key"`
	// Model is the classifier model name.
	Model string `env:"CLASSIFIER_MODEL" yaml:"model"`
	// Timeout bounds each call.
	Timeout time.Duration `yaml:"timeout"`
	// RequestsPerSecond and Burst bound the call rate.
	RequestsPerSecond int `yaml:"requests_per_second"`
	Burst             int `yaml:"burst"`
}

// Client calls the LLM classifier.
type Client struct {
	api     openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	logger  logging.Logger
}

// NewClient creates a classifier client.
func NewClient(cfg Config, logger logging.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api:     openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger,
	}
}

// Classify sends one classification prompt and returns the raw text
// response.
func (c *Client) Classify(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(classifyTemperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	return resp.Choices[0].Message.Content, nil
}

// Health probes the classifier endpoint.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.api.Models.List(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}
