package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.1-8b-instant"
)

var ErrEmptyResponse = errors.New("oracle returned no choices")

// Single-shot chat completion: one system instruction, one user prompt, one short text answer.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// if nil, an otelhttp-instrumented client is used
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Completer for any OpenAI-compatible chat completion API (Groq by default).
//
// Calls go through a circuit breaker, so a dead or rate-limiting provider fails fast instead of holding up the ingestion queue for a full deadline on every message.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

var _ Completer = (*OpenAIClient)(nil)

func NewOpenAIClient(cfg ClientConfig) *OpenAIClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "oracle")

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	} else {
		oc.HTTPClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	settings := gobreaker.Settings{
		Name:        "oracle",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("oracle circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(oc),
		model:   model,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			MaxTokens:   10,
			Temperature: 0.1,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, ErrEmptyResponse
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion (model=%s): %w", c.model, err)
	}
	return out.(string), nil
}
