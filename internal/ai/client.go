package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// ErrGenerationFailed wraps any provider-side failure of a text generation
// call, including exhausted retries.
var ErrGenerationFailed = errors.New("AI text generation failed")

var (
	generationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_generation_requests_total",
			Help: "Total number of AI text generation requests.",
		},
		[]string{"model", "status"},
	)
	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_generation_duration_seconds",
			Help:    "Latency of AI text generation requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)
	generationTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_generation_tokens",
			Help:    "Token usage per AI text generation request.",
			Buckets: prometheus.ExponentialBuckets(64, 2, 10),
		},
		[]string{"model", "kind"},
	)
)

// GenerationParams are optional sampling overrides. Nil fields keep the
// provider defaults.
type GenerationParams struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64
}

// UsageInfo reports token consumption of a single generation call. Providers
// that do not report usage leave it zeroed.
type UsageInfo struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client generates text from an LLM provider.
type Client interface {
	GenerateText(ctx context.Context, systemPrompt, userInput string, params GenerationParams) (string, UsageInfo, error)
}

// ProviderConfig selects and tunes a concrete provider client.
type ProviderConfig struct {
	Provider    string // openrouter (default), openai, google, ollama
	Model       string
	BaseURL     string // optional override; each provider has a sensible default
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

const (
	openRouterBaseURL   = "https://openrouter.ai/api/v1"
	googleCompatBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	ollamaDefaultURL    = "http://localhost:11434"

	defaultMaxAttempts = 3
	defaultRetryDelay  = 1 * time.Second
	defaultTimeout     = 120 * time.Second
)

// NewClient builds a provider client for the given configuration. OpenRouter,
// OpenAI and Google all speak the OpenAI-compatible chat API; Ollama uses its
// native client.
func NewClient(cfg ProviderConfig) (Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("AI model is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}

	switch strings.ToLower(cfg.Provider) {
	case "", "openrouter":
		return newOpenAIClient(cfg, openRouterBaseURL)
	case "openai":
		return newOpenAIClient(cfg, "")
	case "google":
		return newOpenAIClient(cfg, googleCompatBaseURL)
	case "ollama":
		return newOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

type openAIClient struct {
	client      *openai.Client
	model       string
	maxAttempts int
	retryDelay  time.Duration
}

func newOpenAIClient(cfg ProviderConfig, defaultBaseURL string) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for provider %q", cfg.Provider)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &openAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
	}, nil
}

func (c *openAIClient) GenerateText(ctx context.Context, systemPrompt, userInput string, params GenerationParams) (string, UsageInfo, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userInput},
		},
	}
	if params.Temperature != nil {
		req.Temperature = float32(*params.Temperature)
	}
	if params.MaxTokens != nil {
		req.MaxTokens = *params.MaxTokens
	}
	if params.TopP != nil {
		req.TopP = float32(*params.TopP)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		start := time.Now()
		resp, err := c.client.CreateChatCompletion(ctx, req)
		generationDuration.WithLabelValues(c.model).Observe(time.Since(start).Seconds())

		if err != nil {
			generationRequestsTotal.WithLabelValues(c.model, "error").Inc()
			lastErr = err
			log.Warn().Err(err).Int("attempt", attempt).Str("model", c.model).Msg("AI generation attempt failed")
			if attempt < c.maxAttempts {
				select {
				case <-ctx.Done():
					return "", UsageInfo{}, fmt.Errorf("%w: %v", ErrGenerationFailed, ctx.Err())
				case <-time.After(c.retryDelay * time.Duration(attempt)):
				}
			}
			continue
		}

		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			generationRequestsTotal.WithLabelValues(c.model, "empty").Inc()
			lastErr = fmt.Errorf("empty completion from model %s", c.model)
			continue
		}

		usage := UsageInfo{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
		generationRequestsTotal.WithLabelValues(c.model, "success").Inc()
		generationTokens.WithLabelValues(c.model, "prompt").Observe(float64(usage.PromptTokens))
		generationTokens.WithLabelValues(c.model, "completion").Observe(float64(usage.CompletionTokens))
		return resp.Choices[0].Message.Content, usage, nil
	}

	return "", UsageInfo{}, fmt.Errorf("%w after %d attempts: %v", ErrGenerationFailed, c.maxAttempts, lastErr)
}

type ollamaClient struct {
	client *api.Client
	model  string
}

func newOllamaClient(cfg ProviderConfig) (*ollamaClient, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = ollamaDefaultURL
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL %q: %w", baseURL, err)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &ollamaClient{
		client: api.NewClient(parsedURL, httpClient),
		model:  cfg.Model,
	}, nil
}

func (c *ollamaClient) GenerateText(ctx context.Context, systemPrompt, userInput string, params GenerationParams) (string, UsageInfo, error) {
	stream := false
	options := map[string]interface{}{}
	if params.Temperature != nil {
		options["temperature"] = *params.Temperature
	}
	if params.MaxTokens != nil {
		options["num_predict"] = *params.MaxTokens
	}
	if params.TopP != nil {
		options["top_p"] = *params.TopP
	}

	req := &api.GenerateRequest{
		Model:   c.model,
		System:  systemPrompt,
		Prompt:  userInput,
		Stream:  &stream,
		Options: options,
	}

	start := time.Now()
	var output strings.Builder
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		output.WriteString(resp.Response)
		return nil
	})
	generationDuration.WithLabelValues(c.model).Observe(time.Since(start).Seconds())

	if err != nil {
		generationRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", UsageInfo{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if output.Len() == 0 {
		generationRequestsTotal.WithLabelValues(c.model, "empty").Inc()
		return "", UsageInfo{}, fmt.Errorf("%w: empty response from model %s", ErrGenerationFailed, c.model)
	}

	generationRequestsTotal.WithLabelValues(c.model, "success").Inc()
	return output.String(), UsageInfo{}, nil
}
