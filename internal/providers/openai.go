package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	GeminiName    = "gemini"
	GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	GeminiModel   = "gemini-3-flash-preview"

	OpenAIName = "openai"
)

// OpenAIConfig holds configuration for any OpenAI-compatible chat endpoint.
type OpenAIConfig struct {
	Name         string // Client name; defaults to "gemini"
	APIKey       string
	BaseURL      string // Defaults to Gemini's OpenAI-compatible endpoint
	DefaultModel string
	RateLimit    int           // Requests per minute; 0 disables local limiting
	MaxRetries   int           // Retry attempts for SDK transport
	Timeout      time.Duration // HTTP timeout
	HTTPClient   *http.Client  // Optional (tests)
}

// OpenAIClient implements LLMClient using the official OpenAI SDK. It talks to
// Gemini by default and to OpenAI or any compatible server when BaseURL is set.
type OpenAIClient struct {
	name         string
	apiKey       string
	baseURL      string
	defaultModel string
	rateLimit    int
	maxRetries   int
	limiter      *RateLimiter
	client       openai.Client
}

// NewOpenAIClient creates a new client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Name == "" {
		cfg.Name = GeminiName
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = GeminiBaseURL
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = GeminiModel
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &OpenAIClient{
		name:         cfg.Name,
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		defaultModel: cfg.DefaultModel,
		rateLimit:    cfg.RateLimit,
		maxRetries:   cfg.MaxRetries,
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(cfg.MaxRetries),
		),
	}
	if cfg.RateLimit > 0 {
		c.limiter = NewRateLimiter(cfg.RateLimit)
	}
	return c
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return c.name
}

// Model returns the configured default model.
func (c *OpenAIClient) Model() string {
	return c.defaultModel
}

// Limiter returns the local rate limiter, or nil if none is configured.
func (c *OpenAIClient) Limiter() *RateLimiter {
	return c.limiter
}

// Chat sends a chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	result := &ChatResult{
		RequestID: requestID,
		Provider:  c.name,
		ModelUsed: model,
		Attempts:  1,
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			result.fail("context_cancelled", err, start)
			return result, err
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	for _, m := range req.Messages {
		params.Messages = append(params.Messages, toOpenAIMessage(m))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		err = c.mapError(err)
		errType := "http_error"
		if errors.Is(err, ErrQuotaExceeded) {
			errType = "quota_exceeded"
		}
		result.fail(errType, err, start)
		return result, err
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices in response")
		result.fail("empty_response", err, start)
		return result, err
	}

	result.Success = true
	result.Content = resp.Choices[0].Message.Content
	if resp.Model != "" {
		result.ModelUsed = resp.Model
	}
	result.PromptTokens = int(resp.Usage.PromptTokens)
	result.CompletionTokens = int(resp.Usage.CompletionTokens)
	result.TotalTokens = int(resp.Usage.TotalTokens)
	result.ExecutionTime = time.Since(start)
	return result, nil
}

func toOpenAIMessage(m Message) openai.ChatCompletionMessageParamUnion {
	switch m.Role {
	case "system":
		return openai.SystemMessage(m.Content)
	case "assistant":
		return openai.AssistantMessage(m.Content)
	}
	if len(m.Images) == 0 {
		return openai.UserMessage(m.Content)
	}
	parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(m.Content)}
	for _, img := range m.Images {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: img.DataURL(),
		}))
	}
	return openai.UserMessage(parts)
}

// mapError turns SDK errors into RateLimitError for quota exhaustion and
// adds the status code to everything else.
func (c *OpenAIClient) mapError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s request failed: %w", c.name, err)
	}

	if apiErr.StatusCode == http.StatusTooManyRequests || strings.Contains(apiErr.Error(), "RESOURCE_EXHAUSTED") {
		var retryAfter time.Duration
		if apiErr.Response != nil {
			retryAfter = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
		}
		if c.limiter != nil {
			c.limiter.Record429(retryAfter)
		}
		return &RateLimitError{
			Message:    fmt.Sprintf("%s quota exceeded: %s", c.name, apiErr.Message),
			RetryAfter: retryAfter,
			StatusCode: apiErr.StatusCode,
		}
	}
	if apiErr.Message != "" {
		return fmt.Errorf("%s error (status %d): %s", c.name, apiErr.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("%s error (status %d)", c.name, apiErr.StatusCode)
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

var _ LLMClient = (*OpenAIClient)(nil)
