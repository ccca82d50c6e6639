package providers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// LLMClient is the interface every chat completion backend implements.
type LLMClient interface {
	// Chat sends a chat completion request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g., "gemini").
	Name() string
}

// ErrQuotaExceeded is matched by errors.Is when the provider reports an
// exhausted quota or a rate limit that survived all retries.
var ErrQuotaExceeded = errors.New("quota exceeded")

// QuotaHint is shown to users when ErrQuotaExceeded is returned.
const QuotaHint = "API quota exceeded. Wait a minute and try again, or switch to a different model or API key."

// RateLimitError carries a 429 response. It matches ErrQuotaExceeded.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
	StatusCode int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
	}
	return e.Message
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// Image is an inline image attached to a user message.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURL returns the image as a base64 data URL.
func (img Image) DataURL() string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// Message represents a chat message.
type Message struct {
	Role    string  `json:"role"` // "system", "user", "assistant"
	Content string  `json:"content"`
	Images  []Image `json:"-"` // For vision models
}

// ChatRequest is a request to an LLM.
type ChatRequest struct {
	// Required
	Messages []Message `json:"messages"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// ChatResult is the complete response from an LLM call.
type ChatResult struct {
	Content string `json:"content"`

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	// Success/error
	Success      bool   `json:"success"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (r *ChatResult) fail(errType string, err error, start time.Time) {
	r.Success = false
	r.ErrorType = errType
	r.ErrorMessage = err.Error()
	r.ExecutionTime = time.Since(start)
}

// System builds a system message.
func System(content string) Message {
	return Message{Role: "system", Content: content}
}

// User builds a user message with optional images.
func User(content string, images ...Image) Message {
	return Message{Role: "user", Content: content, Images: images}
}

// Assistant builds an assistant message, used to replay a previous answer.
func Assistant(content string) Message {
	return Message{Role: "assistant", Content: content}
}
