// Package llmcall records every AI provider call for traceability.
// Each record links a response to the prompt key and prompt hash that
// produced it, along with timing and token usage.
package llmcall

import (
	"time"

	"github.com/google/uuid"

	"github.com/ssvibitha/Health-report-to-recipes/internal/providers"
)

// Call represents a recorded LLM API call.
type Call struct {
	ID string `json:"id" yaml:"id"`

	// Timing
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	LatencyMs int       `json:"latency_ms" yaml:"latency_ms"`

	// Context references
	SessionID string `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Username  string `json:"username,omitempty" yaml:"username,omitempty"`
	Source    string `json:"source,omitempty" yaml:"source,omitempty"` // uploaded file name

	// Prompt traceability
	PromptKey  string `json:"prompt_key" yaml:"prompt_key"`
	PromptHash string `json:"prompt_hash,omitempty" yaml:"prompt_hash,omitempty"`

	// Model info
	Provider    string   `json:"provider" yaml:"provider"`
	Model       string   `json:"model" yaml:"model"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Attempts    int      `json:"attempts" yaml:"attempts"`

	// Token usage
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`

	Response string `json:"response" yaml:"response"`

	// Status
	Success bool   `json:"success" yaml:"success"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RecordOptions provides context for recording an LLM call.
type RecordOptions struct {
	SessionID string
	Username  string
	Source    string

	// Prompt identification (required for traceability)
	PromptKey  string
	PromptHash string

	// Pointer distinguishes "not set" from "set to 0".
	Temperature *float64

	// Err overrides the result's error message, e.g. when the response
	// arrived but failed extraction.
	Err error
}

// FromChatResult creates a Call from a ChatResult. Returns nil if result is nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}

	call := &Call{
		ID:           uuid.New().String(),
		Timestamp:    time.Now(),
		LatencyMs:    int(result.ExecutionTime.Milliseconds()),
		SessionID:    opts.SessionID,
		Username:     opts.Username,
		Source:       opts.Source,
		PromptKey:    opts.PromptKey,
		PromptHash:   opts.PromptHash,
		Provider:     result.Provider,
		Model:        result.ModelUsed,
		Temperature:  opts.Temperature,
		Attempts:     result.Attempts,
		InputTokens:  result.PromptTokens,
		OutputTokens: result.CompletionTokens,
		Response:     result.Content,
		Success:      result.Success,
	}

	if !result.Success {
		call.Error = result.ErrorMessage
	}
	if opts.Err != nil {
		call.Success = false
		call.Error = opts.Err.Error()
	}
	return call
}
