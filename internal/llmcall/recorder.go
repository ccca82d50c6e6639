package llmcall

import (
	"log/slog"

	"github.com/ssvibitha/Health-report-to-recipes/internal/providers"
)

// Recorder turns chat results into stored Calls. A nil Recorder or one
// without a store discards calls.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder creates a new LLM call recorder.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger}
}

// Record captures an LLM call and returns its ID, or "" if nothing was recorded.
func (r *Recorder) Record(result *providers.ChatResult, opts RecordOptions) string {
	if r == nil || r.store == nil {
		return ""
	}
	call := FromChatResult(result, opts)
	if call == nil {
		return ""
	}
	r.store.Add(call)
	r.logger.Debug("recorded llm call",
		"id", call.ID,
		"prompt_key", call.PromptKey,
		"provider", call.Provider,
		"success", call.Success,
		"latency_ms", call.LatencyMs)
	return call.ID
}

// Store returns the underlying store.
func (r *Recorder) Store() *Store {
	if r == nil {
		return nil
	}
	return r.store
}
