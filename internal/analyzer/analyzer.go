// Package analyzer runs the AI steps of HELIOS: turning a medical report into
// a clinical profile, parsing a report into the medical report schema, and
// suggesting recipes from kitchen photos.
package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ssvibitha/Health-report-to-recipes/internal/extract"
	"github.com/ssvibitha/Health-report-to-recipes/internal/llmcall"
	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts"
	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts/clinical"
	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts/kitchen"
	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts/repair"
	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts/report"
	"github.com/ssvibitha/Health-report-to-recipes/internal/providers"
)

// ExtractionTemperature is used for every call whose answer must be JSON.
const ExtractionTemperature = 0.1

// DefaultRepairAttempts is the number of follow-up calls made after an
// answer fails extraction.
const DefaultRepairAttempts = 1

// ErrNoClient is returned by New when no LLM client is configured.
var ErrNoClient = errors.New("no LLM client configured")

// ErrEmptyDocument is returned when a document carries no text.
var ErrEmptyDocument = errors.New("document has no text")

// Config configures an Analyzer.
type Config struct {
	Client   providers.LLMClient
	Prompts  *prompts.Resolver // nil uses embedded prompts only
	Recorder *llmcall.Recorder // nil discards call records
	Logger   *slog.Logger

	Mode           extract.Mode
	RepairAttempts int           // negative disables repair
	RepairDelay    time.Duration // pause between repair attempts

	Model     string // empty uses the client default
	MaxTokens int
}

// Analyzer sends prompts to an LLM and extracts structured answers.
type Analyzer struct {
	client   providers.LLMClient
	prompts  *prompts.Resolver
	recorder *llmcall.Recorder
	logger   *slog.Logger

	mode           extract.Mode
	repairAttempts int
	repairDelay    time.Duration
	model          string
	maxTokens      int
}

// New creates an Analyzer.
func New(cfg Config) (*Analyzer, error) {
	if cfg.Client == nil {
		return nil, ErrNoClient
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Prompts == nil {
		cfg.Prompts = prompts.NewResolver(nil, cfg.Logger)
		RegisterPrompts(cfg.Prompts)
	}
	if cfg.RepairAttempts == 0 {
		cfg.RepairAttempts = DefaultRepairAttempts
	}
	if cfg.RepairAttempts < 0 {
		cfg.RepairAttempts = 0
	}
	if cfg.RepairDelay <= 0 {
		cfg.RepairDelay = 200 * time.Millisecond
	}

	return &Analyzer{
		client:         cfg.Client,
		prompts:        cfg.Prompts,
		recorder:       cfg.Recorder,
		logger:         cfg.Logger,
		mode:           cfg.Mode,
		repairAttempts: cfg.RepairAttempts,
		repairDelay:    cfg.RepairDelay,
		model:          cfg.Model,
		maxTokens:      cfg.MaxTokens,
	}, nil
}

// RegisterPrompts registers every prompt the analyzer uses.
func RegisterPrompts(r *prompts.Resolver) {
	clinical.RegisterPrompts(r)
	report.RegisterPrompts(r)
	kitchen.RegisterPrompts(r)
	repair.RegisterPrompts(r)
}

// Client returns the LLM client in use.
func (a *Analyzer) Client() providers.LLMClient {
	return a.client
}

// Mode returns the extraction mode.
func (a *Analyzer) Mode() extract.Mode {
	return a.mode
}

// Caller identifies who a call is made for. It only feeds the call log.
type Caller struct {
	SessionID string
	Username  string
	Source    string
}

type callerKey struct{}

// WithCaller returns a context carrying c.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller carried by ctx, if any.
func CallerFrom(ctx context.Context) Caller {
	c, _ := ctx.Value(callerKey{}).(Caller)
	return c
}

// chat sends messages to the client. Callers record the result.
func (a *Analyzer) chat(ctx context.Context, messages []providers.Message, temperature float64) (*providers.ChatResult, error) {
	req := &providers.ChatRequest{
		Messages:    messages,
		Model:       a.model,
		Temperature: temperature,
		MaxTokens:   a.maxTokens,
		RequestID:   uuid.New().String(),
	}
	result, err := a.client.Chat(ctx, req)
	if err != nil {
		a.logger.Warn("llm call failed", "provider", a.client.Name(), "error", err)
	}
	return result, err
}

func (a *Analyzer) record(ctx context.Context, result *providers.ChatResult, p *prompts.ResolvedPrompt, temperature float64, err error) string {
	caller := CallerFrom(ctx)
	opts := llmcall.RecordOptions{
		SessionID: caller.SessionID,
		Username:  caller.Username,
		Source:    caller.Source,
		Err:       err,
	}
	if p != nil {
		opts.PromptKey = p.Key
		opts.PromptHash = p.Hash
	}
	if temperature > 0 {
		opts.Temperature = &temperature
	}
	return a.recorder.Record(result, opts)
}
