package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/ssvibitha/Health-report-to-recipes/internal/document"
	"github.com/ssvibitha/Health-report-to-recipes/internal/extract"
	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts"
	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts/clinical"
	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts/repair"
	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts/report"
	"github.com/ssvibitha/Health-report-to-recipes/internal/providers"
)

// Messages written in place of a parsed report.
const (
	QuotaExceededMessage = "Quota exceeded. No API call made."
	InvalidJSONMessage   = "Invalid JSON returned by model"
)

// Analysis is the outcome of AnalyzeReport.
type Analysis struct {
	Record   extract.Record `json:"record" yaml:"record"`
	Raw      string         `json:"raw" yaml:"raw"`
	Notes    []string       `json:"notes,omitempty" yaml:"notes,omitempty"`
	CallIDs  []string       `json:"call_ids" yaml:"call_ids"`
	Attempts int            `json:"attempts" yaml:"attempts"`
}

// Profile decodes the record into its typed form.
func (a *Analysis) Profile() (*extract.Profile, error) {
	var p extract.Profile
	if err := a.Record.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AnalyzeReport extracts a clinical profile from doc.
//
// When the answer fails extraction the model is shown its own output and the
// problem, and asked again, up to the configured repair attempts. On failure
// the returned Analysis still carries the last raw answer.
func (a *Analyzer) AnalyzeReport(ctx context.Context, doc *document.Document) (*Analysis, error) {
	if doc == nil || doc.Text == "" {
		return nil, ErrEmptyDocument
	}

	p, err := a.prompts.Resolve(clinical.PromptKey)
	if err != nil {
		return nil, err
	}

	base := []providers.Message{
		providers.System(p.Text),
		providers.User(doc.Text),
	}
	return a.extractWithRepair(ctx, p, base, extract.ClinicalProfile)
}

func (a *Analyzer) extractWithRepair(ctx context.Context, p *prompts.ResolvedPrompt, base []providers.Message, schema *extract.Schema) (*Analysis, error) {
	analysis := &Analysis{}
	messages := base
	prompt := p

	err := retry.Do(
		func() error {
			analysis.Attempts++
			result, err := a.chat(ctx, messages, ExtractionTemperature)
			if err != nil {
				analysis.CallIDs = appendID(analysis.CallIDs, a.record(ctx, result, prompt, ExtractionTemperature, nil))
				return err
			}

			var notes []string
			rec, extractErr := extract.Extract(result.Content, schema, extract.WithMode(a.mode), extract.WithNotes(&notes))
			analysis.Raw = result.Content
			analysis.CallIDs = appendID(analysis.CallIDs, a.record(ctx, result, prompt, ExtractionTemperature, extractErr))
			if extractErr == nil {
				analysis.Record = rec
				analysis.Notes = notes
				return nil
			}

			repairText, rp, err := a.prompts.Render(repair.PromptKey, repair.NewData(schema.JSONSchemaText(), result.Content, extractErr))
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("%w (repair prompt unavailable: %v)", extractErr, err))
			}
			prompt = rp
			messages = append(append([]providers.Message{}, base...),
				providers.Assistant(result.Content),
				providers.User(repairText),
			)
			return extractErr
		},
		retry.Context(ctx),
		retry.Attempts(uint(1+a.repairAttempts)),
		retry.Delay(a.repairDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return extract.KindOf(err) != 0
		}),
		retry.OnRetry(func(n uint, err error) {
			a.logger.Info("model answer failed extraction, asking for repair",
				"schema", schema.Name, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		if analysis.Raw == "" {
			return nil, fmt.Errorf("analyze report: %w", err)
		}
		return analysis, err
	}
	return analysis, nil
}

// ParseResult is the outcome of ParseReport. Output is always set: the
// validated record, the model's raw JSON object when it failed validation, or
// an {"error": ...} object.
type ParseResult struct {
	Output   map[string]any `json:"output" yaml:"output"`
	Valid    bool           `json:"valid" yaml:"valid"`
	Raw      string         `json:"raw,omitempty" yaml:"raw,omitempty"`
	Notes    []string       `json:"notes,omitempty" yaml:"notes,omitempty"`
	CallID   string         `json:"call_id,omitempty" yaml:"call_id,omitempty"`
	Duration time.Duration  `json:"duration" yaml:"duration"`
}

// ParseReport converts doc into the medical report schema. Quota exhaustion
// and unusable answers are reported in Output rather than as errors; other
// provider failures are returned.
func (a *Analyzer) ParseReport(ctx context.Context, doc *document.Document) (*ParseResult, error) {
	if doc == nil || doc.Text == "" {
		return nil, ErrEmptyDocument
	}
	start := time.Now()

	p, err := a.prompts.Resolve(report.PromptKey)
	if err != nil {
		return nil, err
	}

	messages := []providers.Message{
		providers.System(p.Text),
		providers.User(doc.Text),
	}
	result, err := a.chat(ctx, messages, ExtractionTemperature)
	if err != nil {
		callID := a.record(ctx, result, p, ExtractionTemperature, nil)
		if errors.Is(err, providers.ErrQuotaExceeded) {
			return &ParseResult{
				Output:   errorOutput(QuotaExceededMessage),
				CallID:   callID,
				Duration: time.Since(start),
			}, nil
		}
		return nil, fmt.Errorf("parse report: %w", err)
	}

	res := &ParseResult{Raw: result.Content}
	rec, extractErr := extract.Extract(result.Content, extract.MedicalReport, extract.WithMode(a.mode), extract.WithNotes(&res.Notes))
	res.CallID = a.record(ctx, result, p, ExtractionTemperature, extractErr)

	switch {
	case extractErr == nil:
		res.Output = map[string]any(rec)
		res.Valid = true
	default:
		a.logger.Warn("report failed validation", "error", extractErr)
		if obj, err := extract.ExtractObject(result.Content); err == nil {
			res.Output = obj
		} else {
			res.Output = errorOutput(InvalidJSONMessage)
		}
	}
	res.Duration = time.Since(start)
	return res, nil
}

func errorOutput(msg string) map[string]any {
	return map[string]any{"error": msg}
}

func appendID(ids []string, id string) []string {
	if id == "" {
		return ids
	}
	return append(ids, id)
}
