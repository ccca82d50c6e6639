// Package repair holds the follow-up prompt sent when a model answer fails
// extraction.
package repair

import (
	_ "embed"
	"strings"

	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts"
)

//go:embed repair.tmpl
var repairPrompt string

// PromptKey is the key for this prompt.
const PromptKey = "extract.repair"

// maxEcho bounds how much of the failed output is sent back.
const maxEcho = 12000

// Data is the template input.
type Data struct {
	Schema string
	Output string
	Issue  string
}

// NewData builds template input, truncating long outputs.
func NewData(schema, output string, issue error) Data {
	output = strings.TrimSpace(output)
	if len(output) > maxEcho {
		output = output[:maxEcho] + "\n...[truncated]"
	}
	d := Data{Schema: schema, Output: output}
	if issue != nil {
		d.Issue = issue.Error()
	}
	return d
}

// RegisterPrompts registers the repair prompt with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PromptKey,
		Text:        repairPrompt,
		Description: "Asks the model to resend valid JSON after an extraction failure",
	})
}
