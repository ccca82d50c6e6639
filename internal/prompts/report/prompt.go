// Package report holds the prompt for the standalone medical report parser.
package report

import (
	_ "embed"

	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts"
)

//go:embed parse.tmpl
var parsePrompt string

// PromptKey is the key for this prompt.
const PromptKey = "report.parse"

// RegisterPrompts registers the report prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PromptKey,
		Text:        parsePrompt,
		Description: "Parses a lab report, prescription or clinical note into the medical report schema",
	})
}
