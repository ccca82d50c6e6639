// Package clinical holds the prompt that turns a medical report into a
// clinical profile.
package clinical

import (
	_ "embed"

	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts"
)

//go:embed profile.tmpl
var profilePrompt string

// PromptKey is the key for this prompt.
const PromptKey = "clinical.profile"

// SystemPrompt returns the embedded default.
func SystemPrompt() string {
	return profilePrompt
}

// RegisterPrompts registers the clinical prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PromptKey,
		Text:        profilePrompt,
		Description: "Extracts conditions, lab markers, medications, allergies and dietary restrictions from a medical report",
	})
}
