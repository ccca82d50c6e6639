// Package kitchen holds the prompt that turns kitchen photos and a health
// profile into recipe suggestions.
package kitchen

import (
	_ "embed"

	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts"
)

//go:embed recipes.tmpl
var recipesPrompt string

// PromptKey is the key for this prompt.
const PromptKey = "kitchen.recipes"

// Data is the template input.
type Data struct {
	Profile     string // JSON health profile
	Dietary     string
	Cuisines    string
	Meal        string
	CookingTime string
	RecipeCount int
}

// RegisterPrompts registers the kitchen prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PromptKey,
		Text:        recipesPrompt,
		Description: "Detects ingredients in kitchen photos and suggests recipes suited to the health profile",
	})
}
