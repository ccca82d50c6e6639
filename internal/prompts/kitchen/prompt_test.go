package kitchen

import (
	"strings"
	"testing"

	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts"
)

func TestRecipesPromptRenders(t *testing.T) {
	r := prompts.NewResolver(nil, nil)
	RegisterPrompts(r)

	text, _, err := r.Render(PromptKey, Data{
		Profile:     `{"conditions":["Type 2 diabetes"]}`,
		Dietary:     "Vegetarian",
		Cuisines:    "Indian, Italian",
		Meal:        "Dinner",
		CookingTime: "30 mins",
		RecipeCount: 3,
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{"Type 2 diabetes", "Vegetarian", "Indian, Italian", "Dinner", "30 mins", "PERSONALIZED RECIPES (3)", "ESSENTIAL"} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered prompt missing %q", want)
		}
	}
}
