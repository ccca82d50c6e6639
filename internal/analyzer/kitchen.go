package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ssvibitha/Health-report-to-recipes/internal/document"
	"github.com/ssvibitha/Health-report-to-recipes/internal/extract"
	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts/kitchen"
	"github.com/ssvibitha/Health-report-to-recipes/internal/providers"
)

// Preference choices offered by the kitchen scanner.
var (
	Cuisines       = []string{"Indian", "Italian", "Mexican", "Mediterranean", "Asian", "American", "Middle Eastern", "French"}
	Meals          = []string{"Breakfast", "Lunch", "Dinner", "Snack", "Dessert"}
	DietaryOptions = []string{"Vegetarian", "Vegan", "Gluten-Free", "Dairy-Free", "Low-Carb", "Keto", "Nut-Free", "Low-Sodium"}
	CookingTimes   = []string{"15 mins", "30 mins", "45 mins", "1 hour", "1+ hours"}
)

// Recipe count bounds.
const (
	DefaultRecipeCount = 3
	MaxRecipeCount     = 15
)

// ErrNoImages is returned when SuggestRecipes gets no photos.
var ErrNoImages = errors.New("at least one kitchen photo is required")

// ErrInvalidPreference is returned for a preference outside the offered choices.
var ErrInvalidPreference = errors.New("invalid preference")

// Preferences are the user's choices for recipe suggestions.
type Preferences struct {
	Cuisines    []string `json:"cuisines" yaml:"cuisines"`
	Meal        string   `json:"meal" yaml:"meal"`
	Dietary     []string `json:"dietary" yaml:"dietary"`
	CookingTime string   `json:"cooking_time" yaml:"cooking_time"`
	RecipeCount int      `json:"recipe_count" yaml:"recipe_count"`
}

// DefaultPreferences mirrors the scanner's initial form state.
func DefaultPreferences() Preferences {
	return Preferences{
		Cuisines:    []string{"Indian"},
		Meal:        "Breakfast",
		Dietary:     []string{},
		CookingTime: "30 mins",
		RecipeCount: DefaultRecipeCount,
	}
}

// Normalize canonicalizes choices (case-insensitive) and fills defaults for
// empty scalar fields. Empty cuisine and dietary lists stay empty.
func (p Preferences) Normalize() (Preferences, error) {
	out := Preferences{RecipeCount: p.RecipeCount}
	defaults := DefaultPreferences()

	var err error
	if out.Cuisines, err = canonicalList("cuisine", p.Cuisines, Cuisines); err != nil {
		return p, err
	}
	if out.Dietary, err = canonicalList("dietary restriction", p.Dietary, DietaryOptions); err != nil {
		return p, err
	}

	out.Meal = defaults.Meal
	if strings.TrimSpace(p.Meal) != "" {
		if out.Meal, err = canonical("meal", p.Meal, Meals); err != nil {
			return p, err
		}
	}
	out.CookingTime = defaults.CookingTime
	if strings.TrimSpace(p.CookingTime) != "" {
		if out.CookingTime, err = canonical("cooking time", p.CookingTime, CookingTimes); err != nil {
			return p, err
		}
	}

	switch {
	case out.RecipeCount == 0:
		out.RecipeCount = DefaultRecipeCount
	case out.RecipeCount < 0 || out.RecipeCount > MaxRecipeCount:
		return p, fmt.Errorf("%w: recipe count must be between 1 and %d", ErrInvalidPreference, MaxRecipeCount)
	}
	return out, nil
}

func canonical(what, v string, choices []string) (string, error) {
	v = strings.TrimSpace(v)
	for _, c := range choices {
		if strings.EqualFold(c, v) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown %s %q", ErrInvalidPreference, what, v)
}

func canonicalList(what string, vs, choices []string) ([]string, error) {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if strings.TrimSpace(v) == "" {
			continue
		}
		c, err := canonical(what, v, choices)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Recipes is the outcome of SuggestRecipes.
type Recipes struct {
	Content     string      `json:"content" yaml:"content"`
	Preferences Preferences `json:"preferences" yaml:"preferences"`
	CallID      string      `json:"call_id,omitempty" yaml:"call_id,omitempty"`
	Personal    bool        `json:"personalized" yaml:"personalized"`
}

// SuggestRecipes sends the kitchen photos with the health profile and
// preferences and returns the model's markdown answer. A nil profile yields
// generic suggestions.
func (a *Analyzer) SuggestRecipes(ctx context.Context, images []document.Image, prefs Preferences, profile extract.Record) (*Recipes, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	prefs, err := prefs.Normalize()
	if err != nil {
		return nil, err
	}

	profileJSON := []byte("{}")
	if profile != nil {
		if profileJSON, err = json.Marshal(profile); err != nil {
			return nil, fmt.Errorf("encode profile: %w", err)
		}
	}

	text, p, err := a.prompts.Render(kitchen.PromptKey, kitchen.Data{
		Profile:     string(profileJSON),
		Dietary:     joinOr(prefs.Dietary, "None"),
		Cuisines:    joinOr(prefs.Cuisines, "Any"),
		Meal:        prefs.Meal,
		CookingTime: prefs.CookingTime,
		RecipeCount: prefs.RecipeCount,
	})
	if err != nil {
		return nil, err
	}

	attachments := make([]providers.Image, len(images))
	for i, img := range images {
		attachments[i] = providers.Image{MIMEType: img.MIMEType, Data: img.Data}
	}

	result, err := a.chat(ctx, []providers.Message{providers.User(text, attachments...)}, 0)
	callID := a.record(ctx, result, p, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("suggest recipes: %w", err)
	}
	if strings.TrimSpace(result.Content) == "" {
		return nil, errors.New("suggest recipes: model returned an empty answer")
	}

	return &Recipes{
		Content:     result.Content,
		Preferences: prefs,
		CallID:      callID,
		Personal:    profile != nil,
	}, nil
}

func joinOr(vs []string, fallback string) string {
	if len(vs) == 0 {
		return fallback
	}
	return strings.Join(vs, ", ")
}
