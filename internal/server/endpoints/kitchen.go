package endpoints

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ssvibitha/Health-report-to-recipes/internal/analyzer"
	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
	"github.com/ssvibitha/Health-report-to-recipes/internal/document"
	"github.com/ssvibitha/Health-report-to-recipes/internal/session"
	"github.com/ssvibitha/Health-report-to-recipes/internal/svcctx"
)

// KitchenOptionsResponse lists the preference choices.
type KitchenOptionsResponse struct {
	Cuisines       []string             `json:"cuisines"`
	Meals          []string             `json:"meals"`
	DietaryOptions []string             `json:"dietary_options"`
	CookingTimes   []string             `json:"cooking_times"`
	MaxRecipes     int                  `json:"max_recipes"`
	Defaults       analyzer.Preferences `json:"defaults"`
}

// KitchenOptionsEndpoint handles GET /api/kitchen/options.
type KitchenOptionsEndpoint struct{}

func (e *KitchenOptionsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/kitchen/options", e.handler
}

func (e *KitchenOptionsEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary	List recipe preference choices
//	@Tags		kitchen
//	@Produce	json
//	@Success	200	{object}	KitchenOptionsResponse
//	@Router		/api/kitchen/options [get]
func (e *KitchenOptionsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, KitchenOptionsResponse{
		Cuisines:       analyzer.Cuisines,
		Meals:          analyzer.Meals,
		DietaryOptions: analyzer.DietaryOptions,
		CookingTimes:   analyzer.CookingTimes,
		MaxRecipes:     analyzer.MaxRecipeCount,
		Defaults:       analyzer.DefaultPreferences(),
	})
}

func (e *KitchenOptionsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List recipe preference choices",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp KitchenOptionsResponse
			if err := client.Get(cmd.Context(), "/api/kitchen/options", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// RecipesResponse is a recipe suggestion and its history entry.
type RecipesResponse struct {
	Recipes *analyzer.Recipes   `json:"recipes"`
	Entry   session.RecipeEntry `json:"entry"`
	Stats   session.Stats       `json:"stats"`
}

// SuggestRecipesEndpoint handles POST /api/kitchen/recipes.
type SuggestRecipesEndpoint struct{}

func (e *SuggestRecipesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/kitchen/recipes", e.handler
}

func (e *SuggestRecipesEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Suggest recipes from kitchen photos
//	@Description	Detect ingredients in the photos and suggest recipes personalised to the active health profile
//	@Tags			kitchen
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			images			formData	file	true	"Kitchen photos (jpg, jpeg, png); repeat for several"
//	@Param			cuisine			formData	string	false	"Cuisine; repeat for several"
//	@Param			meal			formData	string	false	"Meal type"
//	@Param			dietary			formData	string	false	"Dietary restriction; repeat for several"
//	@Param			cooking_time	formData	string	false	"Cooking time"
//	@Param			recipe_count	formData	int		false	"Number of recipes (1-15)"
//	@Success		200				{object}	RecipesResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		401				{object}	ErrorResponse
//	@Failure		429				{object}	ErrorResponse
//	@Failure		502				{object}	ErrorResponse
//	@Failure		503				{object}	ErrorResponse
//	@Router			/api/kitchen/recipes [post]
func (e *SuggestRecipesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	form := r.MultipartForm
	var images []document.Image
	for _, fh := range form.File["images"] {
		data, err := readFile(fh)
		if err != nil {
			writeAIError(w, err, "")
			return
		}
		img, err := document.LoadImage(fh.Filename, data)
		if err != nil {
			writeAIError(w, err, "")
			return
		}
		images = append(images, img)
	}
	if len(images) == 0 {
		writeAIError(w, analyzer.ErrNoImages, "")
		return
	}

	prefs := analyzer.Preferences{
		Cuisines:    form.Value["cuisine"],
		Meal:        r.FormValue("meal"),
		Dietary:     form.Value["dietary"],
		CookingTime: r.FormValue("cooking_time"),
	}
	if v := r.FormValue("recipe_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid recipe_count: %q must be an integer", v))
			return
		}
		prefs.RecipeCount = n
	}

	ctx, cancel := aiContext(r, sess, "kitchen")
	defer cancel()

	a, err := newAnalyzer(ctx)
	if err != nil {
		writeAIError(w, err, "")
		return
	}

	recipes, err := a.SuggestRecipes(ctx, images, prefs, sess.Profile())
	if err != nil {
		svcctx.LoggerFrom(ctx).Warn("recipe suggestion failed", "session_id", sess.ID, "error", err)
		writeAIError(w, err, "")
		return
	}

	entry := sess.AddRecipe(recipes.Preferences.Meal, recipes.Preferences.Cuisines, recipes.Content, len(images))
	writeJSON(w, http.StatusOK, RecipesResponse{
		Recipes: recipes,
		Entry:   entry,
		Stats:   sess.Stats(),
	})
}

func (e *SuggestRecipesEndpoint) Command(getServerURL func() string) *cobra.Command {
	var cuisines, dietary []string
	var meal, cookingTime string
	var count int
	cmd := &cobra.Command{
		Use:   "recipes <photo>...",
		Short: "Suggest recipes from kitchen photos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := make([]api.FilePart, len(args))
			for i, path := range args {
				files[i] = api.FilePart{Field: "images", Path: path}
			}
			fields := map[string][]string{
				"cuisine": cuisines,
				"dietary": dietary,
			}
			if meal != "" {
				fields["meal"] = []string{meal}
			}
			if cookingTime != "" {
				fields["cooking_time"] = []string{cookingTime}
			}
			if count > 0 {
				fields["recipe_count"] = []string{strconv.Itoa(count)}
			}

			client := api.NewClient(getServerURL())
			var resp RecipesResponse
			if err := client.PostMultipart(cmd.Context(), "/api/kitchen/recipes", fields, files, &resp); err != nil {
				return err
			}
			if api.JSONOutput() {
				return api.Output(resp)
			}
			fmt.Println(resp.Recipes.Content)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&cuisines, "cuisine", nil, "Cuisine (repeatable)")
	cmd.Flags().StringSliceVar(&dietary, "dietary", nil, "Dietary restriction (repeatable)")
	cmd.Flags().StringVar(&meal, "meal", "", "Meal type (default Breakfast)")
	cmd.Flags().StringVar(&cookingTime, "cooking-time", "", "Cooking time (default 30 mins)")
	cmd.Flags().IntVar(&count, "count", 0, "Number of recipes (default 3)")
	return cmd
}
