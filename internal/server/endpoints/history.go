package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
	"github.com/ssvibitha/Health-report-to-recipes/internal/session"
)

// ReportHistoryResponse lists analyzed reports, oldest first.
type ReportHistoryResponse struct {
	Reports []session.ReportEntry `json:"reports"`
	Total   int                   `json:"total"`
}

// RecipeHistoryResponse lists recipe suggestions, oldest first.
type RecipeHistoryResponse struct {
	Recipes []session.RecipeEntry `json:"recipes"`
	Total   int                   `json:"total"`
}

// TrendsResponse lists lab marker trends across the report history.
type TrendsResponse struct {
	Trends []session.Trend `json:"trends"`
}

// ClearResponse confirms a history was cleared.
type ClearResponse struct {
	Cleared string        `json:"cleared"`
	Stats   session.Stats `json:"stats"`
}

// ReportHistoryEndpoint handles GET /api/history/reports.
type ReportHistoryEndpoint struct{}

func (e *ReportHistoryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/history/reports", e.handler
}

func (e *ReportHistoryEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary	List analyzed reports
//	@Tags		history
//	@Produce	json
//	@Success	200	{object}	ReportHistoryResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/api/history/reports [get]
func (e *ReportHistoryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	reports := sess.Reports()
	writeJSON(w, http.StatusOK, ReportHistoryResponse{Reports: reports, Total: len(reports)})
}

func (e *ReportHistoryEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List analyzed reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ReportHistoryResponse
			if err := client.Get(cmd.Context(), "/api/history/reports", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ClearReportHistoryEndpoint handles DELETE /api/history/reports.
type ClearReportHistoryEndpoint struct{}

func (e *ClearReportHistoryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/history/reports", e.handler
}

func (e *ClearReportHistoryEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Clear report history
//	@Description	Also clears the active profile derived from it
//	@Tags			history
//	@Produce		json
//	@Success		200	{object}	ClearResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/api/history/reports [delete]
func (e *ClearReportHistoryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	sess.ClearReports()
	writeJSON(w, http.StatusOK, ClearResponse{Cleared: session.ExportReports, Stats: sess.Stats()})
}

func (e *ClearReportHistoryEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-reports",
		Short: "Clear report history and the active profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/history/reports"); err != nil {
				return err
			}
			fmt.Println("Report history cleared")
			return nil
		},
	}
}

// RecipeHistoryEndpoint handles GET /api/history/recipes.
type RecipeHistoryEndpoint struct{}

func (e *RecipeHistoryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/history/recipes", e.handler
}

func (e *RecipeHistoryEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary	List recipe suggestions
//	@Tags		history
//	@Produce	json
//	@Success	200	{object}	RecipeHistoryResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/api/history/recipes [get]
func (e *RecipeHistoryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	recipes := sess.Recipes()
	writeJSON(w, http.StatusOK, RecipeHistoryResponse{Recipes: recipes, Total: len(recipes)})
}

func (e *RecipeHistoryEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List recipe suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp RecipeHistoryResponse
			if err := client.Get(cmd.Context(), "/api/history/recipes", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ClearRecipeHistoryEndpoint handles DELETE /api/history/recipes.
type ClearRecipeHistoryEndpoint struct{}

func (e *ClearRecipeHistoryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/history/recipes", e.handler
}

func (e *ClearRecipeHistoryEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary	Clear recipe history
//	@Tags		history
//	@Produce	json
//	@Success	200	{object}	ClearResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/api/history/recipes [delete]
func (e *ClearRecipeHistoryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	sess.ClearRecipes()
	writeJSON(w, http.StatusOK, ClearResponse{Cleared: session.ExportRecipes, Stats: sess.Stats()})
}

func (e *ClearRecipeHistoryEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-recipes",
		Short: "Clear recipe history",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/history/recipes"); err != nil {
				return err
			}
			fmt.Println("Recipe history cleared")
			return nil
		},
	}
}

// TrendsEndpoint handles GET /api/history/trends.
type TrendsEndpoint struct{}

func (e *TrendsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/history/trends", e.handler
}

func (e *TrendsEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Lab marker trends
//	@Description	Numeric series per lab marker across the report history, with change and direction
//	@Tags			history
//	@Produce		json
//	@Success		200	{object}	TrendsResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/api/history/trends [get]
func (e *TrendsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	trends := sess.Trends()
	if trends == nil {
		trends = []session.Trend{}
	}
	writeJSON(w, http.StatusOK, TrendsResponse{Trends: trends})
}

func (e *TrendsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "trends",
		Short: "Show lab marker trends",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp TrendsResponse
			if err := client.Get(cmd.Context(), "/api/history/trends", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ExportHistoryEndpoint handles GET /api/history/export.
type ExportHistoryEndpoint struct{}

func (e *ExportHistoryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/history/export", e.handler
}

func (e *ExportHistoryEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Download history as JSON
//	@Description	Attachment named medical_history_YYYYMMDD.json or recipe_history_YYYYMMDD.json
//	@Tags			history
//	@Produce		json
//	@Param			kind	query	string	true	"reports or recipes"
//	@Success		200	{file}	file
//	@Failure		400	{object}	ErrorResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/api/history/export [get]
func (e *ExportHistoryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	filename, data, err := sess.Export(r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (e *ExportHistoryEndpoint) Command(getServerURL func() string) *cobra.Command {
	var outFile string
	cmd := &cobra.Command{
		Use:       "export <reports|recipes>",
		Short:     "Download history as a JSON file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{session.ExportReports, session.ExportRecipes},
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			data, filename, err := client.Download(cmd.Context(), "/api/history/export?kind="+args[0])
			if err != nil {
				return err
			}
			if outFile != "" {
				filename = outFile
			}
			if filename == "" {
				return errors.New("server did not name the export; pass --file")
			}
			if err := os.WriteFile(filename, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", filename, err)
			}
			fmt.Printf("Wrote %s\n", filename)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outFile, "file", "f", "", "Output file (default: server-provided name)")
	return cmd
}
