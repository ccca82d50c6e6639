package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
	"github.com/ssvibitha/Health-report-to-recipes/internal/document"
	"github.com/ssvibitha/Health-report-to-recipes/internal/extract"
	"github.com/ssvibitha/Health-report-to-recipes/internal/session"
	"github.com/ssvibitha/Health-report-to-recipes/internal/svcctx"
)

// PreviewResponse describes an uploaded report before analysis.
type PreviewResponse struct {
	Document *document.Document `json:"document"`
	Preview  string             `json:"preview"`
}

// PreviewReportEndpoint handles POST /api/reports/preview.
type PreviewReportEndpoint struct{}

func (e *PreviewReportEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/reports/preview", e.handler
}

func (e *PreviewReportEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Preview a medical report
//	@Description	Extract the text of a PDF or TXT report and return the first 3000 characters
//	@Tags			reports
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Report (.pdf or .txt)"
//	@Success		200		{object}	PreviewResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		413		{object}	ErrorResponse
//	@Router			/api/reports/preview [post]
func (e *PreviewReportEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}
	doc, ok := readDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{Document: doc, Preview: doc.Preview()})
}

func (e *PreviewReportEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file>",
		Short: "Preview the extracted text of a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PreviewResponse
			files := []api.FilePart{{Field: "file", Path: args[0]}}
			if err := client.PostMultipart(cmd.Context(), "/api/reports/preview", nil, files, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// AnalyzeResponse is the clinical profile extracted from a report.
type AnalyzeResponse struct {
	Profile  extract.Record      `json:"profile"`
	Entry    session.ReportEntry `json:"entry"`
	Notes    []string            `json:"notes,omitempty"`
	CallIDs  []string            `json:"call_ids"`
	Attempts int                 `json:"attempts"`
	Stats    session.Stats       `json:"stats"`
}

// AnalyzeReportEndpoint handles POST /api/reports/analyze.
type AnalyzeReportEndpoint struct{}

func (e *AnalyzeReportEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/reports/analyze", e.handler
}

func (e *AnalyzeReportEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Analyze a medical report
//	@Description	Extract a clinical profile with the AI provider, make it the active profile and add it to the report history.
//	@Description	When the model answer cannot be extracted the response is 422 with the raw answer attached.
//	@Tags			reports
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Report (.pdf or .txt)"
//	@Success		200		{object}	AnalyzeResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		429		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/api/reports/analyze [post]
func (e *AnalyzeReportEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	doc, ok := readDocument(w, r)
	if !ok {
		return
	}

	ctx, cancel := aiContext(r, sess, "analyze")
	defer cancel()

	a, err := newAnalyzer(ctx)
	if err != nil {
		writeAIError(w, err, "")
		return
	}

	logger := svcctx.LoggerFrom(ctx)
	analysis, err := a.AnalyzeReport(ctx, doc)
	if err != nil {
		raw := ""
		if analysis != nil {
			raw = analysis.Raw
		}
		logger.Warn("report analysis failed", "file", doc.Name, "session_id", sess.ID, "error", err)
		writeAIError(w, err, raw)
		return
	}

	entry := sess.SetProfile(doc.Name, analysis.Record)
	logger.Info("report analyzed", "file", doc.Name, "session_id", sess.ID, "attempts", analysis.Attempts)

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Profile:  analysis.Record,
		Entry:    entry,
		Notes:    analysis.Notes,
		CallIDs:  analysis.CallIDs,
		Attempts: analysis.Attempts,
		Stats:    sess.Stats(),
	})
}

func (e *AnalyzeReportEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a report and make it the active health profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp AnalyzeResponse
			files := []api.FilePart{{Field: "file", Path: args[0]}}
			if err := client.PostMultipart(cmd.Context(), "/api/reports/analyze", nil, files, &resp); err != nil {
				return withRaw(err)
			}
			return api.Output(resp)
		},
	}
}
