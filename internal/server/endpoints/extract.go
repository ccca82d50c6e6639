package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
	"github.com/ssvibitha/Health-report-to-recipes/internal/extract"
	"github.com/ssvibitha/Health-report-to-recipes/internal/svcctx"
)

// ExtractRequest is raw model output to run through the extractor.
type ExtractRequest struct {
	Raw    string `json:"raw"`
	Schema string `json:"schema,omitempty"` // default clinical_profile
	Strict *bool  `json:"strict,omitempty"` // default from config
}

// ExtractResponse is the normalized record.
type ExtractResponse struct {
	Schema string         `json:"schema"`
	Mode   string         `json:"mode"`
	Record extract.Record `json:"record"`
	Notes  []string       `json:"notes,omitempty"`
}

// ExtractEndpoint handles POST /api/extract.
type ExtractEndpoint struct{}

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/extract", e.handler
}

func (e *ExtractEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Extract a record from model output
//	@Description	Strip fences, locate the first JSON object and normalize it against a built-in schema. No AI call is made.
//	@Tags			extract
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ExtractRequest	true	"Raw text and schema"
//	@Success		200		{object}	ExtractResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/api/extract [post]
func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := req.Schema
	if name == "" {
		name = extract.ClinicalProfile.Name
	}
	schema, ok := extract.Lookup(name)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown schema %q (available: %s)", name, strings.Join(extract.SchemaNames(), ", ")))
		return
	}

	mode := svcctx.ConfigFrom(r.Context()).ExtractionMode()
	if req.Strict != nil {
		mode = extract.Permissive
		if *req.Strict {
			mode = extract.Strict
		}
	}

	var notes []string
	rec, err := extract.Extract(req.Raw, schema, extract.WithMode(mode), extract.WithNotes(&notes))
	if err != nil {
		writeAIError(w, err, req.Raw)
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{
		Schema: schema.Name,
		Mode:   mode.String(),
		Record: rec,
		Notes:  notes,
	})
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var schema string
	var strict bool
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Run the extractor on raw model output (file or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if len(args) == 0 || args[0] == "-" {
				raw, err = io.ReadAll(os.Stdin)
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}

			req := ExtractRequest{Raw: string(raw), Schema: schema}
			if cmd.Flags().Changed("strict") {
				req.Strict = &strict
			}

			client := api.NewClient(getServerURL())
			var resp ExtractResponse
			if err := client.Post(cmd.Context(), "/api/extract", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "", "Schema name (clinical_profile, medical_report)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject values that do not match the schema")
	return cmd
}
