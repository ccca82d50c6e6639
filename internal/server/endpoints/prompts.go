package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts"
	"github.com/ssvibitha/Health-report-to-recipes/internal/svcctx"
)

// PromptResponse represents a single prompt as it will be sent.
type PromptResponse struct {
	Key          string   `json:"key"`
	Text         string   `json:"text"`
	Description  string   `json:"description,omitempty"`
	Variables    []string `json:"variables,omitempty"`
	Hash         string   `json:"hash,omitempty"`
	EmbeddedHash string   `json:"embedded_hash,omitempty"`
	IsOverride   bool     `json:"is_override"`
}

// PromptsListResponse contains all prompts.
type PromptsListResponse struct {
	Prompts []PromptResponse `json:"prompts"`
}

// SetPromptRequest is the request body for a prompt override.
type SetPromptRequest struct {
	Text string `json:"text"`
}

func promptResponse(resolver *prompts.Resolver, embedded prompts.EmbeddedPrompt) PromptResponse {
	resp := PromptResponse{
		Key:          embedded.Key,
		Text:         embedded.Text,
		Description:  embedded.Description,
		Variables:    embedded.Variables,
		Hash:         embedded.Hash,
		EmbeddedHash: embedded.Hash,
	}
	if resolved, err := resolver.Resolve(embedded.Key); err == nil && resolved.IsOverride {
		resp.Text = resolved.Text
		resp.Variables = resolved.Variables
		resp.Hash = resolved.Hash
		resp.IsOverride = true
	}
	return resp
}

// ListPromptsEndpoint handles GET /api/prompts.
type ListPromptsEndpoint struct{}

func (e *ListPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts", e.handler
}

func (e *ListPromptsEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		List all prompts
//	@Description	Get all registered prompts with overrides applied
//	@Tags			prompts
//	@Produce		json
//	@Success		200	{object}	PromptsListResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/prompts [get]
func (e *ListPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resolver := svcctx.PromptsFrom(r.Context())
	if resolver == nil {
		writeError(w, http.StatusInternalServerError, "prompt resolver not available")
		return
	}

	embedded := resolver.AllEmbedded()
	resp := PromptsListResponse{
		Prompts: make([]PromptResponse, len(embedded)),
	}
	for i, p := range embedded {
		resp.Prompts[i] = promptResponse(resolver, p)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *ListPromptsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PromptsListResponse
			if err := client.Get(cmd.Context(), "/api/prompts", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetPromptEndpoint handles GET /api/prompts/{key}.
type GetPromptEndpoint struct{}

func (e *GetPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts/{key}", e.handler
}

func (e *GetPromptEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Get a prompt
//	@Description	Get a specific prompt by key
//	@Tags			prompts
//	@Produce		json
//	@Param			key	path		string	true	"Prompt key (e.g., kitchen.recipes)"
//	@Success		200	{object}	PromptResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/prompts/{key} [get]
func (e *GetPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resolver, embedded, ok := lookupPrompt(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, promptResponse(resolver, *embedded))
}

func (e *GetPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a prompt by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PromptResponse
			if err := client.Get(cmd.Context(), "/api/prompts/"+url.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// SetPromptEndpoint handles PUT /api/prompts/{key}.
type SetPromptEndpoint struct{}

func (e *SetPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/prompts/{key}", e.handler
}

func (e *SetPromptEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Override a prompt
//	@Description	Replace the embedded prompt text. The text must be a valid template.
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			key		path		string				true	"Prompt key"
//	@Param			request	body		SetPromptRequest	true	"Override text"
//	@Success		200		{object}	PromptResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/prompts/{key} [put]
func (e *SetPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resolver, embedded, ok := lookupPrompt(w, r)
	if !ok {
		return
	}
	store := resolver.Store()
	if store == nil {
		writeError(w, http.StatusInternalServerError, "prompt overrides not enabled")
		return
	}

	var req SetPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if err := prompts.Validate(embedded.Key, req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := store.Put(embedded.Key, req.Text); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	svcctx.LoggerFrom(r.Context()).Info("prompt override saved", "key", embedded.Key)

	writeJSON(w, http.StatusOK, promptResponse(resolver, *embedded))
}

func (e *SetPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <file|->",
		Short: "Override a prompt with the contents of a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text []byte
			var err error
			if args[1] == "-" {
				text, err = io.ReadAll(os.Stdin)
			} else {
				text, err = os.ReadFile(args[1])
			}
			if err != nil {
				return fmt.Errorf("failed to read prompt text: %w", err)
			}

			client := api.NewClient(getServerURL())
			var resp PromptResponse
			if err := client.Put(cmd.Context(), "/api/prompts/"+url.PathEscape(args[0]), SetPromptRequest{Text: string(text)}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ClearPromptEndpoint handles DELETE /api/prompts/{key}.
type ClearPromptEndpoint struct{}

func (e *ClearPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/prompts/{key}", e.handler
}

func (e *ClearPromptEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Clear a prompt override
//	@Description	Revert a prompt to its embedded default
//	@Tags			prompts
//	@Produce		json
//	@Param			key	path		string	true	"Prompt key"
//	@Success		200	{object}	PromptResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/prompts/{key} [delete]
func (e *ClearPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resolver, embedded, ok := lookupPrompt(w, r)
	if !ok {
		return
	}
	if store := resolver.Store(); store != nil {
		if err := store.Delete(embedded.Key); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, promptResponse(resolver, *embedded))
}

func (e *ClearPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <key>",
		Short: "Revert a prompt to its embedded default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/prompts/"+url.PathEscape(args[0])); err != nil {
				return err
			}
			fmt.Printf("Prompt %s reset to default\n", args[0])
			return nil
		},
	}
}

func lookupPrompt(w http.ResponseWriter, r *http.Request) (*prompts.Resolver, *prompts.EmbeddedPrompt, bool) {
	key := r.PathValue("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "invalid prompt key")
		return nil, nil, false
	}
	resolver := svcctx.PromptsFrom(r.Context())
	if resolver == nil {
		writeError(w, http.StatusInternalServerError, "prompt resolver not available")
		return nil, nil, false
	}
	embedded, ok := resolver.GetEmbedded(key)
	if !ok {
		writeError(w, http.StatusNotFound, "prompt not found: "+key)
		return nil, nil, false
	}
	return resolver, embedded, true
}
