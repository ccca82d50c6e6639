package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
	"github.com/ssvibitha/Health-report-to-recipes/internal/svcctx"
)

// HealthResponse is the response for health check endpoints.
type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider,omitempty"`
}

// HealthEndpoint handles GET /health.
type HealthEndpoint struct{}

func (e *HealthEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/health", e.handler
}

func (e *HealthEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary	Health check
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/health [get]
func (e *HealthEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (e *HealthEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/health", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			return nil
		},
	}
}

// ReadyEndpoint handles GET /ready.
type ReadyEndpoint struct{}

func (e *ReadyEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/ready", e.handler
}

func (e *ReadyEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Readiness check
//	@Description	Ready when the default AI provider is configured
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/ready [get]
func (e *ReadyEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	name := svcctx.ConfigFrom(r.Context()).Defaults.LLMProvider
	registry := svcctx.RegistryFrom(r.Context())
	if registry == nil || !registry.HasLLM(name) {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Provider: "not_configured"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Provider: name})
}

func (e *ReadyEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "Check server readiness (includes the AI provider)",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp HealthResponse
			if err := client.Get(cmd.Context(), "/ready", &resp); err != nil {
				return err
			}
			fmt.Printf("Status:   %s\n", resp.Status)
			fmt.Printf("Provider: %s\n", resp.Provider)
			return nil
		},
	}
}

// StatusResponse is the detailed status response.
type StatusResponse struct {
	Server    string          `json:"server"`
	Providers ProvidersStatus `json:"providers"`
	Sessions  int             `json:"sessions"`
	Users     int             `json:"users"`
	LLMCalls  int             `json:"llm_calls"`
	Mode      string          `json:"extraction_mode"`
}

// ProvidersStatus shows registered LLM providers and the default.
type ProvidersStatus struct {
	Default string   `json:"default"`
	LLM     []string `json:"llm"`
}

// StatusEndpoint handles GET /status.
type StatusEndpoint struct{}

func (e *StatusEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/status", e.handler
}

func (e *StatusEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary	Detailed server status
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	StatusResponse
//	@Router		/status [get]
func (e *StatusEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg := svcctx.ConfigFrom(ctx)
	resp := StatusResponse{
		Server: "running",
		Mode:   cfg.ExtractionMode().String(),
	}
	resp.Providers.Default = cfg.Defaults.LLMProvider

	if registry := svcctx.RegistryFrom(ctx); registry != nil {
		resp.Providers.LLM = registry.ListLLM()
	}
	if sessions := svcctx.SessionsFrom(ctx); sessions != nil {
		resp.Sessions = sessions.Len()
	}
	if u := svcctx.UsersFrom(ctx); u != nil {
		resp.Users = len(u.Usernames())
	}
	if calls := svcctx.LLMCallStoreFrom(ctx); calls != nil {
		resp.LLMCalls = calls.Len()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *StatusEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get detailed server status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StatusResponse
			if err := client.Get(cmd.Context(), "/status", &resp); err != nil {
				return err
			}
			fmt.Printf("Server:     %s\n", resp.Server)
			fmt.Printf("Extraction: %s\n", resp.Mode)
			fmt.Printf("Providers:\n")
			fmt.Printf("  Default: %s\n", resp.Providers.Default)
			fmt.Printf("  LLM:     %v\n", resp.Providers.LLM)
			fmt.Printf("Sessions:   %d\n", resp.Sessions)
			fmt.Printf("Users:      %d\n", resp.Users)
			fmt.Printf("LLM calls:  %d\n", resp.LLMCalls)
			return nil
		},
	}
}
