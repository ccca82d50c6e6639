package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
	"github.com/ssvibitha/Health-report-to-recipes/internal/extract"
	"github.com/ssvibitha/Health-report-to-recipes/internal/session"
)

// ProfileResponse is the active health profile of a session.
type ProfileResponse struct {
	Username string         `json:"username"`
	Active   bool           `json:"active"`
	Profile  extract.Record `json:"profile,omitempty"`
	Stats    session.Stats  `json:"stats"`
}

func profileResponse(sess *session.Session) ProfileResponse {
	profile := sess.Profile()
	return ProfileResponse{
		Username: sess.Username,
		Active:   profile != nil,
		Profile:  profile,
		Stats:    sess.Stats(),
	}
}

// GetProfileEndpoint handles GET /api/profile.
type GetProfileEndpoint struct{}

func (e *GetProfileEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/profile", e.handler
}

func (e *GetProfileEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Get the active health profile
//	@Description	Returns the clinical profile from the last analyzed report, with session counters
//	@Tags			profile
//	@Produce		json
//	@Success		200	{object}	ProfileResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/api/profile [get]
func (e *GetProfileEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, profileResponse(sess))
}

func (e *GetProfileEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active health profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ProfileResponse
			if err := client.Get(cmd.Context(), "/api/profile", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ClearProfileEndpoint handles DELETE /api/profile.
type ClearProfileEndpoint struct{}

func (e *ClearProfileEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/profile", e.handler
}

func (e *ClearProfileEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Clear the active health profile
//	@Description	Recipes are generic until another report is analyzed. History is kept.
//	@Tags			profile
//	@Produce		json
//	@Success		200	{object}	ProfileResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/api/profile [delete]
func (e *ClearProfileEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	sess.ClearProfile()
	writeJSON(w, http.StatusOK, profileResponse(sess))
}

func (e *ClearProfileEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the active health profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/profile"); err != nil {
				return err
			}
			fmt.Println("Profile cleared")
			return nil
		},
	}
}
