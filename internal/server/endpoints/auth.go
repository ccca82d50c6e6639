package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
	"github.com/ssvibitha/Health-report-to-recipes/internal/session"
	"github.com/ssvibitha/Health-report-to-recipes/internal/svcctx"
	"github.com/ssvibitha/Health-report-to-recipes/internal/users"
)

// CredentialsRequest is the body for sign-up and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignUpResponse confirms a new account.
type SignUpResponse struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// LoginResponse carries the new session.
type LoginResponse struct {
	SessionID string        `json:"session_id"`
	Username  string        `json:"username"`
	Stats     session.Stats `json:"stats"`
}

// LogoutResponse confirms a logout.
type LogoutResponse struct {
	Status string `json:"status"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (CredentialsRequest, bool) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	req.Username = strings.TrimSpace(req.Username)
	return req, true
}

// SignUpEndpoint handles POST /api/auth/signup.
type SignUpEndpoint struct{}

func (e *SignUpEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/auth/signup", e.handler
}

func (e *SignUpEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Create an account
//	@Description	Register a username and password (at least 4 characters)
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CredentialsRequest	true	"Credentials"
//	@Success		201		{object}	SignUpResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/auth/signup [post]
func (e *SignUpEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.UsersFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusInternalServerError, "user store not available")
		return
	}
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	err := store.SignUp(req.Username, req.Password)
	switch {
	case errors.Is(err, users.ErrMissingFields), errors.Is(err, users.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, users.ErrUserExists):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		svcctx.LoggerFrom(r.Context()).Error("sign up failed", "username", req.Username, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, SignUpResponse{
		Username: req.Username,
		Message:  "Account created. Please log in.",
	})
}

func (e *SignUpEndpoint) Command(getServerURL func() string) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp SignUpResponse
			req := CredentialsRequest{Username: username, Password: password}
			if err := client.Post(cmd.Context(), "/api/auth/signup", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

// LoginEndpoint handles POST /api/auth/login.
type LoginEndpoint struct{}

func (e *LoginEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/auth/login", e.handler
}

func (e *LoginEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Log in
//	@Description	Start a session. The session ID is returned and set as the helios_session cookie.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CredentialsRequest	true	"Credentials"
//	@Success		200		{object}	LoginResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Router			/api/auth/login [post]
func (e *LoginEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := svcctx.UsersFrom(ctx)
	sessions := svcctx.SessionsFrom(ctx)
	if store == nil || sessions == nil {
		writeError(w, http.StatusInternalServerError, "user store not available")
		return
	}
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	if err := store.Authenticate(req.Username, req.Password); err != nil {
		if errors.Is(err, users.ErrMissingFields) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	sess := sessions.Create(req.Username)
	svcctx.LoggerFrom(ctx).Info("user logged in", "username", sess.Username, "session_id", sess.ID)

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, LoginResponse{
		SessionID: sess.ID,
		Username:  sess.Username,
		Stats:     sess.Stats(),
	})
}

func (e *LoginEndpoint) Command(getServerURL func() string) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a session ID",
		Long: `Log in and print a session ID.

Pass the ID to later commands with --session or the HELIOS_SESSION
environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp LoginResponse
			req := CredentialsRequest{Username: username, Password: password}
			if err := client.Post(cmd.Context(), "/api/auth/login", req, &resp); err != nil {
				return err
			}
			if api.JSONOutput() {
				return api.Output(resp)
			}
			fmt.Printf("Logged in as %s\n", resp.Username)
			fmt.Printf("export HELIOS_SESSION=%s\n", resp.SessionID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (required)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}

// LogoutEndpoint handles POST /api/auth/logout.
type LogoutEndpoint struct{}

func (e *LogoutEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/auth/logout", e.handler
}

func (e *LogoutEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Log out
//	@Description	End the session and discard its profile and history
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	LogoutResponse
//	@Router			/api/auth/logout [post]
func (e *LogoutEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if sessions := svcctx.SessionsFrom(r.Context()); sessions != nil {
		if id := sessionID(r); id != "" {
			sessions.Delete(id)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:   SessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	writeJSON(w, http.StatusOK, LogoutResponse{Status: "logged_out"})
}

func (e *LogoutEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp LogoutResponse
			if err := client.Post(cmd.Context(), "/api/auth/logout", nil, &resp); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}
