package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/ssvibitha/Health-report-to-recipes/internal/analyzer"
	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
	"github.com/ssvibitha/Health-report-to-recipes/internal/document"
	"github.com/ssvibitha/Health-report-to-recipes/internal/extract"
	"github.com/ssvibitha/Health-report-to-recipes/internal/providers"
	"github.com/ssvibitha/Health-report-to-recipes/internal/session"
	"github.com/ssvibitha/Health-report-to-recipes/internal/svcctx"
)

// SessionCookie is the cookie the dashboard keeps its session in.
const SessionCookie = "helios_session"

// maxFormMemory is how much of a multipart form is kept in memory.
const maxFormMemory = 32 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
	Raw   string `json:"raw,omitempty"` // model output that failed extraction
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeAIError maps analyzer, provider and document errors to a status code.
// raw is attached for extraction failures so the user can see what the model said.
func writeAIError(w http.ResponseWriter, err error, raw string) {
	var xerr *extract.Error
	switch {
	case errors.As(err, &xerr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: err.Error(),
			Kind:  xerr.Kind.String(),
			Field: xerr.Field,
			Raw:   raw,
		})
	case errors.Is(err, providers.ErrQuotaExceeded):
		writeError(w, http.StatusTooManyRequests, providers.QuotaHint)
	case errors.Is(err, analyzer.ErrNoClient):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, document.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, document.ErrNoText),
		errors.Is(err, document.ErrUnsupportedType),
		errors.Is(err, document.ErrUnsupportedImage),
		errors.Is(err, analyzer.ErrEmptyDocument),
		errors.Is(err, analyzer.ErrNoImages),
		errors.Is(err, analyzer.ErrInvalidPreference):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "AI request timed out")
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

// sessionID returns the session ID from the cookie or the X-Session-ID header.
func sessionID(r *http.Request) string {
	if id := r.Header.Get(api.SessionHeader); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// requireSession resolves the caller's session, writing 401 when there is none.
func requireSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	store := svcctx.SessionsFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusInternalServerError, "session store not available")
		return nil, false
	}
	id := sessionID(r)
	if id == "" {
		writeError(w, http.StatusUnauthorized, "login required")
		return nil, false
	}
	sess, err := store.Get(id)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "session expired, please log in again")
		return nil, false
	}
	return sess, true
}

// newAnalyzer builds an analyzer for the configured default provider.
func newAnalyzer(ctx context.Context) (*analyzer.Analyzer, error) {
	registry := svcctx.RegistryFrom(ctx)
	if registry == nil {
		return nil, analyzer.ErrNoClient
	}
	cfg := svcctx.ConfigFrom(ctx)
	client, err := registry.GetLLM(cfg.Defaults.LLMProvider)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analyzer.ErrNoClient, err)
	}
	return analyzer.New(analyzer.Config{
		Client:         client,
		Prompts:        svcctx.PromptsFrom(ctx),
		Recorder:       svcctx.RecorderFrom(ctx),
		Logger:         svcctx.LoggerFrom(ctx),
		Mode:           cfg.ExtractionMode(),
		RepairAttempts: cfg.Defaults.RepairAttempts,
	})
}

// aiContext bounds an AI request by the configured timeout and tags the call
// log with the caller.
func aiContext(r *http.Request, sess *session.Session, source string) (context.Context, context.CancelFunc) {
	ctx := r.Context()
	caller := analyzer.Caller{Source: source}
	if sess != nil {
		caller.SessionID = sess.ID
		caller.Username = sess.Username
	}
	ctx = analyzer.WithCaller(ctx, caller)
	if timeout := svcctx.ConfigFrom(ctx).RequestTimeout(); timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// readFile reads one uploaded file.
func readFile(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > document.MaxUploadSize {
		return nil, fmt.Errorf("%s: %w", fh.Filename, document.ErrTooLarge)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, document.MaxUploadSize+1))
}

// readDocument parses the multipart form and loads the report in field "file".
func readDocument(w http.ResponseWriter, r *http.Request) (*document.Document, bool) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return nil, false
	}
	_, fh, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return nil, false
	}
	data, err := readFile(fh)
	if err != nil {
		writeAIError(w, err, "")
		return nil, false
	}
	doc, err := document.Load(fh.Filename, data)
	if err != nil {
		writeAIError(w, err, "")
		return nil, false
	}
	return doc, true
}

// withRaw appends the raw model output a server error carried, for CLI display.
func withRaw(err error) error {
	var se *api.StatusError
	if errors.As(err, &se) && se.Raw != "" {
		return fmt.Errorf("%w\n\nraw model output:\n%s", err, se.Raw)
	}
	return err
}
