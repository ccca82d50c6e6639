package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ssvibitha/Health-report-to-recipes/internal/home"
	"github.com/ssvibitha/Health-report-to-recipes/internal/providers"
)

const profileJSON = `{"conditions": ["Hypertension"], "medications": ["Lisinopril 10mg"], "lab_markers": {"Systolic BP": "150 mmHg"}, "summary": "High blood pressure."}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, registry *providers.Registry) *Server {
	t.Helper()
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}
	srv, err := New(Config{
		Host:     "127.0.0.1",
		Port:     "0",
		Home:     h,
		Registry: registry,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv
}

// waitForServer polls /health until the server answers.
func waitForServer(t *testing.T, srv *Server) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if addr := srv.ListenAddr(); addr != "" {
			url := "http://" + addr
			resp, err := http.Get(url + "/health")
			if err == nil {
				resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					return url
				}
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("server did not become ready")
	return ""
}

func TestServerLifecycle(t *testing.T) {
	srv := newTestServer(t, providers.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	url := waitForServer(t, srv)
	if !srv.IsRunning() {
		t.Error("IsRunning() = false while serving")
	}

	t.Run("double start", func(t *testing.T) {
		if err := srv.Start(context.Background()); err == nil {
			t.Error("second Start() should fail")
		}
	})

	t.Run("ready reports missing provider", func(t *testing.T) {
		resp, err := http.Get(url + "/ready")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("/ready status = %d, want 503", resp.StatusCode)
		}
	})

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Start() returned %v", err)
		}
	case <-time.After(35 * time.Second):
		t.Fatal("server did not shut down")
	}
	if srv.IsRunning() || srv.ListenAddr() != "" {
		t.Error("server still marked running after shutdown")
	}
}

func TestNewCreatesHome(t *testing.T) {
	dir := t.TempDir() + "/nested/helios"
	h, err := home.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(Config{Home: h, Registry: providers.NewRegistry(), Logger: testLogger()}); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !h.Exists() {
		t.Error("home directory not created")
	}
}

func TestRequireInit(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/analyze", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if !strings.Contains(body["error"], "gemini") {
		t.Errorf("error = %q, want provider name", body["error"])
	}
}

func TestEndToEnd(t *testing.T) {
	registry := providers.NewRegistry()
	registry.RegisterLLM("gemini", providers.NewMockClient(profileJSON))
	srv := newTestServer(t, registry)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	post := func(path, sid string, body io.Reader, contentType string) *http.Response {
		t.Helper()
		req, _ := http.NewRequest(http.MethodPost, ts.URL+path, body)
		req.Header.Set("Content-Type", contentType)
		if sid != "" {
			req.Header.Set("X-Session-ID", sid)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		return resp
	}
	get := func(path, sid string) *http.Response {
		t.Helper()
		req, _ := http.NewRequest(http.MethodGet, ts.URL+path, nil)
		req.Header.Set("X-Session-ID", sid)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		return resp
	}

	creds := `{"username": "carol", "password": "hunter22"}`
	resp := post("/api/auth/signup", "", strings.NewReader(creds), "application/json")
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}

	resp = post("/api/auth/login", "", strings.NewReader(creds), "application/json")
	var login struct {
		SessionID string `json:"session_id"`
	}
	json.NewDecoder(resp.Body).Decode(&login)
	resp.Body.Close()
	if login.SessionID == "" {
		t.Fatal("login returned no session")
	}
	sid := login.SessionID

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "bp.txt")
	part.Write([]byte("Blood pressure 150/95 mmHg. Patient on lisinopril."))
	mw.Close()
	resp = post("/api/reports/analyze", sid, &buf, mw.FormDataContentType())
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analyze status = %d", resp.StatusCode)
	}

	resp = get("/api/profile", sid)
	var profile struct {
		Active  bool           `json:"active"`
		Profile map[string]any `json:"profile"`
	}
	json.NewDecoder(resp.Body).Decode(&profile)
	resp.Body.Close()
	if !profile.Active {
		t.Fatal("profile not active after analysis")
	}
	if conds, _ := profile.Profile["conditions"].([]any); len(conds) != 1 || conds[0] != "Hypertension" {
		t.Errorf("conditions = %v", profile.Profile["conditions"])
	}

	resp = get("/api/history/export?kind=reports", sid)
	resp.Body.Close()
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "medical_history_") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	resp = post("/api/auth/logout", sid, nil, "application/json")
	resp.Body.Close()
	resp = get("/api/profile", sid)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("profile after logout status = %d, want 401", resp.StatusCode)
	}

	if n := srv.Services().LLMCallStore.Len(); n != 1 {
		t.Errorf("recorded %d LLM calls, want 1", n)
	}
}
