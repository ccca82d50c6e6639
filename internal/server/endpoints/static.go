package endpoints

import (
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
	"github.com/ssvibitha/Health-report-to-recipes/web"
)

// StaticEndpoint serves the embedded dashboard. Paths outside /api that
// match no file get index.html so tabs like /kitchen can be bookmarked.
type StaticEndpoint struct{}

var _ api.Endpoint = (*StaticEndpoint)(nil)

func (e *StaticEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/{path...}", e.handler
}

func (e *StaticEndpoint) RequiresInit() bool { return false }

// Command returns nil; the dashboard has no CLI counterpart.
func (e *StaticEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}

func (e *StaticEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.PathValue("path")), "/")
	if name == "api" || strings.HasPrefix(name, "api/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	assets, err := web.Assets()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "dashboard not available")
		return
	}

	if name != "" && name != web.IndexFile {
		if info, err := fs.Stat(assets, name); err == nil && !info.IsDir() {
			http.ServeFileFS(w, r, assets, name)
			return
		}
	}

	index, err := fs.ReadFile(assets, web.IndexFile)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "dashboard not available")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(index)
}
