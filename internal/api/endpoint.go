package api

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Endpoint is one Helios operation. The same value registers the HTTP
// route served by `helios serve` and builds the `helios api` subcommand
// that calls it.
type Endpoint interface {
	// Route returns the method, the ServeMux path pattern and the handler.
	Route() (method, path string, handler http.HandlerFunc)

	// RequiresInit reports whether the handler calls the AI provider and
	// must answer 503 while no default provider is configured.
	RequiresInit() bool

	// Command returns the CLI command for the endpoint, or nil when it has
	// none (static assets). getServerURL is resolved when the command runs
	// so --server is honoured.
	Command(getServerURL func() string) *cobra.Command
}

// Route describes a registered endpoint.
type Route struct {
	Method       string `json:"method" yaml:"method"`
	Path         string `json:"path" yaml:"path"`
	RequiresInit bool   `json:"requires_init" yaml:"requires_init"`
}

// Pattern is the ServeMux pattern, e.g. "POST /api/reports/analyze".
func (r Route) Pattern() string {
	return r.Method + " " + r.Path
}
