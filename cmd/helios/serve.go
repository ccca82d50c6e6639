package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/ssvibitha/Health-report-to-recipes/docs/swagger"
	"github.com/ssvibitha/Health-report-to-recipes/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Helios server",
	Long: `Start the Helios HTTP server and dashboard.

Providers are configured in config.yaml; API keys are read from the
environment (a .env file in the working directory is loaded first).
Editing config.yaml while the server runs reloads the providers.

The server provides:
  - /         - Dashboard (login, report analysis, kitchen, history)
  - /health   - Basic server health check
  - /ready    - Readiness check (default AI provider configured)
  - /swagger  - API documentation

Examples:
  helios serve                    # Start on default port 8080
  helios serve --port 3000        # Start on custom port
  helios serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfgMgr, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := cfgMgr.Get()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.Level(),
		}))
		cfgMgr.SetLogger(logger)
		cfgMgr.WatchConfig()

		h, err := getHome()
		if err != nil {
			return err
		}

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			ConfigManager: cfgMgr,
			Home:          h,
			Logger:        logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: server.host from config)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default: server.port from config)")

	rootCmd.AddCommand(serveCmd)
}
