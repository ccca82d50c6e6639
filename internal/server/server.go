package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ssvibitha/Health-report-to-recipes/internal/analyzer"
	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
	"github.com/ssvibitha/Health-report-to-recipes/internal/config"
	"github.com/ssvibitha/Health-report-to-recipes/internal/home"
	"github.com/ssvibitha/Health-report-to-recipes/internal/llmcall"
	"github.com/ssvibitha/Health-report-to-recipes/internal/prompts"
	"github.com/ssvibitha/Health-report-to-recipes/internal/providers"
	"github.com/ssvibitha/Health-report-to-recipes/internal/server/endpoints"
	"github.com/ssvibitha/Health-report-to-recipes/internal/session"
	"github.com/ssvibitha/Health-report-to-recipes/internal/svcctx"
	"github.com/ssvibitha/Health-report-to-recipes/internal/users"
)

// sessionSweepInterval is how often idle sessions are expired.
const sessionSweepInterval = time.Minute

// Server is the main Helios HTTP server.
// It owns the provider registry, the user and session stores and the AI
// call log, and hands them to endpoints through the request context.
type Server struct {
	httpServer *http.Server
	registry   *providers.Registry
	configMgr  *config.Manager
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu       sync.RWMutex
	running  bool
	listener net.Listener
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: server.host from config)
	Host string
	// Port is the port to listen on (default: server.port from config)
	Port string
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Home is the data directory (default: ~/.helios)
	Home *home.Dir
	// Registry overrides the config-built provider registry
	Registry *providers.Registry
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	conf := config.DefaultConfig()
	if cfg.ConfigManager != nil {
		conf = cfg.ConfigManager.Get()
	}
	if cfg.Host == "" {
		cfg.Host = conf.Server.Host
	}
	if cfg.Port == "" {
		cfg.Port = conf.Server.Port
	}
	if cfg.Home == nil {
		h, err := home.New("")
		if err != nil {
			return nil, err
		}
		cfg.Home = h
	}
	if err := cfg.Home.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}

	registry := cfg.Registry
	if registry == nil {
		registry = providers.NewRegistry()
		registry.SetLogger(cfg.Logger)
		registry.Reload(conf.ToProviderRegistryConfig())

		if cfg.ConfigManager != nil {
			cfg.ConfigManager.OnChange(func(c *config.Config) {
				registry.Reload(c.ToProviderRegistryConfig())
				cfg.Logger.Info("provider registry reloaded from config")
			})
		}
	}

	resolver := prompts.NewResolver(
		prompts.NewStore(cfg.Home.Resolve(conf.Storage.PromptsDir, cfg.Home.PromptsDir())),
		cfg.Logger,
	)
	analyzer.RegisterPrompts(resolver)

	callStore := llmcall.NewStore(llmcall.DefaultCapacity)

	s := &Server{
		registry:  registry,
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
	}
	s.services = &svcctx.Services{
		Registry:     registry,
		ConfigMgr:    cfg.ConfigManager,
		Logger:       cfg.Logger,
		Home:         cfg.Home,
		Sessions:     session.NewStore(conf.Defaults.HistoryLimit),
		Users:        users.Open(cfg.Home.Resolve(conf.Storage.UsersFile, cfg.Home.UsersPath()), cfg.Logger),
		Prompts:      resolver,
		LLMCallStore: callStore,
		Recorder:     llmcall.NewRecorder(callStore, cfg.Logger),
	}

	s.endpointRegistry = api.NewRegistry(endpoints.All()...)

	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	gated := 0
	routes := s.endpointRegistry.Routes()
	for _, rt := range routes {
		if rt.RequiresInit {
			gated++
		}
	}
	s.logger.Debug("registered routes", "count", len(routes), "provider_routes", gated)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: conf.RequestTimeout() + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.running = true
	s.listener = ln
	s.mu.Unlock()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.expireSessions(sweepCtx)

	if name := s.config().Defaults.LLMProvider; !s.registry.HasLLM(name) {
		s.logger.Warn("default LLM provider not configured; analysis endpoints will return 503", "provider", name)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// shutdown performs graceful shutdown of the HTTP server.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.mu.Lock()
	s.running = false
	s.listener = nil
	s.mu.Unlock()
	s.logger.Info("server stopped")
	return nil
}

// expireSessions drops idle sessions until ctx is done.
func (s *Server) expireSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			idle := s.config().SessionIdle()
			if idle <= 0 {
				continue
			}
			if n := s.services.Sessions.Expire(idle); n > 0 {
				s.logger.Info("expired idle sessions", "count", n)
			}
		}
	}
}

func (s *Server) config() *config.Config {
	if s.configMgr != nil {
		return s.configMgr.Get()
	}
	return config.DefaultConfig()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAddr returns the bound address while running, or "".
func (s *Server) ListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler returns the HTTP handler with services attached.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Services returns the services handed to endpoints.
func (s *Server) Services() *svcctx.Services {
	return s.services
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireInit is middleware for endpoints that call the AI provider.
// Returns 503 Service Unavailable if the default provider isn't registered.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := s.config().Defaults.LLMProvider
		if !s.registry.HasLLM(name) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{
				"error": fmt.Sprintf("LLM provider %s not configured; set its API key and enable it in config.yaml", name),
			})
			return
		}
		next(w, r)
	}
}
