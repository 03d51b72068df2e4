// Package server hosts the convertx HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kumarraju1982/Convertx/internal/api"
	"github.com/kumarraju1982/Convertx/internal/config"
	"github.com/kumarraju1982/Convertx/internal/convert"
	"github.com/kumarraju1982/Convertx/internal/home"
	"github.com/kumarraju1982/Convertx/internal/ledger"
	"github.com/kumarraju1982/Convertx/internal/pdf"
	"github.com/kumarraju1982/Convertx/internal/server/endpoints"
	"github.com/kumarraju1982/Convertx/internal/svcctx"
)

// Server is the convertx HTTP server. Conversions submitted through
// the API run detached from their originating requests and are drained
// on shutdown.
type Server struct {
	httpServer *http.Server
	configMgr  *config.Manager
	home       *home.Dir
	logger     *slog.Logger

	// services holds all core services for context enrichment
	services *svcctx.Services
	jobs     *ledger.Store

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	orchMu sync.RWMutex
	orch   *convert.Orchestrator

	mu      sync.RWMutex
	running bool
	addr    string

	// in-flight conversions
	convWG     sync.WaitGroup
	baseCtx    context.Context
	baseCancel context.CancelFunc
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1)
	Host string
	// Port is the port to listen on (default: 8080)
	Port string
	// Home is the convertx home directory for uploads and outputs
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		h, err := home.New("")
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		cfg.Home = h
	}

	s := &Server{
		configMgr: cfg.ConfigManager,
		home:      cfg.Home,
		logger:    cfg.Logger,
		addr:      net.JoinHostPort(cfg.Host, cfg.Port),
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All() {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Handler:      s.withServices(mux),
		ReadTimeout:  10 * time.Minute, // large uploads
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// effectiveConfig returns the live configuration, falling back to
// defaults when no config manager was provided.
func (s *Server) effectiveConfig() *config.Config {
	if s.configMgr != nil {
		return s.configMgr.Get()
	}
	return config.DefaultConfig()
}

// Start starts the server. It blocks until the context is cancelled or
// an error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.home.EnsureExists(); err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to prepare home directory: %w", err)
	}

	if !pdf.NewPopplerRenderer(s.logger).Available() {
		s.logger.Warn("pdftoppm not found on PATH; conversions will fail to render pages")
	}

	s.jobs = ledger.NewStore(s.logger)
	s.setOrchestrator(s.effectiveConfig())

	// Rebuild the pipeline when the config file changes.
	if s.configMgr != nil {
		s.configMgr.OnChange(func(c *config.Config) {
			s.setOrchestrator(c)
			s.logger.Info("conversion pipeline reloaded from config")
		})
		s.configMgr.WatchConfig()
	}

	// Conversions outlive their requests; they stop when the server
	// gives up waiting during shutdown.
	s.baseCtx, s.baseCancel = context.WithCancel(context.Background())

	s.services = &svcctx.Services{
		Jobs:      s.jobs,
		Submitter: s,
		ConfigMgr: s.configMgr,
		Logger:    s.logger,
		Home:      s.home,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.Addr())
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			s.baseCancel()
			s.setNotRunning()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// Submit implements svcctx.Submitter: the conversion runs on its own
// goroutine bound to the server lifetime, not the request.
func (s *Server) Submit(jobID string, opts convert.Options) {
	s.convWG.Add(1)
	go func() {
		defer s.convWG.Done()
		if _, err := s.orchestrator().Run(s.baseCtx, jobID, opts); err != nil {
			s.logger.Error("conversion failed", "job_id", jobID, "error", err)
		}
	}()
}

// shutdown stops the HTTP server, then drains in-flight conversions,
// canceling them if they outlast the grace period.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	done := make(chan struct{})
	go func() {
		s.convWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		s.logger.Warn("canceling in-flight conversions")
		s.baseCancel()
		<-done
	}
	s.baseCancel()

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Jobs returns the job ledger. Returns nil before the server starts.
func (s *Server) Jobs() *ledger.Store {
	return s.jobs
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

func (s *Server) setOrchestrator(cfg *config.Config) {
	orch := convert.New(cfg, s.jobs, s.logger)
	s.orchMu.Lock()
	s.orch = orch
	s.orchMu.Unlock()
}

func (s *Server) orchestrator() *convert.Orchestrator {
	s.orchMu.RLock()
	defer s.orchMu.RUnlock()
	return s.orch
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

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable if the ledger or pipeline aren't ready.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.jobs == nil || s.orchestrator() == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
