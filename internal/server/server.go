package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sundayezeilo/shortlink/internal/config"
	"github.com/sundayezeilo/shortlink/internal/httpx"
	"github.com/sundayezeilo/shortlink/internal/links"
	"github.com/sundayezeilo/shortlink/internal/metrics"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether the link store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server with all dependencies.
type Server struct {
	config  *config.Config
	logger  *slog.Logger
	handler *links.Handler
	store   Pinger
	metrics *metrics.Metrics // nil when metrics are disabled
	server  *http.Server
}

// New creates a new Server instance. m may be nil.
func New(cfg *config.Config, logger *slog.Logger, handler *links.Handler, store Pinger, m *metrics.Metrics) *Server {
	return &Server{
		config:  cfg,
		logger:  logger,
		handler: handler,
		store:   store,
		metrics: m,
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled, a shutdown
// signal arrives or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port),
		Handler:      s.Routes(),
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("starting http server",
			"addr", s.server.Addr,
			"env", s.config.App.Environment,
		)
		serverErrors <- s.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		s.logger.Info("received shutdown signal", "signal", sig.String())

	case <-ctx.Done():
		s.logger.Info("context cancelled, stopping server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}

// Routes builds the router with every route and middleware applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(
		httpx.Recovery(s.logger), // Outermost: catch panics
		httpx.RequestID,
		httpx.Logger(s.logger),
		httpx.CORS(s.config.Server.CORSOrigins),
	)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}

	r.Get("/healthz", s.healthCheckHandler)

	r.Route("/links", func(r chi.Router) {
		r.Get("/", s.handler.ListLinks)
		r.Post("/", s.handler.CreateLink)
		r.Delete("/", s.handler.DeleteLinkByQuery)
		r.Get("/{code}", s.handler.GetLink)
		r.Delete("/{code}", s.handler.DeleteLink)
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, s.config.Observability.MetricsPath, s.metrics.Handler())
	}

	r.Get("/{code}", s.handler.Redirect)

	return r
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Error     string    `json:"error,omitempty"`
}

// healthCheckHandler reports store reachability.
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.ErrorContext(ctx, "health check failed",
			"request_id", httpx.GetRequestID(ctx),
			"error", err.Error(),
		)
		httpx.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "error",
			Timestamp: time.Now().UTC(),
			Database:  "disconnected",
			Error:     err.Error(),
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
		Database:  "connected",
	})
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Warn("shutdown timeout exceeded, forcing close")
			return s.server.Close()
		}
		return err
	}

	return nil
}
