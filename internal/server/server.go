package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sozercan/cypherchat/apimodels"
	"github.com/sozercan/cypherchat/internal/analyzer"
	"github.com/sozercan/cypherchat/internal/config"
	"github.com/sozercan/cypherchat/internal/cypher"
	"github.com/sozercan/cypherchat/internal/llm"
	"github.com/sozercan/cypherchat/internal/schema"
)

// Analyzer answers questions. *analyzer.Analyzer implements it.
type Analyzer interface {
	Analyze(ctx context.Context, req apimodels.AskRequest) (*apimodels.AskResponse, error)
	Translate(ctx context.Context, req apimodels.AskRequest) (cypher.Query, *llm.Result, error)
}

// HealthChecker reports whether the graph store is reachable.
type HealthChecker interface {
	Verify(ctx context.Context) error
}

type Server struct {
	cfg      config.ServerConfig
	server   *http.Server
	router   *chi.Mux
	analyzer Analyzer
	health   HealthChecker
	schema   *schema.Descriptor
	examples []schema.Example
	gatherer prometheus.Gatherer
}

type Option func(*Server)

func WithHealthChecker(h HealthChecker) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithCatalog exposes the schema and examples on /api/v1/schema.
func WithCatalog(desc *schema.Descriptor, examples []schema.Example) Option {
	return func(s *Server) {
		s.schema = desc
		s.examples = examples
	}
}

// WithMetrics serves the gatherer's metrics on /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

func New(cfg config.ServerConfig, analyzer Analyzer, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		router:   chi.NewRouter(),
		analyzer: analyzer,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestID)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		s.router.Use(s.requestDeadline)
	}

	s.router.Get("/", s.handleWelcome)

	// Path used by the chat front end.
	s.router.Post("/generate-cypher", s.handleGenerateCypher)
	s.router.Post("/generate-cypher/", s.handleGenerateCypher)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/generate-cypher", s.handleGenerateCypher)
		r.Post("/translate", s.handleTranslate)
		r.Get("/schema", s.handleSchema)
		r.Get("/health", s.handleHealth)
	})

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// requestID reuses an incoming X-Request-ID or assigns a new one, and makes
// it available to the analyzer's log lines.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(analyzer.WithRequestID(r.Context(), id)))
	})
}

// requestDeadline bounds the request context. Handlers write the response
// themselves: an expired deadline surfaces as a classified pipeline error.
func (s *Server) requestDeadline(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response wrapper to capture status code
		rw := &responseWriter{ResponseWriter: w}

		next.ServeHTTP(rw, r)

		slog.Info("HTTP request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
			"request_id", analyzer.RequestID(r.Context()),
		)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	// Create a channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "address", s.server.Addr)
		serverErrors <- s.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		slog.Info("Starting shutdown", "reason", context.Cause(ctx))

		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		// Give outstanding requests a deadline for completion
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}

// Custom response writer to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}
