package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/reel-lens/internal/docs"
	"github.com/jonathan/reel-lens/internal/intelligence"
	"github.com/jonathan/reel-lens/internal/pipeline"
	"github.com/jonathan/reel-lens/internal/reconstruct"
	"github.com/jonathan/reel-lens/internal/tasks"
)

// Server is the HTTP front end over the extraction pipeline.
type Server struct {
	httpServer    *http.Server
	runner        *pipeline.Runner
	registry      *tasks.Registry
	cache         *docs.Cache
	chain         *intelligence.Chain
	reconstructor *reconstruct.Reconstructor
	logger        *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a server over the injected components.
func New(cfg Config, runner *pipeline.Runner, registry *tasks.Registry, cache *docs.Cache,
	chain *intelligence.Chain, reconstructor *reconstruct.Reconstructor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		runner:        runner,
		registry:      registry,
		cache:         cache,
		chain:         chain,
		reconstructor: reconstructor,
		logger:        logger.With("component", "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/reels/submit", s.handleSubmit)
	mux.HandleFunc("GET /api/reels/status/{task_id}", s.handleStatus)
	mux.HandleFunc("GET /api/reels/{id}", s.handleGetReel)
	mux.HandleFunc("POST /api/reels/{id}/intelligence", s.handleIntelligence)
	mux.HandleFunc("POST /api/reels/{id}/reconstruct", s.handleReconstruct)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // intelligence calls can be slow
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening and blocks until an interrupt triggers graceful
// shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.runner.Close()
	s.logger.Info("server stopped")
	return nil
}

// Handler exposes the configured handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// withCORS adds CORS headers.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start),
		)
	})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// errorResponse writes a {code, message} error body derived from err. The
// full error chain stays in the logs.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	} else {
		s.logger.Warn("request rejected", "status", status, "error", err)
	}
	s.jsonResponse(w, status, map[string]string{
		"code":    errorCode(err),
		"message": clientMessage(err),
	})
}
