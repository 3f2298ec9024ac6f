// Package api serves the demo backend over HTTP: the REST surface the client
// talks to and the per-container WebSocket log streams.
package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/charliek/tailboard/internal/constants"
)

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Addr string
}

// Server represents the HTTP API server
type Server struct {
	config     ServerConfig
	router     *chi.Mux
	httpServer *http.Server
	handlers   *Handlers
	logger     zerolog.Logger
	mu         sync.Mutex
}

// NewServer creates a new API server
func NewServer(config ServerConfig, handlers *Handlers, logger zerolog.Logger) *Server {
	if config.Addr == "" {
		config.Addr = constants.DefaultDemoAddr
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware())

	s := &Server{
		config:   config,
		router:   r,
		handlers: handlers,
		logger:   logger,
	}
	s.registerRoutes()

	return s
}

// Handler returns the router, for mounting in tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// requestLogger logs each request once it completes
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}

// corsMiddleware returns a CORS middleware restricted to localhost
func corsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if isLocalhostOrigin(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// isLocalhostOrigin checks that origin is exactly a localhost address with an optional port
func isLocalhostOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	localhostPrefixes := []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
		"http://[::1]",
		"https://[::1]",
	}
	for _, prefix := range localhostPrefixes {
		if origin == prefix || strings.HasPrefix(origin, prefix+":") {
			return true
		}
	}
	return false
}

// registerRoutes sets up all API routes
func (s *Server) registerRoutes() {
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Streams outlive any request timeout
	s.router.Get("/ws/logs/{id}", s.handlers.StreamLogs)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(constants.DefaultRequestTimeout))

		r.Get("/containers", s.handlers.GetContainers)
		r.Get("/alerts", s.handlers.GetAlerts)
		r.Get("/clear_alerts", s.handlers.ClearAlerts)

		r.Get("/logs/{id}", s.handlers.GetLogs)
		r.Get("/logs/filter/{id}", s.handlers.GetFilteredLogs)

		r.Route("/config", func(r chi.Router) {
			r.Get("/filters", s.handlers.GetKeywords)
			r.Post("/filters/add-keyword", s.handlers.AddKeywords)
			r.Delete("/filters/remove-keyword", s.handlers.RemoveKeywords)

			r.Get("/email/sender", s.handlers.GetSender)
			r.Post("/email/sender", s.handlers.SetSender)
			r.Get("/email/app_password", s.handlers.GetAppPassword)
			r.Post("/email/app_password", s.handlers.SetAppPassword)
			r.Get("/email/recipients", s.handlers.GetRecipients)
			r.Post("/email/recipients/add", s.handlers.AddRecipient)
			r.Post("/email/recipients/remove", s.handlers.RemoveRecipient)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disable for streams
		IdleTimeout:  60 * time.Second,
	}
	server := s.httpServer
	s.mu.Unlock()

	s.logger.Info().Str("addr", s.config.Addr).Msg("demo backend listening")
	return server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.httpServer
	s.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// Addr returns the server address
func (s *Server) Addr() string {
	return s.config.Addr
}
