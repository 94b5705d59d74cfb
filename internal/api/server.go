package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/wardenhq/warden/internal/policy"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr     string
	APIToken string
}

// Server exposes the policy engine over HTTP.
type Server struct {
	httpServer *http.Server
	handlers   *Handlers
}

// NewServer creates a new API server around an engine.
func NewServer(cfg ServerConfig, engine *policy.Engine) *Server {
	handlers := NewHandlers(engine)
	auth := BearerAuth(cfg.APIToken)

	mux := http.NewServeMux()
	mux.Handle("/healthz", http.HandlerFunc(handlers.HealthHandler))

	post := func(h http.HandlerFunc) http.Handler {
		return applyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, "method not allowed")
				return
			}
			h(w, r)
		}), auth)
	}

	mux.Handle("/check", post(handlers.CheckHandler))
	mux.Handle("/files/check", post(handlers.FileCheckHandler))
	mux.Handle("/sanitize", post(handlers.SanitizeHandler))
	mux.Handle("/tokens", post(handlers.TokenCreateHandler))
	mux.Handle("/tokens/verify", post(handlers.TokenVerifyHandler))
	mux.Handle("/passwords/hash", post(handlers.PasswordHashHandler))
	mux.Handle("/passwords/verify", post(handlers.PasswordVerifyHandler))

	mux.Handle("/report", applyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		handlers.ReportHandler(w, r)
	}), auth))

	mux.Handle("/events", applyMiddleware(http.HandlerFunc(handlers.EventsHandler), auth))

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		handlers: handlers,
	}
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	slog.Info("starting warden API", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the root handler (for testing).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
