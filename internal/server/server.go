// Package server wires the HTTP surface: routing, form handlers, the
// session guard, and request middleware.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sheetdrop/internal/service"
	"sheetdrop/internal/session"
	"sheetdrop/internal/upload"
)

// Config carries the collaborators the server orchestrates.
type Config struct {
	Addr           string
	Logger         *zap.Logger
	Auth           *service.Auth
	Sessions       *session.Manager
	Uploads        *upload.Service
	MaxUploadBytes int64 // 0 = unlimited
}

// Server is the HTTP front of the application.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	auth       *service.Auth
	sessions   *session.Manager
	uploads    *upload.Service
	maxUpload  int64
}

// New builds the router and returns a server ready to Start.
func New(cfg Config) *Server {
	s := &Server{
		logger:    cfg.Logger,
		auth:      cfg.Auth,
		sessions:  cfg.Sessions,
		uploads:   cfg.Uploads,
		maxUpload: cfg.MaxUploadBytes,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(cfg.Logger))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)

	r.Get("/register", s.handleRegisterForm)
	r.Post("/register", s.handleRegister)
	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)
	r.Get("/logout", s.handleLogout)

	r.Group(func(pr chi.Router) {
		pr.Use(s.requireAuthenticated)
		pr.Get("/upload", s.handleUploadForm)
		pr.Post("/upload", s.handleUpload)
	})

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start listens and serves until Shutdown or a listener error.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
}

// handleIndex sends authenticated clients to the upload page and
// everyone else to the login form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := s.sessions.FromRequest(r); err == nil {
		http.Redirect(w, r, "/upload", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

const claimsKey ctxKey = "session_claims"

// claimsFromContext returns the authenticated identity installed by
// requireAuthenticated.
func claimsFromContext(ctx context.Context) *session.Claims {
	c, _ := ctx.Value(claimsKey).(*session.Claims)
	return c
}

// requireAuthenticated guards protected routes. Anonymous requests are
// redirected to the login form with a warning notice before any other
// request processing happens.
func (s *Server) requireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.sessions.FromRequest(r)
		if err != nil {
			setFlash(w, "warning", "Please log in to access this page.")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
