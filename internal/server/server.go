package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/minhajsf/Plan-it/internal/auth"
	"github.com/minhajsf/Plan-it/internal/database"
	"github.com/minhajsf/Plan-it/internal/orchestrator"
)

// Assistant handles one utterance for one user
type Assistant interface {
	Handle(ctx context.Context, u orchestrator.Utterance) orchestrator.Reply
}

// ProviderCache drops a user's cached provider after their credentials change
type ProviderCache interface {
	Evict(userID int64)
}

type Server struct {
	db             *database.DB
	assistant      Assistant
	authService    *auth.Service
	authMiddleware *auth.Middleware
	providers      ProviderCache
	logger         *zap.Logger
	httpSrv        *http.Server
	port           int
}

// ServerConfig holds everything the HTTP surface needs
type ServerConfig struct {
	DB        *database.DB
	Assistant Assistant
	// AuthService is nil when no Google credentials are configured
	AuthService *auth.Service
	// Sessions validates bearer tokens. Defaults to AuthService when nil.
	Sessions    auth.SessionValidator
	Providers   ProviderCache
	Port        int
	Logger      *zap.Logger
	// TurnTimeout bounds a whole prompt request, which makes several external calls
	TurnTimeout time.Duration
}

func New(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		db:          cfg.DB,
		assistant:   cfg.Assistant,
		authService: cfg.AuthService,
		providers:   cfg.Providers,
		logger:      logger,
		port:        cfg.Port,
	}
	switch {
	case cfg.Sessions != nil:
		s.authMiddleware = auth.NewMiddleware(cfg.Sessions)
	case cfg.AuthService != nil:
		s.authMiddleware = auth.NewMiddleware(cfg.AuthService)
	}

	writeTimeout := 15 * time.Second
	if cfg.TurnTimeout+5*time.Second > writeTimeout {
		writeTimeout = cfg.TurnTimeout + 5*time.Second
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.corsMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", s.handleHealthCheck)

	// Google account connection
	mux.HandleFunc("GET /api/auth/google/login", s.handleAuthGoogleLogin)
	mux.HandleFunc("GET /oauth/callback", s.handleOAuthCallback)
	mux.HandleFunc("POST /api/auth/logout", s.handleAuthLogout)
	mux.Handle("GET /api/auth/me", s.requireAuth(s.handleAuthMe))

	// Assistant API
	mux.Handle("POST /api/prompt", s.requireAuth(s.handlePrompt))
	mux.Handle("GET /api/records", s.requireAuth(s.handleListRecords))
	mux.Handle("PUT /api/user/timezone", s.requireAuth(s.handleUpdateTimezone))
}

// requireAuth guards a handler with the session middleware when auth is configured
func (s *Server) requireAuth(h http.HandlerFunc) http.Handler {
	if s.authMiddleware == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusServiceUnavailable, "authentication not configured")
		})
	}
	return s.authMiddleware.RequireAuth(h)
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", fmt.Sprintf("http://localhost:%d", s.port)))
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the server's HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// corsMiddleware adds CORS headers for browser clients
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
