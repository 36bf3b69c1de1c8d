// Package main provides a test server for end-to-end testing of clients.
// It runs with in-memory SQLite, the real completion backend and an in-memory
// provider, so requests are classified and extracted for real while nothing
// reaches Google.
//
// Usage:
//
//	ANTHROPIC_API_KEY=sk-... go run ./cmd/testserver
//
// Every API request authenticates as one test user with the bearer token
// from PLANIT_TEST_TOKEN (default "test-token").
//
// The server exposes additional test control endpoints:
//   - POST /api/test/reset - Remove the test user's records and provider items
//   - GET /api/test/provider - Show the provider item count and sent drafts
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/minhajsf/Plan-it/internal/app"
	"github.com/minhajsf/Plan-it/internal/auth"
	"github.com/minhajsf/Plan-it/internal/config"
	"github.com/minhajsf/Plan-it/internal/database"
	"github.com/minhajsf/Plan-it/internal/logging"
	"github.com/minhajsf/Plan-it/internal/provider"
	"github.com/minhajsf/Plan-it/internal/server"
)

const testUserEmail = "test@planit.local"

// staticSessions accepts a single fixed token for the test user
type staticSessions struct {
	token string
	user  *auth.User
}

func (s staticSessions) ValidateSession(token string) (*auth.User, error) {
	if token != s.token {
		return nil, errors.New("invalid session")
	}
	return s.user, nil
}

func main() {
	cfg := config.LoadFromEnv()
	cfg.DBPath = ":memory:"

	logger, err := logging.New(true)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	mem := provider.NewMemory()
	a, err := app.New(context.Background(), cfg, logger, app.WithProvider(mem))
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer a.Close()

	dbUser, err := a.DB.GetOrCreateUser(testUserEmail)
	if err != nil {
		logger.Fatal("failed to create test user", zap.Error(err))
	}
	if cfg.DefaultTimezone != "" {
		if err := a.DB.UpdateUserTimezone(dbUser.ID, cfg.DefaultTimezone); err != nil {
			logger.Fatal("failed to set test user timezone", zap.Error(err))
		}
	}

	token := os.Getenv("PLANIT_TEST_TOKEN")
	if token == "" {
		token = "test-token"
	}

	srv := server.New(server.ServerConfig{
		DB:        a.DB,
		Assistant: a.Orchestrator,
		Sessions: staticSessions{
			token: token,
			user:  &auth.User{ID: dbUser.ID, Email: dbUser.Email, Timezone: cfg.DefaultTimezone},
		},
		Providers:   a.Providers,
		Port:        cfg.HTTPPort,
		Logger:      logger,
		TurnTimeout: 6 * cfg.CallTimeout,
	})

	testMux := http.NewServeMux()
	testMux.HandleFunc("POST /api/test/reset", handleReset(a.DB, mem, dbUser.ID, logger))
	testMux.HandleFunc("GET /api/test/provider", handleProviderState(mem))
	testMux.Handle("/", srv.Handler())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      testMux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 6*cfg.CallTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		fmt.Printf("\nTest Server running on http://localhost:%d\n", cfg.HTTPPort)
		fmt.Printf("Authenticate with: Authorization: Bearer %s\n", token)
		fmt.Println("\nTest endpoints:")
		fmt.Println("  POST /api/test/reset    - Remove all records and provider items")
		fmt.Println("  GET  /api/test/provider - Show provider state")
		fmt.Println("\nPress Ctrl+C to stop")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down test server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
}

func handleReset(db *database.DB, mem *provider.Memory, userID int64, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := db.ClearRecords(userID)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to reset records: %v", err), http.StatusInternalServerError)
			return
		}
		mem.Reset()

		logger.Info("reset test state", zap.Int64("records_removed", n))
		respondJSON(w, http.StatusOK, map[string]any{"status": "reset", "records_removed": n})
	}
}

func handleProviderState(mem *provider.Memory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sent := mem.Sent()
		drafts := make([]json.RawMessage, 0, len(sent))
		for _, p := range sent {
			drafts = append(drafts, json.RawMessage(p.JSON()))
		}
		respondJSON(w, http.StatusOK, map[string]any{"items": mem.Len(), "sent": drafts})
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
