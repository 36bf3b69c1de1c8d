package main

import (
	"context"
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
	"github.com/minhajsf/Plan-it/internal/logging"
	"github.com/minhajsf/Plan-it/internal/server"
)

const sessionSweepInterval = time.Hour

func main() {
	cfg := config.LoadFromEnv()

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		fatal("creating logger", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		fatal("initialization", err)
	}
	defer a.Close()

	srv := server.New(server.ServerConfig{
		DB:          a.DB,
		Assistant:   a.Orchestrator,
		AuthService: a.Auth,
		Providers:   a.Providers,
		Port:        cfg.HTTPPort,
		Logger:      logger,
		TurnTimeout: 6 * cfg.CallTimeout,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	if a.Auth != nil {
		go sweepSessions(ctx, a.Auth, logger)
	}

	waitForShutdown(cancel, srv, logger)
}

// sweepSessions removes expired sessions until ctx is cancelled
func sweepSessions(ctx context.Context, authService *auth.Service, logger *zap.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := authService.CleanupExpiredSessions(); err != nil {
				logger.Warn("failed to clean up expired sessions", zap.Error(err))
			}
		}
	}
}

func fatal(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}

func waitForShutdown(cancel context.CancelFunc, srv *server.Server, logger *zap.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("shutting down")
	cancel()

	ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("HTTP server shutdown", zap.Error(err))
	}
}
