package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/minhajsf/Plan-it/internal/auth"
	"github.com/minhajsf/Plan-it/internal/clients"
	"github.com/minhajsf/Plan-it/internal/completion"
	"github.com/minhajsf/Plan-it/internal/config"
	"github.com/minhajsf/Plan-it/internal/database"
	"github.com/minhajsf/Plan-it/internal/gcal"
	"github.com/minhajsf/Plan-it/internal/orchestrator"
	"github.com/minhajsf/Plan-it/internal/provider"
)

// ErrNoCredentials means Google OAuth credentials were not found at startup
var ErrNoCredentials = errors.New("google credentials not configured")

// App holds the wired components shared by the server and the CLI
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	DB           *database.DB
	Gateway      completion.Gateway
	OAuthConfig  *oauth2.Config
	Auth         *auth.Service
	Providers    *clients.Manager
	Orchestrator *orchestrator.Orchestrator
}

type options struct {
	gateway completion.Gateway
	factory clients.Factory
}

// Option overrides a component during wiring
type Option func(*options)

// WithGateway replaces the configured completion backend
func WithGateway(g completion.Gateway) Option {
	return func(o *options) { o.gateway = g }
}

// WithProviderFactory replaces the Google provider factory
func WithProviderFactory(f clients.Factory) Option {
	return func(o *options) { o.factory = f }
}

// WithProvider serves one provider to every user
func WithProvider(p provider.Provider) Option {
	return WithProviderFactory(func(ctx context.Context, userID int64) (provider.Provider, error) {
		return p, nil
	})
}

// New opens the database, builds the completion gateway and provider cache,
// and wires the orchestrator. Missing Google credentials are not fatal:
// the app still starts and provider calls report ErrNoCredentials.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	db, err := database.New(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &App{Config: cfg, Logger: logger, DB: db}

	a.Gateway = o.gateway
	if a.Gateway == nil {
		a.Gateway, err = completion.New(ctx, completion.Options{
			Backend:      cfg.CompletionBackend,
			ClaudeAPIKey: cfg.AnthropicAPIKey,
			ClaudeModel:  cfg.ClaudeModel,
			GeminiAPIKey: cfg.GeminiAPIKey,
			GeminiModel:  cfg.GeminiModel,
			Temperature:  cfg.Temperature,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create completion gateway: %w", err)
		}
	}
	logger.Info("completion gateway configured", zap.String("backend", cfg.CompletionBackend))

	oauthConfig, err := gcal.LoadOAuthConfig(cfg.GoogleCredentialsFile)
	if err != nil {
		logger.Warn("google credentials not found, account connection disabled", zap.Error(err))
	} else {
		a.OAuthConfig = oauthConfig
		a.Auth = auth.NewService(db, oauthConfig, logger)
	}

	factory := o.factory
	if factory == nil {
		factory = a.googleFactory()
	}
	a.Providers, err = clients.NewManager(cfg.ClientCacheSize, factory, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create provider cache: %w", err)
	}

	a.Orchestrator = orchestrator.New(a.Gateway, db, a.Providers, orchestrator.Options{
		CallTimeout:     cfg.CallTimeout,
		ConfirmRemovals: cfg.ConfirmRemovals,
		DefaultTimezone: cfg.DefaultTimezone,
	}, logger)

	return a, nil
}

func (a *App) googleFactory() clients.Factory {
	if a.OAuthConfig == nil {
		return func(ctx context.Context, userID int64) (provider.Provider, error) {
			return nil, ErrNoCredentials
		}
	}
	return clients.GoogleFactory(a.OAuthConfig, a.DB, a.Logger)
}

// Close releases the database
func (a *App) Close() error {
	return a.DB.Close()
}
