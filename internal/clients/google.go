package clients

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/minhajsf/Plan-it/internal/provider"
)

// ErrNotConnected means the user has not authorized Google access yet
var ErrNotConnected = errors.New("google account not connected")

// TokenStore is the subset of the database used for OAuth tokens
type TokenStore interface {
	GetGoogleToken(userID int64) (*oauth2.Token, error)
	UpdateGoogleToken(userID int64, token *oauth2.Token) error
}

// GoogleFactory builds Google providers from the user's stored token.
// Refreshed tokens are written back to the store.
func GoogleFactory(config *oauth2.Config, store TokenStore, logger *zap.Logger) Factory {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(ctx context.Context, userID int64) (provider.Provider, error) {
		token, err := store.GetGoogleToken(userID)
		if err != nil {
			return nil, err
		}
		if token == nil {
			return nil, ErrNotConnected
		}

		// The client outlives the request that created it
		base := context.WithoutCancel(ctx)
		source := &persistingTokenSource{
			base:   config.TokenSource(base, token),
			userID: userID,
			store:  store,
			last:   token.AccessToken,
			logger: logger,
		}
		httpClient := oauth2.NewClient(base, oauth2.ReuseTokenSource(token, source))

		p, err := provider.NewGoogleFromHTTP(base, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create google provider: %w", err)
		}
		return p, nil
	}
}

// persistingTokenSource saves every newly issued access token
type persistingTokenSource struct {
	base   oauth2.TokenSource
	userID int64
	store  TokenStore
	logger *zap.Logger

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		s.last = token.AccessToken
		if err := s.store.UpdateGoogleToken(s.userID, token); err != nil {
			s.logger.Warn("failed to save refreshed token", zap.Int64("user_id", s.userID), zap.Error(err))
		}
	}
	return token, nil
}
