package clients

import (
	"context"
	"fmt"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/minhajsf/Plan-it/internal/provider"
)

const defaultCacheSize = 128

// Factory builds a provider for one user
type Factory func(ctx context.Context, userID int64) (provider.Provider, error)

// Manager keeps per-user provider instances. The cache is bounded so idle
// users are evicted, and concurrent first requests for the same user share
// one construction.
type Manager struct {
	cache   *lru.Cache[int64, provider.Provider]
	group   singleflight.Group
	factory Factory
	logger  *zap.Logger
}

// NewManager creates a manager. A size <= 0 uses the default.
func NewManager(size int, factory Factory, logger *zap.Logger) (*Manager, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cache, err := lru.New[int64, provider.Provider](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create client cache: %w", err)
	}

	return &Manager{cache: cache, factory: factory, logger: logger}, nil
}

// ProviderFor returns the user's provider, building it on first use
func (m *Manager) ProviderFor(ctx context.Context, userID int64) (provider.Provider, error) {
	if p, ok := m.cache.Get(userID); ok {
		return p, nil
	}

	v, err, shared := m.group.Do(strconv.FormatInt(userID, 10), func() (any, error) {
		// Check again: a previous flight may have filled it
		if p, ok := m.cache.Get(userID); ok {
			return p, nil
		}

		p, err := m.factory(ctx, userID)
		if err != nil {
			return nil, err
		}
		m.cache.Add(userID, p)
		m.logger.Debug("provider created", zap.Int64("user_id", userID))
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create provider for user %d: %w", userID, err)
	}
	if shared {
		m.logger.Debug("provider construction shared", zap.Int64("user_id", userID))
	}

	return v.(provider.Provider), nil
}

// Evict drops the cached provider, e.g. after the user re-authorizes
func (m *Manager) Evict(userID int64) {
	m.cache.Remove(userID)
}

// Len reports how many providers are cached
func (m *Manager) Len() int {
	return m.cache.Len()
}
