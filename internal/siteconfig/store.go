package siteconfig

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/console-client/internal/api/dto"
	"github.com/spec-kit/console-client/internal/domain"
	"github.com/spec-kit/console-client/internal/observability"
)

const siteConfigPath = "/api/public/site-config"

// API is the slice of the request gateway the store needs.
type API interface {
	Get(ctx context.Context, path string, out any) error
}

// Store caches the public site configuration.
type Store struct {
	api    API
	logger *zap.Logger

	mu     sync.RWMutex
	cfg    domain.SiteConfig
	loaded bool
}

// NewStore returns a store holding the defaults.
func NewStore(api API, logger *zap.Logger) *Store {
	return &Store{
		api:    api,
		logger: observability.OrNop(logger),
		cfg:    domain.DefaultSiteConfig(),
	}
}

// Load fetches the configuration unless a snapshot is already cached.
func (s *Store) Load(ctx context.Context) error {
	if s.Loaded() {
		return nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches the configuration and replaces the whole snapshot.
// On failure the previous snapshot stays in place.
func (s *Store) Refresh(ctx context.Context) error {
	var resp dto.SiteConfigResponse
	if err := s.api.Get(ctx, siteConfigPath, &resp); err != nil {
		s.logger.Warn("site config fetch failed", zap.Error(err))
		return fmt.Errorf("load site config: %w", err)
	}
	cfg := resp.ToDomain()

	s.mu.Lock()
	s.cfg = cfg
	s.loaded = true
	s.mu.Unlock()

	s.logger.Debug("site config loaded", zap.String("site_name", cfg.SiteName))
	return nil
}

// Get returns a copy of the current snapshot.
func (s *Store) Get() domain.SiteConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Loaded reports whether a fetch has succeeded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
