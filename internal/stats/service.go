package stats

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/excellence-college/school-portal/internal/cache"
	"github.com/excellence-college/school-portal/internal/models"
)

const (
	publicKey  = "stats:public"
	adminKey   = "stats:admin"
	keyPattern = "stats:*"
)

type statsClient interface {
	PublicStats(ctx context.Context) (*models.PublicStats, error)
	AdminStats(ctx context.Context, token string) (*models.Stats, error)
}

// Config tunes cache TTLs per payload.
type Config struct {
	PublicTTL time.Duration
	AdminTTL  time.Duration
}

// Service serves server-aggregated statistics through a short redis cache.
// The payloads are recomputed by the backend; this layer only re-fetches.
type Service struct {
	client statsClient
	cache  *cache.Service
	cfg    Config
	logger *zap.Logger
}

// NewService constructs a stats service.
func NewService(client statsClient, cacheSvc *cache.Service, cfg Config, logger *zap.Logger) *Service {
	if cfg.PublicTTL <= 0 {
		cfg.PublicTTL = 5 * time.Minute
	}
	if cfg.AdminTTL <= 0 {
		cfg.AdminTTL = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, cache: cacheSvc, cfg: cfg, logger: logger}
}

// Public returns the unauthenticated stats subset for the home page.
func (s *Service) Public(ctx context.Context) (*models.PublicStats, error) {
	var cached models.PublicStats
	if s.cache.Get(ctx, publicKey, &cached) {
		return &cached, nil
	}

	stats, err := s.client.PublicStats(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, publicKey, stats, s.cfg.PublicTTL)
	return stats, nil
}

// Admin returns the aggregated dashboard analytics.
func (s *Service) Admin(ctx context.Context, token string) (*models.Stats, error) {
	var cached models.Stats
	if s.cache.Get(ctx, adminKey, &cached) {
		return &cached, nil
	}

	stats, err := s.client.AdminStats(ctx, token)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, adminKey, stats, s.cfg.AdminTTL)
	return stats, nil
}

// Invalidate drops cached stats so the next read reflects a mutation.
func (s *Service) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, keyPattern)
}
