package cache

import (
	"go.uber.org/zap"

	"github.com/sitepulse/backend/internal/application/entitlement"
	"github.com/sitepulse/backend/internal/infrastructure/config"
)

// NewStatusCache builds the feature status cache for the current deployment.
// When Redis is enabled but unreachable it falls back to the in-memory cache
// rather than failing startup, since entitlement resolution works without a
// cache at all.
func NewStatusCache(cfg config.RedisConfig, logger *zap.Logger) entitlement.StatusCache {
	if cfg.Enabled {
		redisCache, err := NewRedisStatusCache(cfg, logger)
		if err == nil {
			logger.Info("Using Redis feature status cache", zap.String("addr", cfg.Addr()))
			return redisCache
		}
		logger.Warn("Redis unavailable, falling back to in-memory feature status cache",
			zap.String("addr", cfg.Addr()),
			zap.Error(err))
	}
	return NewMemoryStatusCache()
}
