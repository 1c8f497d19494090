package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sitepulse/backend/internal/application/entitlement"
	"github.com/sitepulse/backend/internal/infrastructure/config"
)

const statusKeyPrefix = "sitepulse:feature_status"

// RedisStatusCache stores resolved feature statuses in Redis so entitlement
// lookups on the hot path skip the database.
type RedisStatusCache struct {
	client     redis.UniversalClient
	ownsClient bool
	logger     *zap.Logger
}

// RedisStatusCacheOption configures a RedisStatusCache.
type RedisStatusCacheOption func(*RedisStatusCache)

// WithRedisClient injects an existing client. The cache will not close it.
func WithRedisClient(client redis.UniversalClient) RedisStatusCacheOption {
	return func(c *RedisStatusCache) {
		c.client = client
		c.ownsClient = false
	}
}

// NewRedisStatusCache creates a Redis-backed status cache and verifies
// connectivity with a short ping.
func NewRedisStatusCache(cfg config.RedisConfig, logger *zap.Logger, opts ...RedisStatusCacheOption) (*RedisStatusCache, error) {
	c := &RedisStatusCache{logger: logger}
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr(),
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		c.ownsClient = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		if c.ownsClient {
			_ = c.client.Close()
		}
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return c, nil
}

func statusKey(tenantID uuid.UUID, featureKey string) string {
	return fmt.Sprintf("%s:%s:%s", statusKeyPrefix, tenantID, featureKey)
}

func tenantPattern(tenantID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:*", statusKeyPrefix, tenantID)
}

// Get returns the cached status, or nil on a miss.
func (c *RedisStatusCache) Get(ctx context.Context, tenantID uuid.UUID, featureKey string) (*entitlement.FeatureStatus, error) {
	data, err := c.client.Get(ctx, statusKey(tenantID, featureKey)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feature status: %w", err)
	}

	var status entitlement.FeatureStatus
	if err := json.Unmarshal(data, &status); err != nil {
		// Corrupted entry, drop it and treat as a miss.
		c.logger.Warn("Dropping corrupted feature status cache entry",
			zap.String("tenant_id", tenantID.String()),
			zap.String("feature_key", featureKey),
			zap.Error(err))
		_ = c.client.Del(ctx, statusKey(tenantID, featureKey)).Err()
		return nil, nil
	}
	return &status, nil
}

// Set stores a resolved status with the given TTL.
func (c *RedisStatusCache) Set(ctx context.Context, tenantID uuid.UUID, featureKey string, status *entitlement.FeatureStatus, ttl time.Duration) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal feature status: %w", err)
	}
	if err := c.client.Set(ctx, statusKey(tenantID, featureKey), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set feature status: %w", err)
	}
	return nil
}

// Invalidate removes every cached status for a tenant using SCAN, so large
// keyspaces are walked without blocking Redis.
func (c *RedisStatusCache) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, tenantPattern(tenantID), 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan feature status keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete feature status keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close closes the underlying client if this cache created it.
func (c *RedisStatusCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ entitlement.StatusCache = (*RedisStatusCache)(nil)
