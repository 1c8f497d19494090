package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sitepulse/backend/internal/application/entitlement"
)

type memoryEntry struct {
	status    *entitlement.FeatureStatus
	expiresAt time.Time
}

func (e memoryEntry) expired() bool {
	return time.Now().After(e.expiresAt)
}

// MemoryStatusCache is a process-local status cache for development and for
// deployments that run without Redis.
type MemoryStatusCache struct {
	entries sync.Map // string -> memoryEntry
	stopCh  chan struct{}
	once    sync.Once
}

// NewMemoryStatusCache creates an in-memory status cache with a background
// sweep that evicts expired entries.
func NewMemoryStatusCache() *MemoryStatusCache {
	c := &MemoryStatusCache{stopCh: make(chan struct{})}
	go c.sweep()
	return c
}

func (c *MemoryStatusCache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.entries.Range(func(key, value any) bool {
				if value.(memoryEntry).expired() {
					c.entries.Delete(key)
				}
				return true
			})
		case <-c.stopCh:
			return
		}
	}
}

// Get returns the cached status, or nil on a miss.
func (c *MemoryStatusCache) Get(_ context.Context, tenantID uuid.UUID, featureKey string) (*entitlement.FeatureStatus, error) {
	value, ok := c.entries.Load(statusKey(tenantID, featureKey))
	if !ok {
		return nil, nil
	}
	entry := value.(memoryEntry)
	if entry.expired() {
		c.entries.Delete(statusKey(tenantID, featureKey))
		return nil, nil
	}
	copied := *entry.status
	return &copied, nil
}

// Set stores a resolved status with the given TTL.
func (c *MemoryStatusCache) Set(_ context.Context, tenantID uuid.UUID, featureKey string, status *entitlement.FeatureStatus, ttl time.Duration) error {
	copied := *status
	c.entries.Store(statusKey(tenantID, featureKey), memoryEntry{
		status:    &copied,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Invalidate removes every cached status for a tenant.
func (c *MemoryStatusCache) Invalidate(_ context.Context, tenantID uuid.UUID) error {
	prefix := statusKeyPrefix + ":" + tenantID.String() + ":"
	c.entries.Range(func(key, _ any) bool {
		if strings.HasPrefix(key.(string), prefix) {
			c.entries.Delete(key)
		}
		return true
	})
	return nil
}

// Close stops the background sweep.
func (c *MemoryStatusCache) Close() error {
	c.once.Do(func() { close(c.stopCh) })
	return nil
}

var _ entitlement.StatusCache = (*MemoryStatusCache)(nil)
