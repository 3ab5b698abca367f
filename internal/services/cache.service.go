package services

import (
	"latencyviz/internal/models"
	"sync"
	"time"
)

// DefaultStatusTTL bounds how often gopsutil is queried
const DefaultStatusTTL = 1 * time.Second

// RuntimeCache holds the last runtime status with a TTL
type RuntimeCache struct {
	mu        sync.RWMutex
	status    *models.RuntimeStatus
	cacheTime time.Time
	ttl       time.Duration
	fetch     func() (*models.RuntimeStatus, error)
}

// NewRuntimeCache caches GetRuntimeStatus for ttl
func NewRuntimeCache(ttl time.Duration) *RuntimeCache {
	return newRuntimeCache(ttl, GetRuntimeStatus)
}

func newRuntimeCache(ttl time.Duration, fetch func() (*models.RuntimeStatus, error)) *RuntimeCache {
	if ttl <= 0 {
		ttl = DefaultStatusTTL
	}
	return &RuntimeCache{ttl: ttl, fetch: fetch}
}

// isValid checks if cache is still valid; callers hold mu
func (c *RuntimeCache) isValid() bool {
	return c.status != nil && time.Since(c.cacheTime) < c.ttl
}

// Get returns cached status if valid, otherwise fetches fresh
func (c *RuntimeCache) Get() (*models.RuntimeStatus, error) {
	c.mu.RLock()
	if c.isValid() {
		defer c.mu.RUnlock()
		return c.status, nil
	}
	c.mu.RUnlock()

	// Fetch fresh data
	status, err := c.fetch()
	if err != nil {
		return nil, err
	}

	// Update cache
	c.mu.Lock()
	c.status = status
	c.cacheTime = time.Now()
	c.mu.Unlock()

	return status, nil
}
