// Package cache is a TTL cache-aside front for repository reads. Keys follow
// entity:tenant[:qualifier...] so one prefix sweep invalidates everything a
// mutation may have staled for that tenant.
package cache

import (
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/agendahub/agenda-api/pkg/metrics"
)

type Cache struct {
	store   *gocache.Cache
	metrics *metrics.Metrics
}

func New(ttl, cleanupInterval time.Duration, m *metrics.Metrics) *Cache {
	return &Cache{
		store:   gocache.New(ttl, cleanupInterval),
		metrics: m,
	}
}

// Key builds an entry key. With no qualifiers the result doubles as the
// invalidation prefix for (entity, tenant).
func Key(entity string, tenant uuid.UUID, qualifiers ...string) string {
	parts := append([]string{entity, tenant.String()}, qualifiers...)
	return strings.Join(parts, ":")
}

// Fetch returns the cached value under key, or runs load, stores the result
// and returns it. Load errors are never cached.
func Fetch[T any](c *Cache, key string, load func() (T, error)) (T, error) {
	if raw, ok := c.store.Get(key); ok {
		if value, ok := raw.(T); ok {
			c.hit(key)
			return value, nil
		}
	}
	c.miss(key)

	value, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	c.store.Set(key, value, gocache.DefaultExpiration)
	return value, nil
}

func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// InvalidatePrefix drops every entry whose key starts with prefix, typically
// Key(entity, tenant).
func (c *Cache) InvalidatePrefix(prefix string) {
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}
}

// InvalidateTenant drops the tenant's entries across all entities.
func (c *Cache) InvalidateTenant(tenant uuid.UUID) {
	needle := ":" + tenant.String()
	for key := range c.store.Items() {
		if strings.Contains(key, needle) {
			c.store.Delete(key)
		}
	}
}

func (c *Cache) hit(key string) {
	if c.metrics != nil {
		c.metrics.CacheHits.WithLabelValues(entityOf(key)).Inc()
	}
}

func (c *Cache) miss(key string) {
	if c.metrics != nil {
		c.metrics.CacheMisses.WithLabelValues(entityOf(key)).Inc()
	}
}

func entityOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
