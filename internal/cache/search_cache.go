// Package cache provides a Redis-backed cache for ranked search results.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cloo-solutions/corpusai/internal/domain"
	"github.com/cloo-solutions/corpusai/internal/service"
)

// Verify interface compliance
var _ service.ResultCache = (*SearchCache)(nil)

const (
	searchKeyPrefix = "search:"
	// DefaultTTL keeps entries short-lived so stale rankings age out quickly.
	DefaultTTL = 60 * time.Second
)

// SearchCache stores ranked result sets in Redis. All operations are
// best-effort: Redis trouble is logged and the search proceeds uncached.
type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSearchCache creates a SearchCache. A non-positive ttl uses DefaultTTL.
func NewSearchCache(client *redis.Client, ttl time.Duration) *SearchCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SearchCache{client: client, ttl: ttl}
}

// Get returns the cached results for key, or false on miss or Redis trouble.
func (c *SearchCache) Get(ctx context.Context, key string) ([]*domain.SearchResult, bool) {
	data, err := c.client.Get(ctx, searchKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("search cache get failed: %v", err)
		}
		return nil, false
	}

	var results []*domain.SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		log.Printf("search cache entry corrupt, dropping: %v", err)
		c.client.Del(ctx, searchKeyPrefix+key)
		return nil, false
	}
	return results, true
}

// Set stores results under key with the configured TTL.
func (c *SearchCache) Set(ctx context.Context, key string, results []*domain.SearchResult) {
	data, err := json.Marshal(results)
	if err != nil {
		log.Printf("search cache marshal failed: %v", err)
		return
	}
	if err := c.client.Set(ctx, searchKeyPrefix+key, data, c.ttl).Err(); err != nil {
		log.Printf("search cache set failed: %v", err)
	}
}
