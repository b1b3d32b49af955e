package crawler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"laptopprj/internal/observability"
)

const pageKeyPrefix = "page:"

// CachedFetcher keeps fetched pages in Redis so a re-run inside the TTL does
// not hit the site again. Redis failures are logged and bypassed.
type CachedFetcher struct {
	Next   Fetcher
	Client PageStore
	TTL    time.Duration
}

// PageStore is the part of *redis.Client the cache uses.
type PageStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

func (c *CachedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	key := pageKeyPrefix + url

	val, err := c.Client.Get(ctx, key).Result()
	switch {
	case err == nil:
		observability.PageCacheHits.Inc()
		return val, nil
	case !errors.Is(err, redis.Nil):
		log.Printf("[cache] erro lendo %s: %v", key, err)
	}

	html, err := c.Next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if err := c.Client.Set(ctx, key, html, c.TTL).Err(); err != nil {
		log.Printf("[cache] erro gravando %s: %v", key, err)
	}
	return html, nil
}
