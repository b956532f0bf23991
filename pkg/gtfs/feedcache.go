package gtfs

import (
	"context"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DefaultFeedCacheExpiration = 6 * time.Hour

// FeedCache keeps downloaded feed archives in Redis so repeated runs against the same URL,
// one per route for example, download it once.
type FeedCache struct {
	cache *cache.Cache[string]
}

func NewFeedCache(client *redis.Client, expiration time.Duration) *FeedCache {
	if expiration <= 0 {
		expiration = DefaultFeedCacheExpiration
	}
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &FeedCache{cache: cache.New[string](redisStore)}
}

func feedCacheKey(source string) string {
	return "routespeed:gtfs:" + source
}

func (f *FeedCache) Get(ctx context.Context, source string) ([]byte, bool) {
	if f == nil {
		return nil, false
	}

	value, err := f.cache.Get(ctx, feedCacheKey(source))
	if err != nil {
		log.Debug().Err(err).Str("source", source).Msg("Feed not cached")
		return nil, false
	}

	return []byte(value), true
}

func (f *FeedCache) Set(ctx context.Context, source string, archive []byte) {
	if f == nil {
		return
	}

	if err := f.cache.Set(ctx, feedCacheKey(source), string(archive)); err != nil {
		log.Warn().Err(err).Str("source", source).Msg("Failed to cache feed")
	}
}
