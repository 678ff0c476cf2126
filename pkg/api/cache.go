package api

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/seqtransit/seqtransit/pkg/ctdf"
)

const DefaultCacheTTL = 60 * time.Second

// ResponseCache holds serialised responses for a short time, tagged by mode so a new
// publication can drop everything served from the old one
type ResponseCache struct {
	cache *cache.Cache[string]
}

func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(ttl))

	return &ResponseCache{
		cache: cache.New[string](redisStore),
	}
}

func modeTag(mode ctdf.TransportType) string {
	return fmt.Sprintf("mode:%s", mode)
}

func (r *ResponseCache) Get(ctx context.Context, key string) (string, bool) {
	if r == nil {
		return "", false
	}

	value, err := r.cache.Get(ctx, key)
	if err != nil {
		return "", false
	}
	return value, true
}

func (r *ResponseCache) Set(ctx context.Context, mode ctdf.TransportType, key string, value string) {
	if r == nil {
		return
	}

	if err := r.cache.Set(ctx, key, value, store.WithTags([]string{modeTag(mode)})); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to cache response")
	}
}

func (r *ResponseCache) InvalidateMode(ctx context.Context, mode ctdf.TransportType) error {
	if r == nil {
		return nil
	}

	return r.cache.Invalidate(ctx, store.WithInvalidateTags([]string{modeTag(mode)}))
}
