// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// response.go provides a Valkey-backed cache of encoded API responses.
// CMS reads (post pages, search results) are cached as the exact JSON
// bytes sent to the client, so a hit skips the CMS and encoding entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"tastetrail/internal/metrics"
)

const (
	// responseKeyPrefix is the Valkey key prefix for cached responses.
	responseKeyPrefix = "resp:"

	// DefaultResponseTTL is how long an encoded response stays cached.
	DefaultResponseTTL = 5 * time.Minute
)

// ResponseCache stores encoded responses under one named keyspace
// ("posts", "search", ...).
type ResponseCache struct {
	client *redis.Client
	name   string
	ttl    time.Duration
	group  singleflight.Group
}

// NewResponseCache creates a response cache for the named keyspace.
func NewResponseCache(client *redis.Client, name string, ttl time.Duration) *ResponseCache {
	if ttl == 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{client: client, name: name, ttl: ttl}
}

func (rc *ResponseCache) key(k string) string {
	return responseKeyPrefix + rc.name + ":" + k
}

// Get retrieves a cached response. Errors are logged and reported as a miss.
func (rc *ResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := rc.client.Get(ctx, rc.key(key)).Bytes()
	if err == redis.Nil {
		metrics.CacheLookups.WithLabelValues(rc.name, "miss").Inc()
		return nil, false
	}
	if err != nil {
		slog.Warn("response cache get error", "cache", rc.name, "key", key, "error", err)
		metrics.CacheLookups.WithLabelValues(rc.name, "error").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues(rc.name, "hit").Inc()
	return val, true
}

// Set stores an encoded response with the configured TTL.
func (rc *ResponseCache) Set(ctx context.Context, key string, body []byte) {
	if err := rc.client.Set(ctx, rc.key(key), body, rc.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "cache", rc.name, "key", key, "error", err)
	}
}

// Load returns the cached response for key. On a miss, fill runs once for
// all concurrent callers of the same key and its result is cached. fill
// keeps running if the caller that started it goes away.
func (rc *ResponseCache) Load(ctx context.Context, key string, fill func(context.Context) ([]byte, error)) ([]byte, error) {
	if body, ok := rc.Get(ctx, key); ok {
		return body, nil
	}
	v, err, shared := rc.group.Do(key, func() (any, error) {
		fillCtx := context.WithoutCancel(ctx)
		body, err := fill(fillCtx)
		if err != nil {
			return nil, err
		}
		rc.Set(fillCtx, key, body)
		return body, nil
	})
	if shared {
		metrics.CacheLookups.WithLabelValues(rc.name, "shared").Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// InvalidateAll removes every entry in this cache's keyspace.
func (rc *ResponseCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := rc.client.Scan(ctx, cursor, rc.key("*"), 100).Result()
		if err != nil {
			slog.Warn("response cache scan error", "cache", rc.name, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("response cache bulk delete error", "cache", rc.name, "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("response cache cleared", "cache", rc.name, "deleted", deleted)
	}
}

// Key derives a fixed-length cache key from request parts. Parts are
// joined with a separator that cannot appear in JSON-encoded input.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:16])
}
