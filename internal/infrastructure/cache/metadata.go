package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jmanzanog/MarketDataService/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "metadata:"

// probeTimeout bounds the single connectivity check at startup.
const probeTimeout = 2 * time.Second

// MetadataCache stores resolved ticker metadata keyed by ISIN in Redis.
//
// The cache is a pure optimization: every failure mode (backend down, read
// error, write error) degrades to a miss and is logged, never propagated.
// Connectivity is probed exactly once at construction; if the probe fails the
// cache stays disabled for the process lifetime so a flaky backend cannot add
// latency to the resolution hot path.
type MetadataCache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	enabled bool
}

// NewMetadataCache connects to the Redis backend at addr and probes it.
func NewMetadataCache(addr string, db int, ttl time.Duration) *MetadataCache {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DB:          db,
		DialTimeout: probeTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis not available, metadata caching disabled", "addr", addr, "error", err)
		return &MetadataCache{enabled: false}
	}

	slog.Info("Metadata cache (Redis) initialized", "addr", addr, "ttl", ttl)
	return &MetadataCache{client: client, ttl: ttl, enabled: true}
}

// NewDisabledCache returns a cache that never stores anything. Useful for
// tests and for running without a Redis backend.
func NewDisabledCache() *MetadataCache {
	return &MetadataCache{enabled: false}
}

// NewMetadataCacheWithClient wires an existing Redis client (for testing).
func NewMetadataCacheWithClient(client redis.UniversalClient, ttl time.Duration) *MetadataCache {
	return &MetadataCache{client: client, ttl: ttl, enabled: true}
}

// Enabled reports whether the backend probe succeeded at startup.
func (c *MetadataCache) Enabled() bool {
	return c.enabled
}

// Get returns the cached TickerInfo for an ISIN, or nil on a miss. A disabled
// cache or any backend error also reads as a miss.
func (c *MetadataCache) Get(ctx context.Context, isin string) *domain.TickerInfo {
	if !c.enabled {
		return nil
	}

	data, err := c.client.Get(ctx, keyPrefix+isin).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.ErrorContext(ctx, "Error reading from metadata cache", "isin", isin, "error", err)
		}
		return nil
	}

	var info domain.TickerInfo
	if err := json.Unmarshal(data, &info); err != nil {
		slog.ErrorContext(ctx, "Corrupt metadata cache entry", "isin", isin, "error", err)
		return nil
	}

	slog.DebugContext(ctx, "Metadata cache hit", "isin", isin)
	return &info
}

// Set writes TickerInfo for an ISIN with the configured TTL. Failures are
// logged and swallowed.
func (c *MetadataCache) Set(ctx context.Context, isin string, info domain.TickerInfo) {
	if !c.enabled {
		return
	}

	data, err := json.Marshal(info)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to marshal ticker info", "isin", isin, "error", err)
		return
	}

	if err := c.client.Set(ctx, keyPrefix+isin, data, c.ttl).Err(); err != nil {
		slog.ErrorContext(ctx, "Error writing to metadata cache", "isin", isin, "error", err)
		return
	}

	slog.DebugContext(ctx, "Cached metadata", "isin", isin)
}
