// Package cache provides the redis-backed report cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hwshop/internal/domain/reports"
)

const (
	defaultKeyPrefix = "hwshop:reports:"
	defaultTTL       = time.Minute
	scanBatchSize    = 100
	pingTimeout      = 5 * time.Second
)

// Config holds report cache settings.
type Config struct {
	Enabled    bool
	RedisURL   string
	TTLSeconds int
	KeyPrefix  string
}

// ReportCache implements reports.Cache on redis. Values are stored as JSON.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ reports.Cache = (*ReportCache)(nil)

// NewReportCache connects to redis. A disabled config yields reports.NoCache.
func NewReportCache(ctx context.Context, cfg Config) (reports.Cache, error) {
	if !cfg.Enabled {
		return reports.NoCache{}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewReportCacheWithClient(client, cfg), nil
}

// NewReportCacheWithClient wraps an existing client.
func NewReportCacheWithClient(client *redis.Client, cfg Config) *ReportCache {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultTTL
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &ReportCache{client: client, ttl: ttl, prefix: prefix}
}

func (c *ReportCache) key(k string) string {
	return c.prefix + k
}

// Get loads key into dest.
func (c *ReportCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode cached report: %w", err)
	}
	return true, nil
}

// Set stores value under key with the configured TTL.
func (c *ReportCache) Set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := c.client.Set(ctx, c.key(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Invalidate drops every key under the prefix.
func (c *ReportCache) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close releases the redis client.
func (c *ReportCache) Close() error {
	return c.client.Close()
}
