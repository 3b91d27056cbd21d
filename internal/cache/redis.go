package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSummaryTTL bounds how long a whole-video summary is reused before it
// is regenerated.
const DefaultSummaryTTL = 24 * time.Hour

// RedisCache caches whole-video summaries. Summaries are expensive to build
// (one model call per transcript batch plus a merge) and a video's transcript
// never changes, so a cache hit saves the entire hierarchy.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Config holds Redis connection configuration
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedisCache creates a RedisCache and verifies the connection.
func NewRedisCache(ctx context.Context, cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func summaryKey(videoID string) string {
	return "summary:" + videoID
}

// GetSummary returns the cached summary for a video. A miss is (_, false, nil).
func (c *RedisCache) GetSummary(ctx context.Context, videoID string) (string, bool, error) {
	val, err := c.client.Get(ctx, summaryKey(videoID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read summary cache: %w", err)
	}
	return val, true, nil
}

// SetSummary stores a summary with the configured TTL.
func (c *RedisCache) SetSummary(ctx context.Context, videoID, summary string) error {
	if err := c.client.Set(ctx, summaryKey(videoID), summary, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write summary cache: %w", err)
	}
	return nil
}

// InvalidateSummary drops the cached summary for a video.
func (c *RedisCache) InvalidateSummary(ctx context.Context, videoID string) error {
	if err := c.client.Del(ctx, summaryKey(videoID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate summary cache: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
