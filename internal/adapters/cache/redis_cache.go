package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gigworks/gigtax/internal/core/domain"
	portsrepo "github.com/gigworks/gigtax/internal/core/ports/repositories"
	"github.com/go-redis/redis/v8"
)

const summaryKeyPrefix = "gigtax:summary:"

// RedisReportCache caches computed period summaries in redis. Keys are
// namespaced per user so a single ingestion can drop everything the user has
// cached.
type RedisReportCache struct {
	client *redis.Client
}

var _ portsrepo.ReportCache = (*RedisReportCache)(nil)

func NewRedisReportCache(client *redis.Client) *RedisReportCache {
	return &RedisReportCache{client: client}
}

func (c *RedisReportCache) GetSummary(ctx context.Context, key string) (*domain.PeriodSummary, error) {
	payload, err := c.client.Get(ctx, summaryKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading cached summary: %w", err)
	}

	var summary domain.PeriodSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, fmt.Errorf("error decoding cached summary: %w", err)
	}
	return &summary, nil
}

func (c *RedisReportCache) PutSummary(ctx context.Context, key string, summary domain.PeriodSummary, ttl time.Duration) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("error encoding summary for cache: %w", err)
	}
	if err := c.client.Set(ctx, summaryKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("error caching summary: %w", err)
	}
	return nil
}

// InvalidateUser drops every cached summary for the user. Summary keys start
// with the user id, so a prefix scan finds them all.
func (c *RedisReportCache) InvalidateUser(ctx context.Context, userID string) error {
	pattern := summaryKeyPrefix + userID + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("error invalidating cached summary %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning cached summaries: %w", err)
	}
	return nil
}
