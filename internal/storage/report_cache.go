package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AnkitGupta1803/portfolio-dashboard/internal/types"
)

// reportKey is the single key the latest assembled report lives under.
// Reports are whole-cycle artifacts, so there is nothing to key by beyond
// the report itself.
const reportKey = "report:latest"

// ReportCache stores the most recent serialized PortfolioReport in Redis
// with a TTL. It is an optional warm layer in front of a full rebuild: a
// nil *ReportCache is valid and behaves as a cache that always misses.
type ReportCache struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewReportCache creates a report cache with the given TTL
func NewReportCache(redisCache *RedisCache, ttl time.Duration) *ReportCache {
	return &ReportCache{
		redis: redisCache,
		ttl:   ttl,
	}
}

// Get returns the cached report, or found=false on a miss or when the
// cache is absent.
func (c *ReportCache) Get(ctx context.Context) (*types.PortfolioReport, bool, error) {
	if c == nil || c.redis == nil {
		return nil, false, nil
	}

	data, err := c.redis.Get(ctx, reportKey)
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached report: %w", err)
	}

	var report types.PortfolioReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}

	return &report, true, nil
}

// Set stores the report under the configured TTL, overwriting any prior one
func (c *ReportCache) Set(ctx context.Context, report *types.PortfolioReport) error {
	if c == nil || c.redis == nil {
		return nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	return c.redis.Set(ctx, reportKey, data, c.ttl)
}

// Invalidate drops the cached report
func (c *ReportCache) Invalidate(ctx context.Context) error {
	if c == nil || c.redis == nil {
		return nil
	}
	return c.redis.Del(ctx, reportKey)
}
