package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

// riskKeyPrefix namespaces cached risk summaries; the lookback window in
// hours completes the key.
const riskKeyPrefix = "risk:summary:"

// RiskCache implements domain.RiskCache using Redis string keys holding
// JSON-encoded summaries with a TTL.
type RiskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRiskCache creates a RiskCache backed by the given Client. Entries
// expire after ttl.
func NewRiskCache(c *Client, ttl time.Duration) *RiskCache {
	return &RiskCache{rdb: c.Underlying(), ttl: ttl}
}

func riskKey(hours int) string {
	return riskKeyPrefix + strconv.Itoa(hours)
}

// Get retrieves the cached summary for a lookback window. It returns
// domain.ErrNotFound on a cache miss.
func (rc *RiskCache) Get(ctx context.Context, hours int) (domain.RiskSummary, error) {
	data, err := rc.rdb.Get(ctx, riskKey(hours)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.RiskSummary{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.RiskSummary{}, fmt.Errorf("redis: get risk summary %dh: %w", hours, err)
	}

	var summary domain.RiskSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return domain.RiskSummary{}, fmt.Errorf("redis: decode risk summary %dh: %w", hours, err)
	}
	return summary, nil
}

// Set stores a summary for a lookback window with the configured TTL.
func (rc *RiskCache) Set(ctx context.Context, hours int, summary domain.RiskSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("redis: encode risk summary %dh: %w", hours, err)
	}
	if err := rc.rdb.Set(ctx, riskKey(hours), data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set risk summary %dh: %w", hours, err)
	}
	return nil
}

// Invalidate drops every cached window. Keys are discovered with SCAN so a
// large keyspace is never blocked.
func (rc *RiskCache) Invalidate(ctx context.Context) error {
	iter := rc.rdb.Scan(ctx, 0, riskKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis: scan risk summaries: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := rc.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis: invalidate risk summaries: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.RiskCache = (*RiskCache)(nil)
