package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpportunityRecord is what was last reported for an opportunity key.
type OpportunityRecord struct {
	EdgePercentage float64   `json:"edge_percentage"`
	SportsbookOdds int       `json:"sportsbook_odds"`
	KalshiPrice    int       `json:"kalshi_price"`
	RunID          string    `json:"run_id"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OpportunityCache remembers reported opportunities so repeated scans only
// surface new or improved edges.
type OpportunityCache interface {
	Get(ctx context.Context, key string) (*OpportunityRecord, bool, error)
	Set(ctx context.Context, key string, record OpportunityRecord) error
	Close() error
}

type redisOpportunityCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisOpportunityCache builds a cache keyed by models.Opportunity.Key.
func NewRedisOpportunityCache(opts Options) (OpportunityCache, error) {
	client, err := opts.client()
	if err != nil {
		return nil, err
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "opp_seen"
	}
	return &redisOpportunityCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisOpportunityCache) key(k string) string {
	return fmt.Sprintf("%s:%s", c.prefix, k)
}

func (c *redisOpportunityCache) Get(ctx context.Context, key string) (*OpportunityRecord, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var record OpportunityRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, fmt.Errorf("decode opportunity record %s: %w", key, err)
	}
	return &record, true, nil
}

func (c *redisOpportunityCache) Set(ctx context.Context, key string, record OpportunityRecord) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), payload, c.ttl).Err()
}

func (c *redisOpportunityCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
