package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"pricing-service/internal/models"
)

// RecommendationStore persists computed recommendations. Records are keyed
// by (sku, run_id) so one SKU can carry one recommendation per run.
type RecommendationStore interface {
	Put(ctx context.Context, rec models.Recommendation) error
}

// RedisRecommendationStore writes recommendations to Redis as JSON with all
// floating-point fields converted to fixed-point decimals. No TTL is set;
// records are durable until cleaned up externally.
type RedisRecommendationStore struct {
	rdb       *redis.Client
	keyPrefix string
}

func NewRedisRecommendationStore(rdb *redis.Client, keyPrefix string) *RedisRecommendationStore {
	return &RedisRecommendationStore{rdb: rdb, keyPrefix: keyPrefix}
}

// Key returns the store key for one recommendation.
func (s *RedisRecommendationStore) Key(sku, runID string) string {
	return fmt.Sprintf("%s:%s:%s", s.keyPrefix, sku, runID)
}

// Put serializes and writes one recommendation. A failure here is fatal for
// the remainder of the run; already-written records stay in place.
func (s *RedisRecommendationStore) Put(ctx context.Context, rec models.Recommendation) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendation for sku %s: %w", rec.SKU, err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("failed to shape recommendation for sku %s: %w", rec.SKU, err)
	}

	payload, err := json.Marshal(Decimalize(fields))
	if err != nil {
		return fmt.Errorf("failed to encode recommendation for sku %s: %w", rec.SKU, err)
	}

	if err := s.rdb.Set(ctx, s.Key(rec.SKU, rec.RunID), payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to store recommendation for sku %s: %w", rec.SKU, err)
	}
	return nil
}

// Ping reports store reachability for health checks.
func (s *RedisRecommendationStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Decimalize converts every float in a decoded JSON value to a fixed-point
// decimal, recursing through maps and slices. Everything else passes through
// unchanged.
func Decimalize(v interface{}) interface{} {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = Decimalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = Decimalize(val)
		}
		return out
	default:
		return v
	}
}
