package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matteoferri/habitlens-engine/internal/core/domain"
)

var _ domain.AnalyticsRepository = (*CachedAnalyticsRepository)(nil)

const groupMetricsTTL = 30 * time.Minute

// CachedAnalyticsRepository keeps the latest group metrics in Redis so the
// read path skips Postgres between recomputes. Writes go through to the
// backing store and invalidate the cached entry.
type CachedAnalyticsRepository struct {
	next  domain.AnalyticsRepository
	cache *redis.Client
}

func NewCachedAnalyticsRepository(next domain.AnalyticsRepository, cache *redis.Client) *CachedAnalyticsRepository {
	return &CachedAnalyticsRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedAnalyticsRepository) metricsKey(groupID string) string {
	return fmt.Sprintf("group_metrics:%s", groupID)
}

func (r *CachedAnalyticsRepository) GetLatestGroupMetrics(ctx context.Context, groupID string) (*domain.GroupDynamicsResult, error) {
	key := r.metricsKey(groupID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var result domain.GroupDynamicsResult
		if err := json.Unmarshal([]byte(val), &result); err == nil {
			return &result, nil
		}

		log.Printf("[CACHE] Corrupted metrics for group %s, cleaning up key", groupID)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	result, err := r.next.GetLatestGroupMetrics(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if setErr := r.cache.Set(ctx, key, data, groupMetricsTTL).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return result, nil
}

func (r *CachedAnalyticsRepository) SaveGroupMetrics(ctx context.Context, result *domain.GroupDynamicsResult) error {
	if err := r.next.SaveGroupMetrics(ctx, result); err != nil {
		return err
	}
	if err := r.cache.Del(ctx, r.metricsKey(result.GroupID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate metrics for group %s: %v", result.GroupID, err)
	}
	return nil
}

func (r *CachedAnalyticsRepository) SaveHabitSnapshot(ctx context.Context, snap *domain.HabitSnapshot) error {
	return r.next.SaveHabitSnapshot(ctx, snap)
}

func (r *CachedAnalyticsRepository) SaveCorrelation(ctx context.Context, result *domain.CorrelationResult) error {
	return r.next.SaveCorrelation(ctx, result)
}

func (r *CachedAnalyticsRepository) PurgeStale(ctx context.Context, olderThan time.Time) (int64, error) {
	return r.next.PurgeStale(ctx, olderThan)
}
