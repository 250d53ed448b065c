package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrQuotaExceeded = errors.New("quota: daily limit reached")

// QuotaService counts per-day usage in redis. Counters expire the day after
// they start so nothing needs cleaning up.
type QuotaService struct {
	rdb *redis.Client
	now func() time.Time
}

func NewQuotaService(rdb *redis.Client) *QuotaService {
	return &QuotaService{rdb: rdb, now: time.Now}
}

func NewRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     GetEnv("ASYNC_BROKER_ADDRESS", "127.0.0.1:6379"),
		Password: GetEnv("ASYNC_BROKER_PASSWORD", ""),
	})
}

func (q *QuotaService) key(kind string, accountID uint) string {
	return fmt.Sprintf("wardrobe:quota:%s:%d:%s", kind, accountID, q.now().UTC().Format("2006-01-02"))
}

// Consume takes one unit of the account's daily allowance and returns how
// many were used including this one. A nil limit means unlimited.
func (q *QuotaService) Consume(ctx context.Context, kind string, accountID uint, limit *int64) (int64, error) {
	key := q.key(kind, accountID)

	pipe := q.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, 48*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("quota: failed to count usage: %w", err)
	}

	used := incr.Val()
	if limit != nil && used > *limit {
		q.rdb.Decr(ctx, key)
		return used - 1, ErrQuotaExceeded
	}
	return used, nil
}

// Release gives a unit back, for work that was accepted but could not be queued.
func (q *QuotaService) Release(ctx context.Context, kind string, accountID uint) error {
	return q.rdb.Decr(ctx, q.key(kind, accountID)).Err()
}

func (q *QuotaService) Used(ctx context.Context, kind string, accountID uint) (int64, error) {
	used, err := q.rdb.Get(ctx, q.key(kind, accountID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return used, err
}
