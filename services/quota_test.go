package services

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuota(t *testing.T) (*QuotaService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewQuotaService(rdb), mr
}

func TestQuotaConsume(t *testing.T) {
	q, mr := newTestQuota(t)
	q.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }
	ctx := t.Context()
	limit := int64(2)

	used, err := q.Consume(ctx, "ai_outfits", 7, &limit)
	require.NoError(t, err)
	assert.Equal(t, int64(1), used)

	used, err = q.Consume(ctx, "ai_outfits", 7, &limit)
	require.NoError(t, err)
	assert.Equal(t, int64(2), used)

	used, err = q.Consume(ctx, "ai_outfits", 7, &limit)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, int64(2), used)

	current, err := q.Used(ctx, "ai_outfits", 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), current)

	key := "wardrobe:quota:ai_outfits:7:2025-03-14"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 48*time.Hour, mr.TTL(key))

	other, err := q.Used(ctx, "ai_outfits", 8)
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestQuotaResetsDaily(t *testing.T) {
	q, _ := newTestQuota(t)
	ctx := t.Context()
	limit := int64(1)

	q.now = func() time.Time { return time.Date(2025, 3, 14, 23, 0, 0, 0, time.UTC) }
	_, err := q.Consume(ctx, "analyze", 1, &limit)
	require.NoError(t, err)
	_, err = q.Consume(ctx, "analyze", 1, &limit)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	q.now = func() time.Time { return time.Date(2025, 3, 15, 0, 30, 0, 0, time.UTC) }
	_, err = q.Consume(ctx, "analyze", 1, &limit)
	assert.NoError(t, err)
}

func TestQuotaUnlimitedAndRelease(t *testing.T) {
	q, _ := newTestQuota(t)
	ctx := t.Context()

	for i := 0; i < 5; i++ {
		_, err := q.Consume(ctx, "analyze", 3, nil)
		require.NoError(t, err)
	}
	require.NoError(t, q.Release(ctx, "analyze", 3))

	used, err := q.Used(ctx, "analyze", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), used)
}
