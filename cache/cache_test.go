package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestOTPStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	store := NewOTPStore(client)

	_, err := store.Get(ctx, "0790000000")
	assert.ErrorIs(t, err, ErrOTPNotFound)

	require.NoError(t, store.Save(ctx, "0790000000", "hash-1", time.Minute))
	hash, err := store.Get(ctx, "0790000000")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", hash)

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, "0790000000")
	assert.ErrorIs(t, err, ErrOTPNotFound)

	require.NoError(t, store.Save(ctx, "0790000000", "hash-2", time.Minute))
	require.NoError(t, store.Delete(ctx, "0790000000"))
	_, err = store.Get(ctx, "0790000000")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestOTPStore_BurnsAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	_, client := setupRedis(t)
	store := NewOTPStore(client)

	require.NoError(t, store.Save(ctx, "0791111111", "hash", time.Minute))

	for i := 1; i < MaxOTPAttempts; i++ {
		left, err := store.RecordFailure(ctx, "0791111111")
		require.NoError(t, err)
		assert.Equal(t, MaxOTPAttempts-i, left)
	}

	left, err := store.RecordFailure(ctx, "0791111111")
	require.NoError(t, err)
	assert.Zero(t, left)

	_, err = store.Get(ctx, "0791111111")
	assert.ErrorIs(t, err, ErrOTPNotFound)
}

func TestOTPStore_SaveResetsAttempts(t *testing.T) {
	ctx := context.Background()
	_, client := setupRedis(t)
	store := NewOTPStore(client)

	require.NoError(t, store.Save(ctx, "0792222222", "old", time.Minute))
	_, err := store.RecordFailure(ctx, "0792222222")
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "0792222222", "new", time.Minute))
	left, err := store.RecordFailure(ctx, "0792222222")
	require.NoError(t, err)
	assert.Equal(t, MaxOTPAttempts-1, left)
}

func TestRateLimiter_Window(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	limiter := NewRateLimiter(client)

	for i := 0; i < 3; i++ {
		ok, _, err := limiter.Allow(ctx, "otp:0790000000", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "hit %d", i+1)
	}

	ok, retry, err := limiter.Allow(ctx, "otp:0790000000", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retry, time.Duration(0))
	assert.LessOrEqual(t, retry, time.Minute)

	ok, _, err = limiter.Allow(ctx, "otp:0781111111", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "other keys are independent")

	mr.FastForward(time.Minute + time.Second)
	ok, _, err = limiter.Allow(ctx, "otp:0790000000", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSequencer_RestartsPerDay(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	seq := NewSequencer(client)

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	for want := 1; want <= 3; want++ {
		n, err := seq.Next(ctx, day1)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	n, err := seq.Next(ctx, day2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.True(t, mr.Exists("order_seq:2026-03-01"))
	assert.Equal(t, sequenceTTL, mr.TTL("order_seq:2026-03-01"))
}

func TestOTPStore_FailureAfterExpiryLeavesNoKey(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	store := NewOTPStore(client)

	require.NoError(t, store.Save(ctx, "0793333333", "hash", time.Minute))
	mr.FastForward(2 * time.Minute)

	left, err := store.RecordFailure(ctx, "0793333333")
	assert.ErrorIs(t, err, ErrOTPNotFound)
	assert.Zero(t, left)
	assert.False(t, mr.Exists(otpKey("0793333333")))

	require.NoError(t, store.Save(ctx, "0793333333", "hash", time.Minute))
	_, err = store.RecordFailure(ctx, "0793333333")
	require.NoError(t, err)
	assert.Positive(t, mr.TTL(otpKey("0793333333")))
}
