package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MaxOTPAttempts is how many wrong codes burn a pending OTP.
const MaxOTPAttempts = 5

var ErrOTPNotFound = errors.New("no pending code for this phone")

type OTPStore struct {
	rdb redis.Cmdable
}

func NewOTPStore(rdb redis.Cmdable) *OTPStore {
	return &OTPStore{rdb: rdb}
}

// Save replaces any pending code for phone and resets its attempt counter.
func (s *OTPStore) Save(ctx context.Context, phone, codeHash string, ttl time.Duration) error {
	key := otpKey(phone)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, "hash", codeHash, "attempts", 0)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

// Get returns the stored code hash.
func (s *OTPStore) Get(ctx context.Context, phone string) (string, error) {
	hash, err := s.rdb.HGet(ctx, otpKey(phone), "hash").Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get otp: %w", err)
	}
	return hash, nil
}

// RecordFailure counts a wrong code and returns the attempts left. At zero
// the code is deleted. If the code expired in the meantime the increment
// would create a hash without a TTL; that hash is removed and
// ErrOTPNotFound returned.
func (s *OTPStore) RecordFailure(ctx context.Context, phone string) (int, error) {
	key := otpKey(phone)
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.HIncrBy(ctx, key, "attempts", 1)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("record otp failure: %w", err)
	}

	if ttl.Val() < 0 {
		if err := s.Delete(ctx, phone); err != nil {
			return 0, err
		}
		return 0, ErrOTPNotFound
	}

	left := MaxOTPAttempts - int(incr.Val())
	if left <= 0 {
		return 0, s.Delete(ctx, phone)
	}
	return left, nil
}

func (s *OTPStore) Delete(ctx context.Context, phone string) error {
	if err := s.rdb.Del(ctx, otpKey(phone)).Err(); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}
