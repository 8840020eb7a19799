// Package cache holds the Redis-backed stores: OTP codes, request rate
// limits and the daily order counter.
package cache

import (
	"fmt"
	"time"
)

func otpKey(phone string) string {
	return fmt.Sprintf("otp:%s", phone)
}

func rateLimitKey(key string) string {
	return fmt.Sprintf("ratelimit:%s", key)
}

func sequenceKey(day time.Time) string {
	return fmt.Sprintf("order_seq:%s", day.Format(time.DateOnly))
}
