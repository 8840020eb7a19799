package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"shawarma-sheesh-api/sms"

	"github.com/gin-gonic/gin"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
}

// RateLimit rejects requests with 429 once key(c) exceeds limit hits per
// window. An empty key skips the check. Limiter failures let the request
// through.
func RateLimit(limiter Limiter, limit int, window time.Duration, key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := key(c)
		if k == "" {
			c.Next()
			return
		}

		ok, retryAfter, err := limiter.Allow(c.Request.Context(), k, limit, window)
		if err != nil {
			c.Error(err)
			c.Next()
			return
		}
		if !ok {
			seconds := int(retryAfter.Round(time.Second).Seconds())
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests, try again later",
				"retry_after": seconds,
			})
			return
		}
		c.Next()
	}
}

// PhoneKey keys a limit on the normalized "phone" field of the JSON body,
// leaving the body readable for the handler. Invalid numbers get no key; the
// handler rejects them before any SMS is sent.
func PhoneKey(prefix string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return ""
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		var input struct {
			Phone string `json:"phone"`
		}
		if err := json.Unmarshal(body, &input); err != nil {
			return ""
		}
		phone, ok := sms.NormalizePhone(input.Phone)
		if !ok {
			return ""
		}
		return prefix + phone
	}
}

// IPKey keys a limit on the client address.
func IPKey(prefix string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		return prefix + c.ClientIP()
	}
}
