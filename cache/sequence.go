package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sequenceTTL = 48 * time.Hour

// Sequencer hands out order numbers that restart at 1 every day.
type Sequencer struct {
	rdb redis.Cmdable
}

func NewSequencer(rdb redis.Cmdable) *Sequencer {
	return &Sequencer{rdb: rdb}
}

func (s *Sequencer) Next(ctx context.Context, day time.Time) (int, error) {
	key := sequenceKey(day)

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, sequenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return int(incr.Val()), nil
}
