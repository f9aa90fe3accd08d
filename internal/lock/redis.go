package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"erp-backend/internal/core"
)

const keyPrefix = "erp:lock:"

// Redis shares the lock discipline between server instances. Each key is a
// redislock lease with a TTL, so a crashed holder cannot block a key forever.
type Redis struct {
	client  *redislock.Client
	ttl     time.Duration
	wait    time.Duration
	backoff time.Duration
	log     *zap.Logger
}

// NewRedis builds a locker on rdb. ttl bounds how long a key can be held;
// wait bounds how long Lock waits for a busy key.
func NewRedis(rdb *redis.Client, ttl, wait time.Duration, log *zap.Logger) *Redis {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &Redis{client: redislock.New(rdb), ttl: ttl, wait: wait, backoff: 25 * time.Millisecond, log: log}
}

func (r *Redis) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	held := make([]*redislock.Lock, 0, len(keys))

	unlock := func() {
		// Release must not depend on the caller's possibly cancelled context.
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Release(relCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				r.log.Warn("failed to release lock", zap.String("key", held[i].Key()), zap.Error(err))
			}
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, r.wait)
	defer cancel()

	for _, k := range keys {
		l, err := r.client.Obtain(waitCtx, keyPrefix+k, r.ttl, &redislock.Options{
			RetryStrategy: redislock.LinearBackoff(r.backoff),
		})
		if err != nil {
			unlock()
			if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s is busy, retry later", core.ErrConflict, k)
			}
			return nil, fmt.Errorf("failed to obtain lock %s: %w", k, err)
		}
		held = append(held, l)
	}

	var once sync.Once
	return func() { once.Do(unlock) }, nil
}
