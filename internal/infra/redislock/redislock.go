// Package redislock serializes bookings for one resource/date across API
// instances with SET NX PX and a compare-and-delete release.
package redislock

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domain "github.com/BruksfildServices01/salon-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

const keyPrefix = "salon-scheduler:lock:"

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	log    zerolog.Logger
}

func New(client *redis.Client, ttl time.Duration, log zerolog.Logger) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Locker{
		client: client,
		ttl:    ttl,
		wait:   ttl / 2,
		retry:  25 * time.Millisecond,
		log:    log.With().Str("component", "redislock").Logger(),
	}
}

// Lock waits up to half the TTL for the key. A busy key becomes a
// Conflict so the client can retry.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	full := keyPrefix + key
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, full, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return l.releaser(full, token), nil
		}

		if time.Now().After(deadline) {
			return nil, httperr.Conflict(
				"resource_busy",
				"Another booking for this time is being processed. Please retry.",
			)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

func (l *Locker) releaser(key, token string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			l.log.Warn().Err(err).Str("key", key).Msg("lock release failed")
		}
	}
}

var _ domain.Locker = (*Locker)(nil)
