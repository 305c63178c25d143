package redis

import (
	"context"
	"time"

	"ai-art-marketplace/internal/core/ports"
	"ai-art-marketplace/pkg/apperror"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Polling interval while waiting for a contended lock.
const lockRetryInterval = 25 * time.Millisecond

// Token-guarded release: only the holder that set the key may delete it.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ArtworkLock implements ports.ArtworkLocker using Redis SET NX with a TTL.
// The TTL bounds how long a crashed holder can block an artwork; a healthy
// holder releases explicitly well before it expires.
type ArtworkLock struct {
	client         *goredis.Client
	prefix         string
	acquireTimeout time.Duration
	ttl            time.Duration
	log            zerolog.Logger
}

// NewArtworkLock creates a Redis-backed per-artwork lock.
func NewArtworkLock(client *goredis.Client, acquireTimeout, ttl time.Duration, log zerolog.Logger) *ArtworkLock {
	return &ArtworkLock{
		client:         client,
		prefix:         "artwork_lock:",
		acquireTimeout: acquireTimeout,
		ttl:            ttl,
		log:            log,
	}
}

// Acquire blocks until the per-artwork lock is held or the acquire timeout
// elapses. On timeout it returns apperror.ErrLockTimeout without touching
// the lock.
func (l *ArtworkLock) Acquire(ctx context.Context, artworkID uuid.UUID) (ports.ReleaseFunc, error) {
	key := l.prefix + artworkID.String()
	token := uuid.NewString()
	deadline := time.Now().Add(l.acquireTimeout)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			// A cancelled context surfaces here as a client error; report it
			// as the retryable contention kind, not an internal failure.
			if ctx.Err() != nil {
				return nil, apperror.ErrLockTimeout(ctx.Err())
			}
			return nil, apperror.InternalError(err)
		}
		if ok {
			return l.releaseFunc(key, token, artworkID), nil
		}

		if time.Now().After(deadline) {
			return nil, apperror.ErrLockTimeout(nil)
		}
		select {
		case <-ctx.Done():
			return nil, apperror.ErrLockTimeout(ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}
}

func (l *ArtworkLock) releaseFunc(key, token string, artworkID uuid.UUID) ports.ReleaseFunc {
	return func(ctx context.Context) {
		deleted, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
		if err != nil {
			l.log.Error().Err(err).Str("artwork_id", artworkID.String()).Msg("Failed to release artwork lock")
			return
		}
		if deleted == 0 {
			// Lock expired and may have been re-acquired by another holder.
			l.log.Warn().Str("artwork_id", artworkID.String()).Msg("Artwork lock already released or expired")
		}
	}
}
