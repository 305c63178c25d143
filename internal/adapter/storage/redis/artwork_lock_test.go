package redis

import (
	"context"
	"testing"
	"time"

	"ai-art-marketplace/pkg/apperror"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T, acquireTimeout time.Duration) (*ArtworkLock, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	return NewArtworkLock(client, acquireTimeout, 10*time.Second, zerolog.Nop()), s
}

func TestArtworkLock_AcquireAndRelease(t *testing.T) {
	lock, s := newTestLock(t, time.Second)
	ctx := context.Background()
	artworkID := uuid.New()

	release, err := lock.Acquire(ctx, artworkID)
	require.NoError(t, err)
	assert.True(t, s.Exists("artwork_lock:"+artworkID.String()))

	release(ctx)
	assert.False(t, s.Exists("artwork_lock:"+artworkID.String()))
}

func TestArtworkLock_ContendedTimesOut(t *testing.T) {
	lock, _ := newTestLock(t, 100*time.Millisecond)
	ctx := context.Background()
	artworkID := uuid.New()

	release, err := lock.Acquire(ctx, artworkID)
	require.NoError(t, err)
	defer release(ctx)

	_, err = lock.Acquire(ctx, artworkID)
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "SYS_002", appErr.Code)
}

func TestArtworkLock_AcquireAfterRelease(t *testing.T) {
	lock, _ := newTestLock(t, 500*time.Millisecond)
	ctx := context.Background()
	artworkID := uuid.New()

	release, err := lock.Acquire(ctx, artworkID)
	require.NoError(t, err)
	release(ctx)

	release2, err := lock.Acquire(ctx, artworkID)
	require.NoError(t, err)
	release2(ctx)
}

func TestArtworkLock_DifferentArtworksIndependent(t *testing.T) {
	lock, _ := newTestLock(t, 100*time.Millisecond)
	ctx := context.Background()

	release1, err := lock.Acquire(ctx, uuid.New())
	require.NoError(t, err)
	defer release1(ctx)

	release2, err := lock.Acquire(ctx, uuid.New())
	require.NoError(t, err)
	defer release2(ctx)
}

func TestArtworkLock_ReleaseIsTokenGuarded(t *testing.T) {
	lock, s := newTestLock(t, 100*time.Millisecond)
	ctx := context.Background()
	artworkID := uuid.New()
	key := "artwork_lock:" + artworkID.String()

	release, err := lock.Acquire(ctx, artworkID)
	require.NoError(t, err)

	// Simulate expiry plus re-acquisition by another holder.
	s.Del(key)
	require.NoError(t, s.Set(key, "other-token"))

	release(ctx)
	val, err := s.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "other-token", val, "stale release must not delete a newer holder's lock")
}

func TestArtworkLock_CancelledContext(t *testing.T) {
	lock, _ := newTestLock(t, time.Minute)
	ctx := context.Background()
	artworkID := uuid.New()

	release, err := lock.Acquire(ctx, artworkID)
	require.NoError(t, err)
	defer release(ctx)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = lock.Acquire(cancelled, artworkID)
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "SYS_002", appErr.Code)
}
