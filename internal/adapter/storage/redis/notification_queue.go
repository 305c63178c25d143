package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-art-marketplace/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NotificationQueue implements ports.NotificationSink over a Redis list.
// Settlements push events after commit; a dispatcher drains the list and
// persists notification rows. A lost event never fails or rolls back a
// settlement.
type NotificationQueue struct {
	client *goredis.Client
	key    string
	log    zerolog.Logger
}

// NewNotificationQueue creates a Redis-backed notification queue.
func NewNotificationQueue(client *goredis.Client, log zerolog.Logger) *NotificationQueue {
	return &NotificationQueue{
		client: client,
		key:    "notification_events",
		log:    log,
	}
}

// Emit enqueues an event. Failures are logged and swallowed.
func (q *NotificationQueue) Emit(ctx context.Context, event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		q.log.Error().Err(err).Msg("Failed to encode notification event")
		return
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		q.log.Error().Err(err).
			Str("kind", string(event.Kind)).
			Str("user_id", event.UserID.String()).
			Msg("Failed to enqueue notification event")
	}
}

// Dequeue blocks up to the given timeout for the next event. Returns
// (nil, nil) when the timeout elapses with an empty queue.
func (q *NotificationQueue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.Event, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue notification event: %w", err)
	}
	// BRPOP returns [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("dequeue notification event: unexpected reply length %d", len(res))
	}

	event := &domain.Event{}
	if err := json.Unmarshal([]byte(res[1]), event); err != nil {
		return nil, fmt.Errorf("decode notification event: %w", err)
	}
	return event, nil
}
