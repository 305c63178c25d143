package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"
	"ai-art-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// NotificationServiceImpl implements ports.NotificationService.
type NotificationServiceImpl struct {
	notificationRepo ports.NotificationRepository
	log              zerolog.Logger
}

// NewNotificationService creates a new NotificationServiceImpl.
func NewNotificationService(notificationRepo ports.NotificationRepository, log zerolog.Logger) *NotificationServiceImpl {
	return &NotificationServiceImpl{notificationRepo: notificationRepo, log: log}
}

// List returns the user's notifications, newest first.
func (s *NotificationServiceImpl) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	notifications, err := s.notificationRepo.ListByUser(ctx, userID, unreadOnly, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list notifications: %w", err))
	}
	return notifications, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	err := s.notificationRepo.MarkRead(ctx, userID, notificationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.ErrNotFound("notification")
		}
		return apperror.InternalError(fmt.Errorf("mark notification read: %w", err))
	}
	return nil
}

// MarkAllRead marks every unread notification for the user as read.
func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		return apperror.InternalError(fmt.Errorf("mark all notifications read: %w", err))
	}
	return nil
}

// UnreadCount returns the number of unread notifications for the user.
func (s *NotificationServiceImpl) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("count unread notifications: %w", err))
	}
	return count, nil
}

// EventSource drains marketplace events for delivery. Implemented by the
// Redis notification queue.
type EventSource interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*domain.Event, error)
}

// dispatchPollTimeout bounds each blocking dequeue so the dispatcher notices
// context cancellation promptly.
const dispatchPollTimeout = 5 * time.Second

// Dispatcher drains the event queue and persists notification rows. Run it
// in its own goroutine; it exits when the context is cancelled.
type Dispatcher struct {
	source           EventSource
	notificationRepo ports.NotificationRepository
	log              zerolog.Logger
}

// NewDispatcher creates a notification dispatcher.
func NewDispatcher(source EventSource, notificationRepo ports.NotificationRepository, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{source: source, notificationRepo: notificationRepo, log: log}
}

// Run loops until ctx is cancelled. Dequeue or persistence errors are logged
// and the loop continues; an event that fails to persist is dropped.
func (d *Dispatcher) Run(ctx context.Context) {
	d.log.Info().Msg("notification dispatcher started")
	for {
		if ctx.Err() != nil {
			d.log.Info().Msg("notification dispatcher stopped")
			return
		}

		event, err := d.source.Dequeue(ctx, dispatchPollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				d.log.Info().Msg("notification dispatcher stopped")
				return
			}
			d.log.Error().Err(err).Msg("failed to dequeue notification event")
			time.Sleep(time.Second)
			continue
		}
		if event == nil {
			continue
		}

		if err := d.deliver(ctx, event); err != nil {
			d.log.Error().Err(err).
				Str("kind", string(event.Kind)).
				Str("user_id", event.UserID.String()).
				Msg("failed to deliver notification")
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event *domain.Event) error {
	notification := &domain.Notification{
		ID:        uuid.New(),
		UserID:    event.UserID,
		Kind:      event.Kind,
		Title:     event.Title,
		Message:   event.Message,
		Link:      "/artworks/" + event.ArtworkID.String(),
		CreatedAt: time.Now().UTC(),
	}
	return d.notificationRepo.Create(ctx, notification)
}
