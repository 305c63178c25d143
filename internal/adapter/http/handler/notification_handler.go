package handler

import (
	"strconv"
	"time"

	"ai-art-marketplace/internal/adapter/http/dto"
	"ai-art-marketplace/internal/core/domain"
	"ai-art-marketplace/internal/core/ports"
	"ai-art-marketplace/pkg/apperror"
	"ai-art-marketplace/pkg/response"

	"github.com/gin-gonic/gin"
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	notificationSvc ports.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationSvc ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// List handles GET /api/v1/notifications.
// Query params: unread_only, limit.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	unreadOnly := c.Query("unread_only") == "true"
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	notifications, err := h.notificationSvc.List(c.Request.Context(), userID, unreadOnly, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, toNotificationResponse(n))
	}
	response.OK(c, items)
}

// MarkRead handles POST /api/v1/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}
	notificationID, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.ErrNotFound("notification"))
		return
	}

	if err := h.notificationSvc.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"marked_read": true})
}

// MarkAllRead handles POST /api/v1/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	if err := h.notificationSvc.MarkAllRead(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"marked_read": true})
}

// UnreadCount handles GET /api/v1/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	count, err := h.notificationSvc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"unread": count})
}

func toNotificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID.String(),
		Kind:      string(n.Kind),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}
