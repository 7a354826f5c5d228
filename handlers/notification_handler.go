package handlers

import (
	"errors"
	"net/http"

	"helpdesk-system/internal/status"
	"helpdesk-system/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(e *core.RequestEvent) error {
	session := RequestSession(e)

	notifications, err := h.notifications.ListForUser(e.Request.Context(), session.UserID, session.Role)
	if err != nil {
		return apis.NewApiError(http.StatusServiceUnavailable, "Failed to fetch notifications", err)
	}

	return e.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(e *core.RequestEvent) error {
	session := RequestSession(e)
	notificationID := e.Request.PathValue("notificationId")

	err := h.notifications.MarkRead(e.Request.Context(), notificationID, session.UserID, session.Role)
	if errors.Is(err, status.ErrNotificationNotFound) {
		return apis.NewNotFoundError("Notification not found", err)
	}
	if err != nil {
		return apis.NewBadRequestError("Failed to mark notification as read", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *NotificationHandler) MarkAllRead(e *core.RequestEvent) error {
	session := RequestSession(e)

	flipped, err := h.notifications.MarkAllRead(e.Request.Context(), session.UserID, session.Role)
	if err != nil {
		// Partial success: report what was flipped alongside the error.
		return e.JSON(http.StatusMultiStatus, map[string]any{
			"marked": flipped,
			"error":  err.Error(),
		})
	}

	return e.JSON(http.StatusOK, map[string]any{"marked": flipped})
}

func (h *NotificationHandler) UnreadCount(e *core.RequestEvent) error {
	session := RequestSession(e)

	count, err := h.notifications.UnreadCount(e.Request.Context(), session.UserID, session.Role)
	if err != nil {
		return apis.NewApiError(http.StatusServiceUnavailable, "Failed to fetch unread count", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"unread": count})
}
