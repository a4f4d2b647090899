package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reverse-market/internal/services"
)

// NotificationHandler serves the in-app notification inbox
type NotificationHandler struct {
	notifications *services.NotificationService
	log           *zap.Logger
}

func NewNotificationHandler(notifications *services.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		log:           log.Named("notifications"),
	}
}

// GET /api/v1/notifications?page=
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	inbox, err := h.notifications.Inbox(c.Request.Context(), userID, pageQuery(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "", inbox)
}

// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	count, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "", gin.H{"unread": count})
}

// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "", gin.H{"id": id})
}

// POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	updated, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "", gin.H{"updated": updated})
}
