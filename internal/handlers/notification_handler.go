package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/responses"
	"github.com/nahid2887/padzzey-sub000/internal/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /api/v1/{role}/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	role, userID := currentUser(c)
	list, err := h.notificationService.List(c.Request.Context(), role, userID, queryBool(c, "is_read"))
	if err != nil {
		fail(c, err, "Failed to retrieve notifications")
		return
	}
	responses.Success(c, http.StatusOK, list, "Notifications retrieved successfully")
}

// UnreadCount handles GET /api/v1/{role}/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	role, userID := currentUser(c)
	count, err := h.notificationService.UnreadCount(c.Request.Context(), role, userID)
	if err != nil {
		fail(c, err, "Failed to count notifications")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"unread_count": count}, "Unread count retrieved successfully")
}

// MarkAllRead handles POST /api/v1/{role}/notifications/mark-all-read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	role, userID := currentUser(c)
	n, err := h.notificationService.MarkAllRead(c.Request.Context(), role, userID)
	if err != nil {
		fail(c, err, "Failed to mark notifications as read")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"updated_count": n}, "All notifications marked as read")
}

// Get handles GET /api/v1/{role}/notifications/:id
func (h *NotificationHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	role, userID := currentUser(c)
	n, err := h.notificationService.Get(c.Request.Context(), role, userID, id)
	if err != nil {
		fail(c, err, "Failed to retrieve notification")
		return
	}
	responses.Success(c, http.StatusOK, n, "Notification retrieved successfully")
}

// MarkRead handles PATCH /api/v1/{role}/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	role, userID := currentUser(c)
	n, err := h.notificationService.MarkRead(c.Request.Context(), role, userID, id)
	if err != nil {
		fail(c, err, "Failed to mark notification as read")
		return
	}
	responses.Success(c, http.StatusOK, n, "Notification marked as read")
}

// Delete handles DELETE /api/v1/{role}/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	role, userID := currentUser(c)
	if err := h.notificationService.Delete(c.Request.Context(), role, userID, id); err != nil {
		fail(c, err, "Failed to delete notification")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Notification deleted successfully")
}
