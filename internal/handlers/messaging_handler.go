package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/realtime"
	"github.com/nahid2887/padzzey-sub000/internal/responses"
	"github.com/nahid2887/padzzey-sub000/internal/services"
)

type MessagingHandler struct {
	messagingService *services.MessagingService
	hub              *realtime.Hub
}

func NewMessagingHandler(messagingService *services.MessagingService, hub *realtime.Hub) *MessagingHandler {
	return &MessagingHandler{messagingService: messagingService, hub: hub}
}

// List handles GET /api/v1/messaging/conversations
func (h *MessagingHandler) List(c *gin.Context) {
	role, userID := currentUser(c)
	list, err := h.messagingService.List(c.Request.Context(), role, userID)
	if err != nil {
		fail(c, err, "Failed to retrieve conversations")
		return
	}
	responses.Success(c, http.StatusOK, list, "Conversations retrieved successfully")
}

// Open handles POST /api/v1/messaging/conversations
func (h *MessagingHandler) Open(c *gin.Context) {
	var req services.ConversationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	role, userID := currentUser(c)
	conv, created, err := h.messagingService.Open(c.Request.Context(), role, userID, req)
	if err != nil {
		fail(c, err, "Failed to create conversation")
		return
	}
	if !created {
		responses.Success(c, http.StatusOK, conv, "Conversation already exists")
		return
	}
	responses.Success(c, http.StatusCreated, conv, "Conversation created successfully")
}

// Get handles GET /api/v1/messaging/conversations/:id
func (h *MessagingHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	role, userID := currentUser(c)
	conv, err := h.messagingService.Get(c.Request.Context(), role, userID, id)
	if err != nil {
		fail(c, err, "Failed to retrieve conversation")
		return
	}
	responses.Success(c, http.StatusOK, conv, "Conversation retrieved successfully")
}

// Delete handles DELETE /api/v1/messaging/conversations/:id
func (h *MessagingHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	role, userID := currentUser(c)
	if err := h.messagingService.Delete(c.Request.Context(), role, userID, id); err != nil {
		fail(c, err, "Failed to delete conversation")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Conversation deleted successfully")
}

// Messages handles GET /api/v1/messaging/conversations/:id/messages
func (h *MessagingHandler) Messages(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	role, userID := currentUser(c)
	msgs, err := h.messagingService.Messages(c.Request.Context(), role, userID, id)
	if err != nil {
		fail(c, err, "Failed to retrieve messages")
		return
	}
	responses.Success(c, http.StatusOK, msgs, "Messages retrieved successfully")
}

// Send handles POST /api/v1/messaging/conversations/:id/messages
func (h *MessagingHandler) Send(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err, "Content is required")
		return
	}
	role, userID := currentUser(c)
	msg, err := h.messagingService.Send(c.Request.Context(), role, userID, id, body.Content)
	if err != nil {
		fail(c, err, "Failed to send message")
		return
	}
	responses.Success(c, http.StatusCreated, msg, "Message sent successfully")
}

// MarkRead handles POST /api/v1/messaging/conversations/:id/read
func (h *MessagingHandler) MarkRead(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	role, userID := currentUser(c)
	n, err := h.messagingService.MarkRead(c.Request.Context(), role, userID, id)
	if err != nil {
		fail(c, err, "Failed to mark messages as read")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"updated_count": n}, "Messages marked as read")
}

// UnreadCount handles GET /api/v1/messaging/unread-count
func (h *MessagingHandler) UnreadCount(c *gin.Context) {
	role, userID := currentUser(c)
	n, err := h.messagingService.UnreadCount(c.Request.Context(), role, userID)
	if err != nil {
		fail(c, err, "Failed to count unread messages")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"unread_count": n}, "Unread count retrieved successfully")
}

// Clear handles POST /api/v1/messaging/conversations/:id/clear
func (h *MessagingHandler) Clear(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	role, userID := currentUser(c)
	n, err := h.messagingService.Clear(c.Request.Context(), role, userID, id)
	if err != nil {
		fail(c, err, "Failed to clear conversation")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"deleted_count": n}, "Conversation cleared successfully")
}

// ChatSocket handles GET /api/v1/ws/chat/:conversation_id
func (h *MessagingHandler) ChatSocket(c *gin.Context) {
	id, ok := paramUUID(c, "conversation_id")
	if !ok {
		return
	}
	role, userID := currentUser(c)
	ctx := c.Request.Context()
	history, err := h.messagingService.Messages(ctx, role, userID, id)
	if err != nil {
		fail(c, err, "Failed to join conversation")
		return
	}

	onFrame := func(ctx context.Context, f realtime.Frame) error {
		switch f.Type {
		case services.ChatTyping:
			return h.messagingService.Typing(ctx, role, userID, id)
		case services.ChatRead:
			_, err := h.messagingService.MarkRead(ctx, role, userID, id)
			return err
		default:
			_, err := h.messagingService.Send(ctx, role, userID, id, f.Content)
			return err
		}
	}
	sess := realtime.Session{Role: role, UserID: userID}
	if err := h.hub.ServeChat(c.Writer, c.Request, sess, id, history, onFrame); err != nil {
		_ = c.Error(err)
	}
}

// NotificationSocket handles GET /api/v1/ws/notifications
func (h *MessagingHandler) NotificationSocket(c *gin.Context) {
	role, userID := currentUser(c)
	if err := h.hub.ServeNotifications(c.Writer, c.Request, realtime.Session{Role: role, UserID: userID}); err != nil {
		_ = c.Error(err)
	}
}
