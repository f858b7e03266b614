package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type MessagingRoutes struct {
	h     Handlers
	guard Guard
}

func NewMessagingRoutes(h Handlers, guard Guard) *MessagingRoutes {
	return &MessagingRoutes{h: h, guard: guard}
}

func (r *MessagingRoutes) RegisterRoutes(router *gin.RouterGroup) {
	messaging := router.Group("/messaging")
	messaging.Use(r.guard.Require(models.MemberRoles...)...)
	{
		messaging.GET("/unread-count", r.h.Messaging.UnreadCount)

		conversations := messaging.Group("/conversations")
		conversations.GET("", r.h.Messaging.List)
		conversations.POST("", r.h.Messaging.Open)
		conversations.GET("/:id", r.h.Messaging.Get)
		conversations.DELETE("/:id", r.h.Messaging.Delete)
		conversations.GET("/:id/messages", r.h.Messaging.Messages)
		conversations.POST("/:id/messages", r.h.Messaging.Send)
		conversations.POST("/:id/read", r.h.Messaging.MarkRead)
		conversations.POST("/:id/clear", r.h.Messaging.Clear)
	}

	// Tokens arrive as ?token= on websocket upgrades.
	ws := router.Group("/ws")
	ws.Use(r.guard.Require(models.MemberRoles...)...)
	{
		ws.GET("/chat/:conversation_id", r.h.Messaging.ChatSocket)
		ws.GET("/notifications", r.h.Messaging.NotificationSocket)
	}
}
