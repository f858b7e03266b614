package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

// AccountRoutes registers the auth, profile, preference and notification
// endpoints every member role gets under its own prefix.
type AccountRoutes struct {
	role  models.Role
	h     Handlers
	guard Guard
}

func NewAccountRoutes(role models.Role, h Handlers, guard Guard) *AccountRoutes {
	return &AccountRoutes{role: role, h: h, guard: guard}
}

func (r *AccountRoutes) RegisterRoutes(router *gin.RouterGroup) {
	base := router.Group("/" + string(r.role))

	auth := base.Group("/auth")
	{
		// Public routes
		auth.POST("/register", r.h.Auth.Register(r.role))
		auth.POST("/login", r.h.Auth.Login(r.role))
		auth.POST("/token/refresh", r.h.Auth.Refresh(r.role))

		// Protected routes
		auth.POST("/logout", append(r.guard.Require(r.role), r.h.Auth.Logout)...)
	}

	protected := base.Group("")
	protected.Use(r.guard.Require(r.role)...)
	{
		protected.GET("/profile", r.h.User.GetProfile)
		protected.PATCH("/profile", r.h.User.UpdateProfile)
		protected.POST("/profile/change-password", r.h.Auth.ChangePassword)

		protected.GET("/privacy-security", r.h.User.GetPrivacy)
		protected.PATCH("/privacy-security", r.h.User.UpdatePrivacy)
		protected.GET("/terms-conditions", r.h.User.GetTerms)
		protected.PATCH("/terms-conditions", r.h.User.UpdateTerms)

		notifications := protected.Group("/notifications")
		notifications.GET("", r.h.Notification.List)
		notifications.GET("/unread-count", r.h.Notification.UnreadCount)
		notifications.POST("/mark-all-read", r.h.Notification.MarkAllRead)
		notifications.GET("/:id", r.h.Notification.Get)
		notifications.PATCH("/:id/read", r.h.Notification.MarkRead)
		notifications.DELETE("/:id", r.h.Notification.Delete)
	}
}
