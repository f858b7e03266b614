package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type CommonRoutes struct {
	h     Handlers
	guard Guard
}

func NewCommonRoutes(h Handlers, guard Guard) *CommonRoutes {
	return &CommonRoutes{h: h, guard: guard}
}

func (r *CommonRoutes) RegisterRoutes(router *gin.RouterGroup) {
	common := router.Group("/common")
	{
		common.POST("/forgot-password", r.h.Common.ForgotPassword)
		common.POST("/verify-otp", r.h.Common.VerifyOTP)
		common.POST("/reset-password", r.h.Common.ResetPassword)

		legal := common.Group("/legal-documents")
		legal.Use(r.guard.Require(models.MemberRoles...)...)
		legal.GET("", r.h.Common.LegalDocuments)
		legal.GET("/:document_type", r.h.Common.LegalDocument)
	}
}
