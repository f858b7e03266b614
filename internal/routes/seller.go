package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type SellerRoutes struct {
	h     Handlers
	guard Guard
}

func NewSellerRoutes(h Handlers, guard Guard) *SellerRoutes {
	return &SellerRoutes{h: h, guard: guard}
}

func (r *SellerRoutes) RegisterRoutes(router *gin.RouterGroup) {
	seller := router.Group("/seller")
	seller.Use(r.guard.Require(models.RoleSeller)...)
	{
		seller.GET("/agents", r.h.SellingRequest.ListAgents)

		requests := seller.Group("/selling-requests")
		requests.GET("", r.h.SellingRequest.ListMine)
		requests.POST("", r.h.SellingRequest.Create)
		requests.GET("/:id", r.h.SellingRequest.GetMine)
		requests.PATCH("/:id", r.h.SellingRequest.Update)
		requests.DELETE("/:id", r.h.SellingRequest.Delete)
		requests.POST("/:id/documents", r.h.Document.UploadSellerDocument)

		docs := seller.Group("/property-documents")
		docs.GET("", r.h.Document.ListForSeller)
		docs.GET("/:id", r.h.Document.GetForSeller)
		docs.POST("/:id/cma/accept", r.h.Document.DecideCMA(true))
		docs.POST("/:id/cma/reject", r.h.Document.DecideCMA(false))
		docs.POST("/:id/agreement/accept", r.h.Document.DecideAgreement(true))
		docs.POST("/:id/agreement/reject", r.h.Document.DecideAgreement(false))

		seller.GET("/platform-documents", r.h.Buyer.PlatformDocuments)
	}
}
