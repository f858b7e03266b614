package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type AgentRoutes struct {
	h     Handlers
	guard Guard
}

func NewAgentRoutes(h Handlers, guard Guard) *AgentRoutes {
	return &AgentRoutes{h: h, guard: guard}
}

func (r *AgentRoutes) RegisterRoutes(router *gin.RouterGroup) {
	agent := router.Group("/agent")
	agent.Use(r.guard.Require(models.RoleAgent)...)
	{
		requests := agent.Group("/selling-requests")
		requests.GET("", r.h.SellingRequest.ListAssigned)
		requests.GET("/stats", r.h.SellingRequest.Stats)
		requests.GET("/:id", r.h.SellingRequest.GetAssigned)
		requests.PATCH("/:id/status", r.h.SellingRequest.Decide)
		requests.POST("/:id/cma", r.h.Document.UploadCMA)

		docs := agent.Group("/property-documents")
		docs.GET("", r.h.Document.ListForAgent)
		docs.GET("/:id", r.h.Document.GetForAgent)
		docs.PATCH("/:id/selling-agreement", r.h.Document.UploadAgreement)

		agent.POST("/agreements/:document_id/create-listing", r.h.Listing.CreateFromAgreement)

		listings := agent.Group("/listings")
		listings.GET("", r.h.Listing.ListMine)
		listings.GET("/:id", r.h.Listing.GetMine)
		listings.PATCH("/:id", r.h.Listing.Update)
		listings.DELETE("/:id", r.h.Listing.Delete)
		listings.POST("/:id/photos", r.h.Listing.AddPhoto)
		listings.DELETE("/:id/photos/:photo_id", r.h.Listing.DeletePhoto)
		listings.POST("/:id/documents", r.h.Listing.AddDocument)
		listings.DELETE("/:id/documents/:document_id", r.h.Listing.DeleteDocument)

		showings := agent.Group("/showings")
		showings.GET("", r.h.Showing.ListForAgent)
		showings.POST("", r.h.Showing.Schedule)
		showings.GET("/:id", r.h.Showing.GetForAgent)
		showings.POST("/:id/respond", r.h.Showing.Respond)
		showings.POST("/:id/accept", r.h.Showing.Accept)
		showings.POST("/:id/reject", r.h.Showing.Reject)
		showings.POST("/:id/reschedule", r.h.Showing.Reschedule)

		agent.GET("/showing-agreements", r.h.Showing.AgentAgreements)
	}
}
