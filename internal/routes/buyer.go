package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type BuyerRoutes struct {
	h     Handlers
	guard Guard
}

func NewBuyerRoutes(h Handlers, guard Guard) *BuyerRoutes {
	return &BuyerRoutes{h: h, guard: guard}
}

func (r *BuyerRoutes) RegisterRoutes(router *gin.RouterGroup) {
	buyer := router.Group("/buyer")
	buyer.Use(r.guard.Require(models.RoleBuyer)...)
	{
		buyer.GET("/listings", r.h.Listing.ListPublished)
		buyer.GET("/listings/:id", r.h.Listing.GetPublished)

		showings := buyer.Group("/showings")
		showings.GET("", r.h.Showing.ListForBuyer)
		showings.POST("", r.h.Showing.Request)
		showings.GET("/:id", r.h.Showing.GetForBuyer)
		showings.DELETE("/:id", r.h.Showing.Cancel)
		showings.POST("/:id/reschedule", r.h.Showing.BuyerReschedule)
		showings.POST("/:id/sign-agreement", r.h.Showing.SignAgreement)
		showings.GET("/:id/agreement", r.h.Showing.Agreement)

		saved := buyer.Group("/saved-listings")
		saved.GET("", r.h.Buyer.SavedListings)
		saved.POST("", r.h.Buyer.SaveListing)
		saved.DELETE("/:id", r.h.Buyer.RemoveSavedListing)

		docs := buyer.Group("/documents")
		docs.GET("", r.h.Buyer.Documents)
		docs.POST("", r.h.Buyer.UploadDocument)
		docs.GET("/:id", r.h.Buyer.Document)
		docs.DELETE("/:id", r.h.Buyer.DeleteDocument)

		buyer.GET("/platform-documents", r.h.Buyer.PlatformDocuments)

		mls := buyer.Group("/mls")
		mls.GET("/listings", r.h.MLS.Listings)
		mls.GET("/listings/:mls_number", r.h.MLS.Listing)
		mls.GET("/search", r.h.MLS.Search)
		mls.GET("/featured", r.h.MLS.Featured)
		mls.GET("/nearby", r.h.MLS.Nearby)
	}
}
