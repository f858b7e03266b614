package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type AdminRoutes struct {
	h     Handlers
	guard Guard
}

func NewAdminRoutes(h Handlers, guard Guard) *AdminRoutes {
	return &AdminRoutes{h: h, guard: guard}
}

func (r *AdminRoutes) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")

	// Superadmins are created from the CLI, so there is no register endpoint.
	auth := admin.Group("/auth")
	{
		auth.POST("/login", r.h.Auth.Login(models.RoleSuperadmin))
		auth.POST("/token/refresh", r.h.Auth.Refresh(models.RoleSuperadmin))
		auth.POST("/logout", append(r.guard.Require(models.RoleSuperadmin), r.h.Auth.Logout)...)
	}

	protected := admin.Group("")
	protected.Use(r.guard.Require(models.RoleSuperadmin)...)
	{
		protected.GET("/profile", r.h.User.GetProfile)
		protected.PATCH("/profile", r.h.User.UpdateProfile)
		protected.POST("/profile/change-password", r.h.Auth.ChangePassword)
		protected.GET("/dashboard", r.h.Admin.Dashboard)

		users := protected.Group("/users")
		users.GET("", r.h.Admin.ListUsers)
		users.POST("", r.h.Admin.CreateUser)
		users.GET("/:role/:id", r.h.Admin.GetUser)
		users.PATCH("/:role/:id", r.h.Admin.UpdateUser)
		users.DELETE("/:role/:id", r.h.Admin.DeleteUser)

		listings := protected.Group("/listings")
		listings.GET("", r.h.Listing.ListAll)
		listings.POST("", r.h.Listing.AdminCreate)
		listings.GET("/:id", r.h.Listing.AdminGet)
		listings.PATCH("/:id/status", r.h.Listing.AdminSetStatus)
		listings.DELETE("/:id", r.h.Listing.AdminDelete)

		protected.GET("/cma-reports", r.h.Document.ListCMA)
		protected.GET("/cma-reports/:id", r.h.Document.GetCMA)
		protected.GET("/selling-agreements", r.h.Document.ListAgreements)
		protected.GET("/selling-agreements/:id", r.h.Document.GetAgreement)
		protected.GET("/showing-agreements", r.h.Showing.ListAgreements)
		protected.GET("/showing-agreements/:id", r.h.Showing.AdminShowing)

		buyerDocs := protected.Group("/buyer-documents")
		buyerDocs.GET("", r.h.Buyer.AllDocuments)
		buyerDocs.POST("", r.h.Buyer.AdminUploadDocument)
		buyerDocs.GET("/:id", r.h.Buyer.AdminDocument)
		buyerDocs.DELETE("/:id", r.h.Buyer.AdminDeleteDocument)

		legal := protected.Group("/legal-documents")
		legal.GET("", r.h.Legal.List)
		legal.POST("", r.h.Legal.Create)
		legal.GET("/active/:audience/:document_type", r.h.Legal.Active)
		legal.GET("/:id", r.h.Legal.Get)
		legal.PATCH("/:id", r.h.Legal.Update)
		legal.DELETE("/:id", r.h.Legal.Delete)

		platform := protected.Group("/platform-documents")
		platform.GET("", r.h.Legal.ListPlatform)
		platform.POST("", r.h.Legal.CreatePlatform)
		platform.PATCH("/:id", r.h.Legal.UpdatePlatform)
		platform.DELETE("/:id", r.h.Legal.DeletePlatform)
	}
}
