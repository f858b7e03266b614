package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/handlers"
	"github.com/nahid2887/padzzey-sub000/internal/middlewares"
	"github.com/nahid2887/padzzey-sub000/internal/models"
)

// Handlers bundles every handler the API exposes.
type Handlers struct {
	Auth           *handlers.AuthHandler
	User           *handlers.UserHandler
	Notification   *handlers.NotificationHandler
	SellingRequest *handlers.SellingRequestHandler
	Document       *handlers.DocumentHandler
	Listing        *handlers.ListingHandler
	Showing        *handlers.ShowingHandler
	Buyer          *handlers.BuyerHandler
	MLS            *handlers.MLSHandler
	Common         *handlers.CommonHandler
	Legal          *handlers.LegalHandler
	Messaging      *handlers.MessagingHandler
	Admin          *handlers.AdminHandler
}

// Guard builds the middleware chains that protect role groups.
type Guard struct {
	Verifier middlewares.TokenVerifier
	Accounts middlewares.AccountFinder
}

// Require accepts active accounts of the given roles.
func (g Guard) Require(roles ...models.Role) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		middlewares.Authenticate(g.Verifier),
		middlewares.RequireRole(g.Accounts, roles...),
	}
}

func RegisterRoutes(router *gin.Engine, h Handlers, guard Guard) {
	api := router.Group("/api/v1")

	for _, role := range models.MemberRoles {
		NewAccountRoutes(role, h, guard).RegisterRoutes(api)
	}
	NewAgentRoutes(h, guard).RegisterRoutes(api)
	NewSellerRoutes(h, guard).RegisterRoutes(api)
	NewBuyerRoutes(h, guard).RegisterRoutes(api)
	NewAdminRoutes(h, guard).RegisterRoutes(api)
	NewCommonRoutes(h, guard).RegisterRoutes(api)
	NewMessagingRoutes(h, guard).RegisterRoutes(api)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
