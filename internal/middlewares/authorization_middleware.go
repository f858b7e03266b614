package middlewares

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/responses"
)

// AccountFinder loads an account from its role's table.
type AccountFinder interface {
	FindByID(ctx context.Context, role models.Role, id uuid.UUID) (models.Principal, error)
}

// RequireRole only lets through active accounts of one of the given roles.
// Use it after Authenticate.
func RequireRole(accounts AccountFinder, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(RoleKey)
		userID, _ := c.Get(UserIDKey)
		r, ok := role.(models.Role)
		id, idOK := userID.(uuid.UUID)
		if !ok || !idOK {
			responses.Abort(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		allowed := false
		for _, want := range roles {
			if r == want {
				allowed = true
				break
			}
		}
		if !allowed {
			responses.Abort(c, http.StatusForbidden, "You do not have permission to perform this action.")
			return
		}

		p, err := accounts.FindByID(c.Request.Context(), r, id)
		if err != nil {
			responses.Abort(c, http.StatusInternalServerError, "Failed to load account")
			return
		}
		if p == nil || !p.Credentials().IsActive {
			responses.Abort(c, http.StatusUnauthorized, "User not found or inactive")
			return
		}

		c.Set("account", p)
		c.Next()
	}
}
