package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/responses"
	"github.com/nahid2887/padzzey-sub000/internal/services"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

// Context keys set once a request is authenticated.
const (
	UserIDKey = "userId"
	RoleKey   = "role"
	ClaimsKey = "claims"
)

// TokenVerifier checks an access token and rejects revoked ones.
type TokenVerifier interface {
	Authenticate(ctx context.Context, token string) (*utils.Claims, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		// Browsers cannot set headers on websocket upgrades.
		if t := c.Query("token"); t != "" {
			return t, true
		}
		return "", false
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// Authenticate verifies the access token and stores the user id, role and claims
// in the context.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			responses.Abort(c, http.StatusUnauthorized, "Authentication credentials were not provided")
			return
		}

		claims, err := verifier.Authenticate(c.Request.Context(), token)
		if err != nil {
			responses.Abort(c, http.StatusUnauthorized, services.Message(err, "Invalid or expired token"))
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			responses.Abort(c, http.StatusUnauthorized, "Invalid token subject")
			return
		}
		role, ok := models.ParseRole(claims.Role)
		if !ok {
			responses.Abort(c, http.StatusUnauthorized, "Invalid token role")
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(RoleKey, role)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
