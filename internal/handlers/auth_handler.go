package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/responses"
	"github.com/nahid2887/padzzey-sub000/internal/services"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

// Cookie configuration
const (
	RefreshTokenCookieName = "refresh_token"
)

type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, tokens *utils.TokenPair) {
	maxAge := int(h.authService.RefreshTTL().Seconds())
	c.SetCookie(RefreshTokenCookieName, tokens.Refresh, maxAge, "/", "", true, true)
}

func (h *AuthHandler) authPayload(res *services.AuthResult) gin.H {
	return gin.H{
		"user":                res.User,
		"user_type":           res.User.Role(),
		"profile_picture_url": h.userService.PictureURL(res.User),
		"tokens":              res.Tokens,
	}
}

// Register handles POST /api/v1/{role}/auth/register
func (h *AuthHandler) Register(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.RegisterInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err, "Please provide your registration details correctly")
			return
		}

		res, err := h.authService.Register(c.Request.Context(), role, req)
		if err != nil {
			fail(c, err, "Could not register user")
			return
		}

		h.setRefreshCookie(c, res.Tokens)
		responses.Success(c, http.StatusCreated, h.authPayload(res), "Registration successful")
	}
}

// Login handles POST /api/v1/{role}/auth/login
func (h *AuthHandler) Login(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.LoginInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err, "Invalid Format")
			return
		}
		if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Username) == "" {
			badRequest(c, nil, "Email or username is required")
			return
		}

		res, err := h.authService.Login(c.Request.Context(), role, req)
		if err != nil {
			fail(c, err, "Failed to login")
			return
		}

		h.setRefreshCookie(c, res.Tokens)
		responses.Success(c, http.StatusOK, h.authPayload(res), "Login successful")
	}
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// refreshToken reads the refresh token from the body, falling back to the cookie.
func refreshToken(c *gin.Context) string {
	var req refreshRequest
	_ = c.ShouldBindJSON(&req)
	if req.Refresh != "" {
		return req.Refresh
	}
	cookie, _ := c.Cookie(RefreshTokenCookieName)
	return cookie
}

// Refresh handles POST /api/v1/{role}/auth/token/refresh
func (h *AuthHandler) Refresh(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := refreshToken(c)
		if token == "" {
			badRequest(c, nil, "Missing refresh token")
			return
		}

		tokens, err := h.authService.Refresh(c.Request.Context(), role, token)
		if err != nil {
			c.SetCookie(RefreshTokenCookieName, "", -1, "/", "", true, true)
			fail(c, err, "Invalid or expired refresh token")
			return
		}

		h.setRefreshCookie(c, tokens)
		responses.Success(c, http.StatusOK, tokens, "Access token refreshed successfully")
	}
}

// Logout handles POST /api/v1/{role}/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), currentClaims(c), refreshToken(c)); err != nil {
		fail(c, err, "Could not revoke token")
		return
	}

	c.SetCookie(RefreshTokenCookieName, "", -1, "/", "", true, true)
	responses.Success(c, http.StatusOK, nil, "Logged out successfully")
}

// ChangePassword handles POST /api/v1/{role}/profile/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}

	role, userID := currentUser(c)
	if err := h.authService.ChangePassword(c.Request.Context(), role, userID, req); err != nil {
		fail(c, err, "Failed to change password")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Password changed successfully")
}
