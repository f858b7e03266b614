package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/responses"
	"github.com/nahid2887/padzzey-sub000/internal/services"
)

type UserHandler struct {
	userService        *services.UserService
	preferencesService *services.PreferencesService
}

func NewUserHandler(userService *services.UserService, preferencesService *services.PreferencesService) *UserHandler {
	return &UserHandler{userService: userService, preferencesService: preferencesService}
}

func (h *UserHandler) profile(p models.Principal) gin.H {
	return gin.H{
		"user":                p,
		"user_type":           p.Role(),
		"profile_picture_url": h.userService.PictureURL(p),
	}
}

// GetProfile handles GET /api/v1/{role}/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	role, userID := currentUser(c)
	p, err := h.userService.GetProfile(c.Request.Context(), role, userID)
	if err != nil {
		fail(c, err, "Failed to retrieve profile")
		return
	}
	responses.Success(c, http.StatusOK, h.profile(p), "Profile retrieved successfully")
}

// UpdateProfile handles PATCH /api/v1/{role}/profile. Multipart bodies may carry a
// profile_picture file.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.ProfileInput
	var up uploads
	defer up.Close()

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, err, "Invalid request body")
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	picture, err := up.file(c, "profile_picture")
	if err != nil {
		badRequest(c, err, "Invalid profile picture")
		return
	}

	role, userID := currentUser(c)
	p, err := h.userService.UpdateProfile(c.Request.Context(), role, userID, req, picture)
	if err != nil {
		fail(c, err, "Failed to update profile")
		return
	}
	responses.Success(c, http.StatusOK, h.profile(p), "Profile updated successfully")
}

// GetPrivacy handles GET /api/v1/{role}/privacy-security
func (h *UserHandler) GetPrivacy(c *gin.Context) {
	role, userID := currentUser(c)
	settings, err := h.preferencesService.Privacy(c.Request.Context(), role, userID)
	if err != nil {
		fail(c, err, "Failed to retrieve privacy settings")
		return
	}
	responses.Success(c, http.StatusOK, settings, "Privacy settings retrieved successfully")
}

// UpdatePrivacy handles PATCH /api/v1/{role}/privacy-security
func (h *UserHandler) UpdatePrivacy(c *gin.Context) {
	var req services.PrivacyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	role, userID := currentUser(c)
	settings, err := h.preferencesService.UpdatePrivacy(c.Request.Context(), role, userID, req)
	if err != nil {
		fail(c, err, "Failed to update privacy settings")
		return
	}
	responses.Success(c, http.StatusOK, settings, "Privacy settings updated successfully")
}

// GetTerms handles GET /api/v1/{role}/terms-conditions
func (h *UserHandler) GetTerms(c *gin.Context) {
	role, userID := currentUser(c)
	terms, err := h.preferencesService.Terms(c.Request.Context(), role, userID)
	if err != nil {
		fail(c, err, "Failed to retrieve terms acceptance")
		return
	}
	responses.Success(c, http.StatusOK, terms, "Terms acceptance retrieved successfully")
}

// UpdateTerms handles PATCH /api/v1/{role}/terms-conditions
func (h *UserHandler) UpdateTerms(c *gin.Context) {
	var req services.TermsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	role, userID := currentUser(c)
	terms, err := h.preferencesService.UpdateTerms(c.Request.Context(), role, userID, req)
	if err != nil {
		fail(c, err, "Failed to update terms acceptance")
		return
	}
	responses.Success(c, http.StatusOK, terms, "Terms accepted successfully")
}
