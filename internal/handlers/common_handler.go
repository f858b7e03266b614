package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/responses"
	"github.com/nahid2887/padzzey-sub000/internal/services"
)

// CommonHandler serves the endpoints shared by every member role.
type CommonHandler struct {
	resetService *services.PasswordResetService
	legalService *services.LegalService
}

func NewCommonHandler(resetService *services.PasswordResetService, legalService *services.LegalService) *CommonHandler {
	return &CommonHandler{resetService: resetService, legalService: legalService}
}

// ForgotPassword handles POST /api/v1/common/forgot-password
func (h *CommonHandler) ForgotPassword(c *gin.Context) {
	var req services.ForgotPasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Email and user_type are required")
		return
	}
	if err := h.resetService.Forgot(c.Request.Context(), req); err != nil {
		fail(c, err, "Failed to send OTP email. Please try again later.")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"email": req.Email}, "OTP sent to your email address")
}

// VerifyOTP handles POST /api/v1/common/verify-otp
func (h *CommonHandler) VerifyOTP(c *gin.Context) {
	var req services.VerifyOTPInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Email, otp and user_type are required")
		return
	}
	if err := h.resetService.Verify(c.Request.Context(), req); err != nil {
		fail(c, err, "Failed to verify OTP")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"email": req.Email, "verified": true}, "OTP verified successfully")
}

// ResetPassword handles POST /api/v1/common/reset-password
func (h *CommonHandler) ResetPassword(c *gin.Context) {
	var req services.ResetPasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	if err := h.resetService.Reset(c.Request.Context(), req); err != nil {
		fail(c, err, "Failed to reset password")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Password reset successfully")
}

// LegalDocuments handles GET /api/v1/common/legal-documents
func (h *CommonHandler) LegalDocuments(c *gin.Context) {
	role, _ := currentUser(c)
	docs, err := h.legalService.ForRole(c.Request.Context(), role)
	if err != nil {
		fail(c, err, "Failed to retrieve legal documents")
		return
	}
	responses.Success(c, http.StatusOK, docs, "Legal documents retrieved successfully")
}

// LegalDocument handles GET /api/v1/common/legal-documents/:document_type
func (h *CommonHandler) LegalDocument(c *gin.Context) {
	role, _ := currentUser(c)
	doc, err := h.legalService.Active(c.Request.Context(), role, models.LegalDocumentType(c.Param("document_type")))
	if err != nil {
		fail(c, err, "Failed to retrieve legal document")
		return
	}
	responses.Success(c, http.StatusOK, doc, "Legal document retrieved successfully")
}
