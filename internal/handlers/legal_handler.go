package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
	"github.com/nahid2887/padzzey-sub000/internal/responses"
	"github.com/nahid2887/padzzey-sub000/internal/services"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

// LegalHandler lets the superadmin manage legal and platform documents.
type LegalHandler struct {
	legalService    *services.LegalService
	platformService *services.PlatformDocumentService
}

func NewLegalHandler(legalService *services.LegalService, platformService *services.PlatformDocumentService) *LegalHandler {
	return &LegalHandler{legalService: legalService, platformService: platformService}
}

// List handles GET /api/v1/admin/legal-documents
func (h *LegalHandler) List(c *gin.Context) {
	docs, err := h.legalService.List(c.Request.Context(), repositories.LegalDocumentFilter{
		Audience:     models.Role(c.Query("audience")),
		DocumentType: models.LegalDocumentType(c.Query("document_type")),
	})
	if err != nil {
		fail(c, err, "Failed to retrieve legal documents")
		return
	}
	responses.Success(c, http.StatusOK, docs, "Legal documents retrieved successfully")
}

// Create handles POST /api/v1/admin/legal-documents
func (h *LegalHandler) Create(c *gin.Context) {
	var req services.LegalDocumentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	doc, err := h.legalService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Failed to create legal document")
		return
	}
	responses.Success(c, http.StatusCreated, doc, "Legal document created successfully")
}

// Get handles GET /api/v1/admin/legal-documents/:id
func (h *LegalHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.legalService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to retrieve legal document")
		return
	}
	responses.Success(c, http.StatusOK, doc, "Legal document retrieved successfully")
}

// Update handles PATCH /api/v1/admin/legal-documents/:id
func (h *LegalHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req services.LegalDocumentPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	doc, err := h.legalService.Update(c.Request.Context(), id, req)
	if err != nil {
		fail(c, err, "Failed to update legal document")
		return
	}
	responses.Success(c, http.StatusOK, doc, "Legal document updated successfully")
}

// Delete handles DELETE /api/v1/admin/legal-documents/:id
func (h *LegalHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.legalService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err, "Failed to delete legal document")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Legal document deleted successfully")
}

// Active handles GET /api/v1/admin/legal-documents/active/:audience/:document_type
func (h *LegalHandler) Active(c *gin.Context) {
	audience, ok := models.ParseRole(c.Param("audience"))
	if !ok || !audience.IsMember() {
		badRequest(c, nil, "Audience must be agent, seller or buyer")
		return
	}
	doc, err := h.legalService.Active(c.Request.Context(), audience, models.LegalDocumentType(c.Param("document_type")))
	if err != nil {
		fail(c, err, "Failed to retrieve legal document")
		return
	}
	responses.Success(c, http.StatusOK, doc, "Legal document retrieved successfully")
}

// ListPlatform handles GET /api/v1/admin/platform-documents
func (h *LegalHandler) ListPlatform(c *gin.Context) {
	docs, err := h.platformService.List(c.Request.Context(), models.PlatformDocumentType(c.Query("document_type")))
	if err != nil {
		fail(c, err, "Failed to retrieve platform documents")
		return
	}
	responses.Success(c, http.StatusOK, docs, "Platform documents retrieved successfully")
}

func optionalForm(c *gin.Context, field string) *string {
	v, ok := c.GetPostForm(field)
	if !ok {
		return nil
	}
	return &v
}

func optionalFormBool(c *gin.Context, field string) *bool {
	v, ok := c.GetPostForm(field)
	if !ok {
		return nil
	}
	b := utils.Truthy(v)
	return &b
}

// CreatePlatform handles POST /api/v1/admin/platform-documents
func (h *LegalHandler) CreatePlatform(c *gin.Context) {
	var up uploads
	defer up.Close()
	file, err := up.file(c, "document")
	if err != nil {
		badRequest(c, err, "Invalid upload")
		return
	}
	if file == nil {
		badRequest(c, nil, "Document file is required")
		return
	}

	_, adminID := currentUser(c)
	doc, err := h.platformService.Create(c.Request.Context(), adminID, services.PlatformDocumentInput{
		DocumentType: models.PlatformDocumentType(c.PostForm("document_type")),
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Version:      c.PostForm("version"),
		IsActive:     optionalFormBool(c, "is_active"),
		File:         *file,
	})
	if err != nil {
		fail(c, err, "Failed to upload platform document")
		return
	}
	responses.Success(c, http.StatusCreated, doc, "Platform document uploaded successfully")
}

// UpdatePlatform handles PATCH /api/v1/admin/platform-documents/:id
func (h *LegalHandler) UpdatePlatform(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var up uploads
	defer up.Close()
	file, err := up.file(c, "document")
	if err != nil {
		badRequest(c, err, "Invalid upload")
		return
	}

	doc, err := h.platformService.Update(c.Request.Context(), id, services.PlatformDocumentPatch{
		Title:       optionalForm(c, "title"),
		Description: optionalForm(c, "description"),
		Version:     optionalForm(c, "version"),
		IsActive:    optionalFormBool(c, "is_active"),
		File:        file,
	})
	if err != nil {
		fail(c, err, "Failed to update platform document")
		return
	}
	responses.Success(c, http.StatusOK, doc, "Platform document updated successfully")
}

// DeletePlatform handles DELETE /api/v1/admin/platform-documents/:id
func (h *LegalHandler) DeletePlatform(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.platformService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err, "Failed to delete platform document")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Platform document deleted successfully")
}
