package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/responses"
	"github.com/nahid2887/padzzey-sub000/internal/services"
)

type BuyerHandler struct {
	buyerService    *services.BuyerService
	platformService *services.PlatformDocumentService
}

func NewBuyerHandler(buyerService *services.BuyerService, platformService *services.PlatformDocumentService) *BuyerHandler {
	return &BuyerHandler{buyerService: buyerService, platformService: platformService}
}

// SavedListings handles GET /api/v1/buyer/saved-listings
func (h *BuyerHandler) SavedListings(c *gin.Context) {
	_, buyerID := currentUser(c)
	list, err := h.buyerService.SavedListings(c.Request.Context(), buyerID)
	if err != nil {
		fail(c, err, "Failed to retrieve saved listings")
		return
	}
	responses.Success(c, http.StatusOK, gin.H{"count": len(list), "results": list}, "Saved listings retrieved successfully")
}

// SaveListing handles POST /api/v1/buyer/saved-listings
func (h *BuyerHandler) SaveListing(c *gin.Context) {
	var body struct {
		ListingID uuid.UUID `json:"listing_id" binding:"required"`
		Notes     string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err, "listing_id is required")
		return
	}
	_, buyerID := currentUser(c)
	saved, err := h.buyerService.SaveListing(c.Request.Context(), buyerID, body.ListingID, body.Notes)
	if err != nil {
		fail(c, err, "Failed to save listing")
		return
	}
	responses.Success(c, http.StatusCreated, saved, "Listing saved successfully")
}

// RemoveSavedListing handles DELETE /api/v1/buyer/saved-listings/:id
func (h *BuyerHandler) RemoveSavedListing(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	_, buyerID := currentUser(c)
	if err := h.buyerService.RemoveSavedListing(c.Request.Context(), buyerID, id); err != nil {
		fail(c, err, "Failed to remove saved listing")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Listing removed from saved listings")
}

// Documents handles GET /api/v1/buyer/documents
func (h *BuyerHandler) Documents(c *gin.Context) {
	_, buyerID := currentUser(c)
	docs, err := h.buyerService.Documents(c.Request.Context(), buyerID)
	if err != nil {
		fail(c, err, "Failed to retrieve documents")
		return
	}
	responses.Success(c, http.StatusOK, docs, "Documents retrieved successfully")
}

// UploadDocument handles POST /api/v1/buyer/documents
func (h *BuyerHandler) UploadDocument(c *gin.Context) {
	var up uploads
	defer up.Close()
	file, err := up.file(c, "file")
	if err != nil {
		badRequest(c, err, "Invalid upload")
		return
	}
	if file == nil {
		badRequest(c, nil, "File is required")
		return
	}

	_, buyerID := currentUser(c)
	doc, err := h.buyerService.UploadDocument(c.Request.Context(), buyerID, services.BuyerDocumentUpload{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		File:        *file,
	})
	if err != nil {
		fail(c, err, "Failed to upload document")
		return
	}
	responses.Success(c, http.StatusCreated, doc, "Document uploaded successfully")
}

// Document handles GET /api/v1/buyer/documents/:id
func (h *BuyerHandler) Document(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	_, buyerID := currentUser(c)
	doc, err := h.buyerService.Document(c.Request.Context(), buyerID, id)
	if err != nil {
		fail(c, err, "Failed to retrieve document")
		return
	}
	responses.Success(c, http.StatusOK, doc, "Document retrieved successfully")
}

// DeleteDocument handles DELETE /api/v1/buyer/documents/:id
func (h *BuyerHandler) DeleteDocument(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	_, buyerID := currentUser(c)
	if err := h.buyerService.DeleteDocument(c.Request.Context(), buyerID, id); err != nil {
		fail(c, err, "Failed to delete document")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Document deleted successfully")
}

// PlatformDocuments handles GET /api/v1/{buyer,seller}/platform-documents
func (h *BuyerHandler) PlatformDocuments(c *gin.Context) {
	docs, err := h.platformService.Active(c.Request.Context(), models.PlatformDocumentType(c.Query("document_type")))
	if err != nil {
		fail(c, err, "Failed to retrieve platform documents")
		return
	}
	responses.Success(c, http.StatusOK, docs, "Platform documents retrieved successfully")
}

// AllDocuments handles GET /api/v1/admin/buyer-documents
func (h *BuyerHandler) AllDocuments(c *gin.Context) {
	page, err := h.buyerService.AllDocuments(c.Request.Context(), pageOf(c))
	if err != nil {
		fail(c, err, "Failed to retrieve buyer documents")
		return
	}
	responses.Success(c, http.StatusOK, page, "Buyer documents retrieved successfully")
}

// AdminUploadDocument handles POST /api/v1/admin/buyer-documents
func (h *BuyerHandler) AdminUploadDocument(c *gin.Context) {
	buyerID, err := uuid.Parse(c.PostForm("buyer_id"))
	if err != nil {
		badRequest(c, err, "buyer_id is required")
		return
	}
	var up uploads
	defer up.Close()
	file, err := up.file(c, "document_file")
	if err != nil {
		badRequest(c, err, "Invalid upload")
		return
	}
	if file == nil {
		badRequest(c, nil, "document_file is required")
		return
	}

	doc, err := h.buyerService.AdminUploadDocument(c.Request.Context(), buyerID, services.BuyerDocumentUpload{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		File:        *file,
	})
	if err != nil {
		fail(c, err, "Failed to upload document")
		return
	}
	responses.Success(c, http.StatusCreated, doc, "Buyer document uploaded successfully")
}

// AdminDocument handles GET /api/v1/admin/buyer-documents/:id
func (h *BuyerHandler) AdminDocument(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.buyerService.AdminDocument(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to retrieve document")
		return
	}
	responses.Success(c, http.StatusOK, doc, "Document retrieved successfully")
}

// AdminDeleteDocument handles DELETE /api/v1/admin/buyer-documents/:id
func (h *BuyerHandler) AdminDeleteDocument(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.buyerService.AdminDeleteDocument(c.Request.Context(), id); err != nil {
		fail(c, err, "Failed to delete document")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Document deleted successfully")
}
