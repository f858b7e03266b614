package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/responses"
	"github.com/nahid2887/padzzey-sub000/internal/services"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

type ListingHandler struct {
	listingService *services.ListingService
}

func NewListingHandler(listingService *services.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// listingQuery reads the filters shared by every listing search. It replies 400
// and returns false when a numeric filter does not parse.
func listingQuery(c *gin.Context) (services.ListingQuery, bool) {
	q := services.ListingQuery{
		Status:  models.ListingStatus(c.Query("status")),
		City:    c.Query("city"),
		State:   c.Query("state"),
		ZipCode: c.Query("zip_code"),
		Page:    pageOf(c),
	}
	var err error
	if q.MinPrice, err = queryFloat(c, "min_price"); err != nil {
		badRequest(c, err, err.Error())
		return q, false
	}
	if q.MaxPrice, err = queryFloat(c, "max_price"); err != nil {
		badRequest(c, err, err.Error())
		return q, false
	}
	if q.Bedrooms, err = queryInt(c, "bedrooms"); err != nil {
		badRequest(c, err, err.Error())
		return q, false
	}
	return q, true
}

// CreateFromAgreement handles POST /api/v1/agent/agreements/:document_id/create-listing
func (h *ListingHandler) CreateFromAgreement(c *gin.Context) {
	docID, ok := paramUUID(c, "document_id")
	if !ok {
		return
	}
	var req services.ListingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}

	_, agentID := currentUser(c)
	listing, err := h.listingService.CreateFromAgreement(c.Request.Context(), agentID, docID, req)
	if err != nil {
		fail(c, err, "Failed to create listing")
		return
	}
	responses.Success(c, http.StatusCreated, listing, "Property listing created successfully")
}

// ListMine handles GET /api/v1/agent/listings
func (h *ListingHandler) ListMine(c *gin.Context) {
	q, ok := listingQuery(c)
	if !ok {
		return
	}
	_, agentID := currentUser(c)
	page, err := h.listingService.ListForAgent(c.Request.Context(), agentID, q)
	if err != nil {
		fail(c, err, "Failed to retrieve listings")
		return
	}
	responses.Success(c, http.StatusOK, page, "Listings retrieved successfully")
}

// GetMine handles GET /api/v1/agent/listings/:id
func (h *ListingHandler) GetMine(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	_, agentID := currentUser(c)
	listing, err := h.listingService.GetForAgent(c.Request.Context(), agentID, id)
	if err != nil {
		fail(c, err, "Failed to retrieve listing")
		return
	}
	responses.Success(c, http.StatusOK, listing, "Listing retrieved successfully")
}

// Update handles PATCH /api/v1/agent/listings/:id
func (h *ListingHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req services.ListingPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}

	_, agentID := currentUser(c)
	listing, err := h.listingService.Update(c.Request.Context(), agentID, id, req)
	if err != nil {
		fail(c, err, "Failed to update listing")
		return
	}
	responses.Success(c, http.StatusOK, listing, "Listing updated successfully")
}

// Delete handles DELETE /api/v1/agent/listings/:id
func (h *ListingHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	_, agentID := currentUser(c)
	if err := h.listingService.Delete(c.Request.Context(), agentID, id); err != nil {
		fail(c, err, "Failed to delete listing")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Listing deleted successfully")
}

// AddPhoto handles POST /api/v1/agent/listings/:id/photos
func (h *ListingHandler) AddPhoto(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var up uploads
	defer up.Close()
	file, err := up.file(c, "photo")
	if err != nil {
		badRequest(c, err, "Invalid upload")
		return
	}
	if file == nil {
		badRequest(c, nil, "Photo file is required")
		return
	}
	order, _ := strconv.Atoi(c.PostForm("order"))

	_, agentID := currentUser(c)
	photo, err := h.listingService.AddPhoto(c.Request.Context(), agentID, id, services.PhotoUpload{
		File:      *file,
		Caption:   c.PostForm("caption"),
		IsPrimary: utils.Truthy(c.PostForm("is_primary")),
		Order:     order,
	})
	if err != nil {
		fail(c, err, "Failed to upload photo")
		return
	}
	responses.Success(c, http.StatusCreated, photo, "Photo uploaded successfully")
}

// DeletePhoto handles DELETE /api/v1/agent/listings/:id/photos/:photo_id
func (h *ListingHandler) DeletePhoto(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	photoID, ok := paramUUID(c, "photo_id")
	if !ok {
		return
	}
	_, agentID := currentUser(c)
	if err := h.listingService.DeletePhoto(c.Request.Context(), agentID, id, photoID); err != nil {
		fail(c, err, "Failed to delete photo")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Photo deleted successfully")
}

// AddDocument handles POST /api/v1/agent/listings/:id/documents
func (h *ListingHandler) AddDocument(c *gin.Context) {
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
	if file == nil {
		badRequest(c, nil, "Document file is required")
		return
	}

	_, agentID := currentUser(c)
	doc, err := h.listingService.AddDocument(c.Request.Context(), agentID, id, services.ListingDocumentUpload{
		File:         *file,
		DocumentType: models.ListingDocumentType(c.PostForm("document_type")),
		Title:        c.PostForm("title"),
	})
	if err != nil {
		fail(c, err, "Failed to upload document")
		return
	}
	responses.Success(c, http.StatusCreated, doc, "Document uploaded successfully")
}

// DeleteDocument handles DELETE /api/v1/agent/listings/:id/documents/:document_id
func (h *ListingHandler) DeleteDocument(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	docID, ok := paramUUID(c, "document_id")
	if !ok {
		return
	}
	_, agentID := currentUser(c)
	if err := h.listingService.DeleteDocument(c.Request.Context(), agentID, id, docID); err != nil {
		fail(c, err, "Failed to delete document")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Document deleted successfully")
}

// ListPublished handles GET /api/v1/buyer/listings
func (h *ListingHandler) ListPublished(c *gin.Context) {
	q, ok := listingQuery(c)
	if !ok {
		return
	}
	page, err := h.listingService.ListPublished(c.Request.Context(), q)
	if err != nil {
		fail(c, err, "Failed to retrieve listings")
		return
	}
	responses.Success(c, http.StatusOK, page, "Listings retrieved successfully")
}

// GetPublished handles GET /api/v1/buyer/listings/:id
func (h *ListingHandler) GetPublished(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	listing, err := h.listingService.GetPublished(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to retrieve listing")
		return
	}
	responses.Success(c, http.StatusOK, listing, "Listing retrieved successfully")
}

// ListAll handles GET /api/v1/admin/listings
func (h *ListingHandler) ListAll(c *gin.Context) {
	q, ok := listingQuery(c)
	if !ok {
		return
	}
	page, err := h.listingService.ListAll(c.Request.Context(), q)
	if err != nil {
		fail(c, err, "Failed to retrieve listings")
		return
	}
	responses.Success(c, http.StatusOK, page, "Listings retrieved successfully")
}

// AdminGet handles GET /api/v1/admin/listings/:id
func (h *ListingHandler) AdminGet(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	listing, err := h.listingService.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to retrieve listing")
		return
	}
	responses.Success(c, http.StatusOK, listing, "Listing retrieved successfully")
}

type adminListingBody struct {
	AgentID uuid.UUID `json:"agent_id" binding:"required"`
	services.ListingInput
}

// AdminCreate handles POST /api/v1/admin/listings
func (h *ListingHandler) AdminCreate(c *gin.Context) {
	var req adminListingBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	listing, err := h.listingService.AdminCreate(c.Request.Context(), req.AgentID, req.ListingInput)
	if err != nil {
		fail(c, err, "Failed to create listing")
		return
	}
	responses.Success(c, http.StatusCreated, listing, "Property listing created successfully")
}

// AdminSetStatus handles PATCH /api/v1/admin/listings/:id/status
func (h *ListingHandler) AdminSetStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Status models.ListingStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err, "Status is required")
		return
	}
	listing, err := h.listingService.SetStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		fail(c, err, "Failed to update listing status")
		return
	}
	responses.Success(c, http.StatusOK, listing, "Listing status updated successfully")
}

// AdminDelete handles DELETE /api/v1/admin/listings/:id
func (h *ListingHandler) AdminDelete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.listingService.AdminDelete(c.Request.Context(), id); err != nil {
		fail(c, err, "Failed to delete listing")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Listing deleted successfully")
}
