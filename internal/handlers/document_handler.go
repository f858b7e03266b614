package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/responses"
	"github.com/nahid2887/padzzey-sub000/internal/services"
)

type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// uploadForm reads the multipart fields shared by CMA and seller uploads.
func uploadForm(c *gin.Context, up *uploads) (services.DocumentUpload, error) {
	files, err := up.files(c, "files")
	if err != nil {
		return services.DocumentUpload{}, err
	}
	return services.DocumentUpload{
		DocumentType: models.DocumentType(c.PostForm("document_type")),
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Files:        files,
	}, nil
}

// UploadCMA handles POST /api/v1/agent/selling-requests/:id/cma
func (h *DocumentHandler) UploadCMA(c *gin.Context) {
	requestID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var up uploads
	defer up.Close()
	in, err := uploadForm(c, &up)
	if err != nil {
		badRequest(c, err, "Invalid upload")
		return
	}
	in.DocumentType = models.DocumentCMA

	_, agentID := currentUser(c)
	doc, err := h.documentService.UploadCMA(c.Request.Context(), agentID, requestID, in)
	if err != nil {
		fail(c, err, "Failed to upload CMA report")
		return
	}
	responses.Success(c, http.StatusCreated, doc, "CMA report uploaded successfully")
}

// UploadSellerDocument handles POST /api/v1/seller/selling-requests/:id/documents
func (h *DocumentHandler) UploadSellerDocument(c *gin.Context) {
	requestID, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var up uploads
	defer up.Close()
	in, err := uploadForm(c, &up)
	if err != nil {
		badRequest(c, err, "Invalid upload")
		return
	}

	_, sellerID := currentUser(c)
	doc, err := h.documentService.UploadSellerDocument(c.Request.Context(), sellerID, requestID, in)
	if err != nil {
		fail(c, err, "Failed to upload documents")
		return
	}
	responses.Success(c, http.StatusCreated, doc, "Documents uploaded successfully")
}

// ListForSeller handles GET /api/v1/seller/property-documents
func (h *DocumentHandler) ListForSeller(c *gin.Context) {
	_, sellerID := currentUser(c)
	docs, err := h.documentService.ListForSeller(c.Request.Context(), sellerID, models.DocumentType(c.Query("document_type")))
	if err != nil {
		fail(c, err, "Failed to retrieve documents")
		return
	}
	responses.Success(c, http.StatusOK, docs, "Documents retrieved successfully")
}

// GetForSeller handles GET /api/v1/seller/property-documents/:id
func (h *DocumentHandler) GetForSeller(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	_, sellerID := currentUser(c)
	doc, err := h.documentService.GetForSeller(c.Request.Context(), sellerID, id)
	if err != nil {
		fail(c, err, "Failed to retrieve document")
		return
	}
	responses.Success(c, http.StatusOK, doc, "Document retrieved successfully")
}

// ListForAgent handles GET /api/v1/agent/property-documents
func (h *DocumentHandler) ListForAgent(c *gin.Context) {
	_, agentID := currentUser(c)
	docs, err := h.documentService.ListForAgent(c.Request.Context(), agentID, models.DocumentType(c.Query("document_type")))
	if err != nil {
		fail(c, err, "Failed to retrieve documents")
		return
	}
	responses.Success(c, http.StatusOK, docs, "Documents retrieved successfully")
}

// GetForAgent handles GET /api/v1/agent/property-documents/:id
func (h *DocumentHandler) GetForAgent(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	_, agentID := currentUser(c)
	doc, err := h.documentService.GetForAgent(c.Request.Context(), agentID, id)
	if err != nil {
		fail(c, err, "Failed to retrieve document")
		return
	}
	responses.Success(c, http.StatusOK, doc, "Document retrieved successfully")
}

// DecideCMA handles POST /api/v1/seller/property-documents/:id/cma/{accept,reject}
func (h *DocumentHandler) DecideCMA(accept bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramUUID(c, "id")
		if !ok {
			return
		}
		_, sellerID := currentUser(c)
		doc, err := h.documentService.DecideCMA(c.Request.Context(), sellerID, id, accept)
		if err != nil {
			fail(c, err, "Failed to update CMA")
			return
		}
		msg := "CMA rejected successfully"
		if accept {
			msg = "CMA accepted successfully"
		}
		responses.Success(c, http.StatusOK, doc, msg)
	}
}

// UploadAgreement handles PATCH /api/v1/agent/property-documents/:id/selling-agreement
func (h *DocumentHandler) UploadAgreement(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var up uploads
	defer up.Close()
	file, err := up.file(c, "file")
	if err != nil {
		badRequest(c, err, "Invalid upload")
		return
	}
	if file == nil {
		badRequest(c, nil, "Selling agreement file is required")
		return
	}

	_, agentID := currentUser(c)
	doc, err := h.documentService.UploadAgreement(c.Request.Context(), agentID, id, *file)
	if err != nil {
		fail(c, err, "Failed to upload selling agreement")
		return
	}
	responses.Success(c, http.StatusOK, doc, "Selling agreement uploaded successfully")
}

// DecideAgreement handles POST /api/v1/seller/property-documents/:id/agreement/{accept,reject}
func (h *DocumentHandler) DecideAgreement(accept bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramUUID(c, "id")
		if !ok {
			return
		}
		var body struct {
			Reason string `json:"reason"`
		}
		_ = c.ShouldBindJSON(&body)

		_, sellerID := currentUser(c)
		doc, err := h.documentService.DecideAgreement(c.Request.Context(), sellerID, id, accept, body.Reason)
		if err != nil {
			fail(c, err, "Failed to update selling agreement")
			return
		}
		msg := "Selling agreement rejected successfully"
		if accept {
			msg = "Selling agreement accepted successfully"
		}
		responses.Success(c, http.StatusOK, doc, msg)
	}
}

// ListCMA handles GET /api/v1/admin/cma-reports
func (h *DocumentHandler) ListCMA(c *gin.Context) {
	p := pageOf(c)
	docs, total, err := h.documentService.ListCMA(c.Request.Context(), p.Offset(), p.PerPage)
	if err != nil {
		fail(c, err, "Failed to retrieve CMA reports")
		return
	}
	responses.Success(c, http.StatusOK, paged(docs, total, p), "CMA reports retrieved successfully")
}

// GetCMA handles GET /api/v1/admin/cma-reports/:id
func (h *DocumentHandler) GetCMA(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.documentService.GetCMA(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to retrieve CMA report")
		return
	}
	responses.Success(c, http.StatusOK, doc, "CMA report retrieved successfully")
}

// ListAgreements handles GET /api/v1/admin/selling-agreements
func (h *DocumentHandler) ListAgreements(c *gin.Context) {
	p := pageOf(c)
	docs, total, err := h.documentService.ListAgreements(c.Request.Context(), p.Offset(), p.PerPage)
	if err != nil {
		fail(c, err, "Failed to retrieve selling agreements")
		return
	}
	responses.Success(c, http.StatusOK, paged(docs, total, p), "Selling agreements retrieved successfully")
}

// GetAgreement handles GET /api/v1/admin/selling-agreements/:id
func (h *DocumentHandler) GetAgreement(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.documentService.GetAgreement(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to retrieve selling agreement")
		return
	}
	responses.Success(c, http.StatusOK, doc, "Selling agreement retrieved successfully")
}
