package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/responses"
	"github.com/nahid2887/padzzey-sub000/internal/services"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

type SellingRequestHandler struct {
	sellingService *services.SellingRequestService
}

func NewSellingRequestHandler(sellingService *services.SellingRequestService) *SellingRequestHandler {
	return &SellingRequestHandler{sellingService: sellingService}
}

type sellingRequestBody struct {
	AgentID       *uuid.UUID `json:"agent_id"`
	SellingReason string     `json:"selling_reason" binding:"required"`
	ContactName   string     `json:"contact_name" binding:"required,max=255"`
	ContactEmail  string     `json:"contact_email" binding:"required,email"`
	ContactPhone  string     `json:"contact_phone" binding:"required,max=20"`
	AskingPrice   float64    `json:"asking_price" binding:"required"`
	StartDate     string     `json:"start_date" binding:"required,ymd"`
	EndDate       string     `json:"end_date" binding:"required,ymd"`
}

type sellingRequestPatchBody struct {
	AgentID       *uuid.UUID `json:"agent_id"`
	SellingReason *string    `json:"selling_reason"`
	ContactName   *string    `json:"contact_name" binding:"omitempty,max=255"`
	ContactEmail  *string    `json:"contact_email" binding:"omitempty,email"`
	ContactPhone  *string    `json:"contact_phone" binding:"omitempty,max=20"`
	AskingPrice   *float64   `json:"asking_price"`
	StartDate     *string    `json:"start_date" binding:"omitempty,ymd"`
	EndDate       *string    `json:"end_date" binding:"omitempty,ymd"`
}

// Create handles POST /api/v1/seller/selling-requests
func (h *SellingRequestHandler) Create(c *gin.Context) {
	var req sellingRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	start, _ := utils.ParseDate(req.StartDate)
	end, _ := utils.ParseDate(req.EndDate)

	_, sellerID := currentUser(c)
	created, err := h.sellingService.Create(c.Request.Context(), sellerID, services.SellingRequestInput{
		AgentID:       req.AgentID,
		SellingReason: req.SellingReason,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		AskingPrice:   req.AskingPrice,
		StartDate:     start,
		EndDate:       end,
	})
	if err != nil {
		fail(c, err, "Failed to create selling request")
		return
	}
	responses.Success(c, http.StatusCreated, created, "Selling request created successfully")
}

// ListMine handles GET /api/v1/seller/selling-requests
func (h *SellingRequestHandler) ListMine(c *gin.Context) {
	_, sellerID := currentUser(c)
	list, err := h.sellingService.ListForSeller(c.Request.Context(), sellerID)
	if err != nil {
		fail(c, err, "Failed to retrieve selling requests")
		return
	}
	responses.Success(c, http.StatusOK, list, "Selling requests retrieved successfully")
}

// GetMine handles GET /api/v1/seller/selling-requests/:id
func (h *SellingRequestHandler) GetMine(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	_, sellerID := currentUser(c)
	req, err := h.sellingService.GetForSeller(c.Request.Context(), sellerID, id)
	if err != nil {
		fail(c, err, "Failed to retrieve selling request")
		return
	}
	responses.Success(c, http.StatusOK, req, "Selling request retrieved successfully")
}

// Update handles PATCH /api/v1/seller/selling-requests/:id
func (h *SellingRequestHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var body sellingRequestPatchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}

	patch := services.SellingRequestPatch{
		AgentID:       body.AgentID,
		SellingReason: body.SellingReason,
		ContactName:   body.ContactName,
		ContactEmail:  body.ContactEmail,
		ContactPhone:  body.ContactPhone,
		AskingPrice:   body.AskingPrice,
	}
	if body.StartDate != nil {
		d, _ := utils.ParseDate(*body.StartDate)
		patch.StartDate = &d
	}
	if body.EndDate != nil {
		d, _ := utils.ParseDate(*body.EndDate)
		patch.EndDate = &d
	}

	_, sellerID := currentUser(c)
	updated, err := h.sellingService.Update(c.Request.Context(), sellerID, id, patch)
	if err != nil {
		fail(c, err, "Failed to update selling request")
		return
	}
	responses.Success(c, http.StatusOK, updated, "Selling request updated successfully")
}

// Delete handles DELETE /api/v1/seller/selling-requests/:id
func (h *SellingRequestHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	_, sellerID := currentUser(c)
	if err := h.sellingService.Delete(c.Request.Context(), sellerID, id); err != nil {
		fail(c, err, "Failed to delete selling request")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Selling request deleted successfully")
}

// ListAgents handles GET /api/v1/seller/agents
func (h *SellingRequestHandler) ListAgents(c *gin.Context) {
	agents, err := h.sellingService.ListAgents(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to retrieve agents")
		return
	}
	responses.Success(c, http.StatusOK, agents, "Agents retrieved successfully")
}

// ListAssigned handles GET /api/v1/agent/selling-requests
func (h *SellingRequestHandler) ListAssigned(c *gin.Context) {
	_, agentID := currentUser(c)
	status := models.SellingRequestStatus(c.Query("status"))
	list, err := h.sellingService.ListForAgent(c.Request.Context(), agentID, status)
	if err != nil {
		fail(c, err, "Failed to retrieve selling requests")
		return
	}
	responses.Success(c, http.StatusOK, list, "Selling requests retrieved successfully")
}

// Stats handles GET /api/v1/agent/selling-requests/stats
func (h *SellingRequestHandler) Stats(c *gin.Context) {
	_, agentID := currentUser(c)
	stats, err := h.sellingService.Stats(c.Request.Context(), agentID)
	if err != nil {
		fail(c, err, "Failed to retrieve statistics")
		return
	}
	responses.Success(c, http.StatusOK, stats, "Statistics retrieved successfully")
}

// GetAssigned handles GET /api/v1/agent/selling-requests/:id
func (h *SellingRequestHandler) GetAssigned(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	_, agentID := currentUser(c)
	req, err := h.sellingService.GetForAgent(c.Request.Context(), agentID, id)
	if err != nil {
		fail(c, err, "Failed to retrieve selling request")
		return
	}
	responses.Success(c, http.StatusOK, req, "Selling request retrieved successfully")
}

// Decide handles PATCH /api/v1/agent/selling-requests/:id/status
func (h *SellingRequestHandler) Decide(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Status models.SellingRequestStatus `json:"status" binding:"required,oneof=accepted rejected"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err, "Status must be 'accepted' or 'rejected'")
		return
	}

	_, agentID := currentUser(c)
	req, err := h.sellingService.Decide(c.Request.Context(), agentID, id, body.Status)
	if err != nil {
		fail(c, err, "Failed to update selling request")
		return
	}
	responses.Success(c, http.StatusOK, req, "Selling request "+string(body.Status)+" successfully")
}
