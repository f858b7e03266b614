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

type ShowingHandler struct {
	showingService *services.ShowingService
}

func NewShowingHandler(showingService *services.ShowingService) *ShowingHandler {
	return &ShowingHandler{showingService: showingService}
}

type showingRequestBody struct {
	PropertyListingID uuid.UUID            `json:"property_listing_id" binding:"required"`
	RequestedDate     string               `json:"requested_date" binding:"required,ymd,notpast"`
	PreferredTime     models.PreferredTime `json:"preferred_time" binding:"omitempty,oneof=morning afternoon evening"`
	AdditionalNotes   string               `json:"additional_notes"`
}

type buyerRescheduleBody struct {
	PreferredDate string               `json:"preferred_date" binding:"required,ymd,notpast"`
	PreferredTime models.PreferredTime `json:"preferred_time" binding:"required,oneof=morning afternoon evening"`
}

type agentScheduleBody struct {
	BuyerID           uuid.UUID `json:"buyer_id" binding:"required"`
	PropertyListingID uuid.UUID `json:"property_listing_id" binding:"required"`
	ScheduledDate     string    `json:"scheduled_date" binding:"required,ymd,notpast"`
	ScheduledTime     string    `json:"scheduled_time" binding:"required,hhmm"`
	AgentNotes        string    `json:"agent_notes"`
}

type respondBody struct {
	Status        models.ShowingStatus `json:"status" binding:"required,oneof=accepted declined"`
	AgentResponse string               `json:"agent_response"`
	ConfirmedDate string               `json:"confirmed_date" binding:"omitempty,ymd,notpast"`
	ConfirmedTime string               `json:"confirmed_time" binding:"omitempty,hhmm"`
}

type agentRescheduleBody struct {
	ConfirmedDate string `json:"confirmed_date" binding:"required,ymd,notpast"`
	ConfirmedTime string `json:"confirmed_time" binding:"required,hhmm"`
	Reason        string `json:"reason"`
}

// Request handles POST /api/v1/buyer/showings
func (h *ShowingHandler) Request(c *gin.Context) {
	var body showingRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	date, _ := utils.ParseDate(body.RequestedDate)

	_, buyerID := currentUser(c)
	sh, err := h.showingService.Request(c.Request.Context(), buyerID, services.ShowingRequestInput{
		ListingID:       body.PropertyListingID,
		RequestedDate:   date,
		PreferredTime:   body.PreferredTime,
		AdditionalNotes: body.AdditionalNotes,
	})
	if err != nil {
		fail(c, err, "Failed to request showing")
		return
	}
	responses.Success(c, http.StatusCreated, sh, "Showing request submitted successfully")
}

// ListForBuyer handles GET /api/v1/buyer/showings
func (h *ShowingHandler) ListForBuyer(c *gin.Context) {
	_, buyerID := currentUser(c)
	list, err := h.showingService.ListForBuyer(c.Request.Context(), buyerID, models.ShowingStatus(c.Query("status")))
	if err != nil {
		fail(c, err, "Failed to retrieve showings")
		return
	}
	responses.Success(c, http.StatusOK, list, "Showings retrieved successfully")
}

// GetForBuyer handles GET /api/v1/buyer/showings/:id
func (h *ShowingHandler) GetForBuyer(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	_, buyerID := currentUser(c)
	sh, err := h.showingService.GetForBuyer(c.Request.Context(), buyerID, id)
	if err != nil {
		fail(c, err, "Failed to retrieve showing")
		return
	}
	responses.Success(c, http.StatusOK, sh, "Showing retrieved successfully")
}

// BuyerReschedule handles POST /api/v1/buyer/showings/:id/reschedule
func (h *ShowingHandler) BuyerReschedule(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var body buyerRescheduleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	date, _ := utils.ParseDate(body.PreferredDate)

	_, buyerID := currentUser(c)
	sh, err := h.showingService.BuyerReschedule(c.Request.Context(), buyerID, id, date, body.PreferredTime)
	if err != nil {
		fail(c, err, "Failed to reschedule showing")
		return
	}
	responses.Success(c, http.StatusOK, sh, "Reschedule request sent successfully")
}

// Cancel handles DELETE /api/v1/buyer/showings/:id
func (h *ShowingHandler) Cancel(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	_, buyerID := currentUser(c)
	sh, err := h.showingService.Cancel(c.Request.Context(), buyerID, id)
	if err != nil {
		fail(c, err, "Failed to cancel showing")
		return
	}
	responses.Success(c, http.StatusOK, sh, "Showing cancelled successfully")
}

// SignAgreement handles POST /api/v1/buyer/showings/:id/sign-agreement
func (h *ShowingHandler) SignAgreement(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var up uploads
	defer up.Close()
	signature, err := up.file(c, "signature")
	if err != nil {
		badRequest(c, err, "Invalid signature upload")
		return
	}

	_, buyerID := currentUser(c)
	agreement, err := h.showingService.SignAgreement(c.Request.Context(), buyerID, id, services.SignAgreementInput{
		Signature:         signature,
		AgreementAccepted: utils.Truthy(c.PostForm("agreement_accepted")),
		DurationType:      models.AgreementDuration(c.PostForm("duration_type")),
		TermsText:         c.PostForm("terms_text"),
	})
	if err != nil {
		fail(c, err, "Failed to sign agreement")
		return
	}
	responses.Success(c, http.StatusCreated, agreement, "Agreement signed successfully")
}

// Agreement handles GET /api/v1/buyer/showings/:id/agreement
func (h *ShowingHandler) Agreement(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	_, buyerID := currentUser(c)
	agreement, err := h.showingService.Agreement(c.Request.Context(), buyerID, id)
	if err != nil {
		fail(c, err, "Failed to retrieve agreement")
		return
	}
	responses.Success(c, http.StatusOK, agreement, "Agreement retrieved successfully")
}

// ListForAgent handles GET /api/v1/agent/showings
func (h *ShowingHandler) ListForAgent(c *gin.Context) {
	_, agentID := currentUser(c)
	list, err := h.showingService.ListForAgent(c.Request.Context(), agentID, models.ShowingStatus(c.Query("status")))
	if err != nil {
		fail(c, err, "Failed to retrieve showings")
		return
	}
	responses.Success(c, http.StatusOK, list, "Showings retrieved successfully")
}

// GetForAgent handles GET /api/v1/agent/showings/:id
func (h *ShowingHandler) GetForAgent(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	_, agentID := currentUser(c)
	sh, err := h.showingService.GetForAgent(c.Request.Context(), agentID, id)
	if err != nil {
		fail(c, err, "Failed to retrieve showing")
		return
	}
	responses.Success(c, http.StatusOK, sh, "Showing retrieved successfully")
}

// Schedule handles POST /api/v1/agent/showings
func (h *ShowingHandler) Schedule(c *gin.Context) {
	var body agentScheduleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	date, _ := utils.ParseDate(body.ScheduledDate)

	_, agentID := currentUser(c)
	sh, err := h.showingService.Schedule(c.Request.Context(), agentID, services.AgentScheduleInput{
		BuyerID:       body.BuyerID,
		ListingID:     body.PropertyListingID,
		ScheduledDate: date,
		ScheduledTime: body.ScheduledTime,
		AgentNotes:    body.AgentNotes,
	})
	if err != nil {
		fail(c, err, "Failed to schedule showing")
		return
	}
	responses.Success(c, http.StatusCreated, sh, "Showing scheduled successfully")
}

func (h *ShowingHandler) respond(c *gin.Context, in services.RespondInput) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	_, agentID := currentUser(c)
	sh, err := h.showingService.Respond(c.Request.Context(), agentID, id, in)
	if err != nil {
		fail(c, err, "Failed to respond to showing")
		return
	}
	responses.Success(c, http.StatusOK, sh, "Showing "+string(in.Status)+" successfully")
}

// Respond handles POST /api/v1/agent/showings/:id/respond
func (h *ShowingHandler) Respond(c *gin.Context) {
	var body respondBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	if body.Status == models.ShowingAccepted && (body.ConfirmedDate == "" || body.ConfirmedTime == "") {
		badRequest(c, nil, "confirmed_date and confirmed_time are required when accepting a showing")
		return
	}
	date, err := parseOptionalDate(body.ConfirmedDate)
	if err != nil {
		badRequest(c, err, "Invalid confirmed_date")
		return
	}
	h.respond(c, services.RespondInput{
		Status:        body.Status,
		AgentResponse: body.AgentResponse,
		ConfirmedDate: date,
		ConfirmedTime: body.ConfirmedTime,
	})
}

// Accept handles POST /api/v1/agent/showings/:id/accept
func (h *ShowingHandler) Accept(c *gin.Context) {
	var body struct {
		AgentResponse string `json:"agent_response"`
		ConfirmedDate string `json:"confirmed_date" binding:"omitempty,ymd,notpast"`
		ConfirmedTime string `json:"confirmed_time" binding:"omitempty,hhmm"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err, "Invalid request body")
			return
		}
	}
	date, err := parseOptionalDate(body.ConfirmedDate)
	if err != nil {
		badRequest(c, err, "Invalid confirmed_date")
		return
	}
	h.respond(c, services.RespondInput{
		Status:        models.ShowingAccepted,
		AgentResponse: body.AgentResponse,
		ConfirmedDate: date,
		ConfirmedTime: body.ConfirmedTime,
	})
}

// Reject handles POST /api/v1/agent/showings/:id/reject
func (h *ShowingHandler) Reject(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err, "Invalid request body")
			return
		}
	}
	h.respond(c, services.RespondInput{
		Status:        models.ShowingDeclined,
		AgentResponse: body.Reason,
	})
}

// Reschedule handles POST /api/v1/agent/showings/:id/reschedule
func (h *ShowingHandler) Reschedule(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var body agentRescheduleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err, "Invalid request body")
		return
	}
	date, _ := utils.ParseDate(body.ConfirmedDate)

	_, agentID := currentUser(c)
	sh, err := h.showingService.Reschedule(c.Request.Context(), agentID, id, date, body.ConfirmedTime, body.Reason)
	if err != nil {
		fail(c, err, "Failed to reschedule showing")
		return
	}
	responses.Success(c, http.StatusOK, sh, "Showing rescheduled successfully")
}

// AgentAgreements handles GET /api/v1/agent/showing-agreements
func (h *ShowingHandler) AgentAgreements(c *gin.Context) {
	_, agentID := currentUser(c)
	list, err := h.showingService.AgentAgreements(c.Request.Context(), agentID)
	if err != nil {
		fail(c, err, "Failed to retrieve agreements")
		return
	}
	responses.Success(c, http.StatusOK, list, "Agreements retrieved successfully")
}

// ListAgreements handles GET /api/v1/admin/showing-agreements
func (h *ShowingHandler) ListAgreements(c *gin.Context) {
	p := pageOf(c)
	list, total, err := h.showingService.ListAgreements(c.Request.Context(), p.Offset(), p.PerPage)
	if err != nil {
		fail(c, err, "Failed to retrieve agreements")
		return
	}
	responses.Success(c, http.StatusOK, paged(list, total, p), "Agreements retrieved successfully")
}

// AdminShowing handles GET /api/v1/admin/showing-agreements/:id
func (h *ShowingHandler) AdminShowing(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	sh, err := h.showingService.Showing(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to retrieve showing schedule")
		return
	}
	responses.Success(c, http.StatusOK, sh, "Showing schedule retrieved successfully")
}
