package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
)

type SellingRequestInput struct {
	AgentID       *uuid.UUID
	SellingReason string
	ContactName   string
	ContactEmail  string
	ContactPhone  string
	AskingPrice   float64
	StartDate     time.Time
	EndDate       time.Time
}

// SellingRequestPatch holds the optional fields a seller may change while pending.
type SellingRequestPatch struct {
	AgentID       *uuid.UUID
	SellingReason *string
	ContactName   *string
	ContactEmail  *string
	ContactPhone  *string
	AskingPrice   *float64
	StartDate     *time.Time
	EndDate       *time.Time
}

type StatusCount struct {
	Status models.SellingRequestStatus `json:"status"`
	Count  int64                       `json:"count"`
}

type SellingRequestStats struct {
	TotalRequests int64         `json:"total_requests"`
	PendingCount  int64         `json:"pending_count"`
	AcceptedCount int64         `json:"accepted_count"`
	RejectedCount int64         `json:"rejected_count"`
	Stats         []StatusCount `json:"stats"`
}

type SellingRequestService struct {
	store    *repositories.Store
	notifier *Notifier
}

func NewSellingRequestService(store *repositories.Store, notifier *Notifier) *SellingRequestService {
	return &SellingRequestService{store: store, notifier: notifier}
}

func (s *SellingRequestService) activeAgent(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	p, err := s.store.Accounts.FindByID(ctx, models.RoleAgent, id)
	if err != nil {
		return nil, fmt.Errorf("find agent: %w", err)
	}
	if p == nil || !p.Credentials().IsActive {
		return nil, invalid("Selected agent does not exist or is not active")
	}
	return p.(*models.Agent), nil
}

func (s *SellingRequestService) Create(ctx context.Context, sellerID uuid.UUID, in SellingRequestInput) (*models.SellingRequest, error) {
	if !in.StartDate.Before(in.EndDate) {
		return nil, invalid("Start date must be before end date")
	}
	if in.AskingPrice <= 0 {
		return nil, invalid("Asking price must be greater than zero")
	}
	if in.AgentID != nil {
		if _, err := s.activeAgent(ctx, *in.AgentID); err != nil {
			return nil, err
		}
	}

	req := &models.SellingRequest{
		SellerID:      sellerID,
		AgentID:       in.AgentID,
		SellingReason: in.SellingReason,
		ContactName:   in.ContactName,
		ContactEmail:  in.ContactEmail,
		ContactPhone:  in.ContactPhone,
		AskingPrice:   in.AskingPrice,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Status:        models.SellingRequestPending,
	}

	var out Outbox
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.SellingRequests.Create(ctx, req); err != nil {
			return fmt.Errorf("create selling request: %w", err)
		}
		return s.notifyAssigned(ctx, tx, &out, req)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Flush(&out)
	return s.store.SellingRequests.FindByID(ctx, req.ID)
}

// notifyAssigned tells the assigned agent about the request once per request.
func (s *SellingRequestService) notifyAssigned(ctx context.Context, tx *repositories.Store, out *Outbox, req *models.SellingRequest) error {
	if req.AgentID == nil {
		return nil
	}
	exists, err := tx.Notifications.ExistsForRequest(ctx, models.RoleAgent, *req.AgentID, req.ID, models.NotifyNewSellingRequest)
	if err != nil {
		return fmt.Errorf("check agent notification: %w", err)
	}
	if exists {
		return nil
	}

	sellerName := "A seller"
	if p, err := tx.Accounts.FindByID(ctx, models.RoleSeller, req.SellerID); err == nil && p != nil {
		sellerName = p.Credentials().FullName()
	}
	return out.Add(ctx, tx, models.RoleAgent, &models.Notification{
		RecipientID:      *req.AgentID,
		NotificationType: models.NotifyNewSellingRequest,
		Title:            "New Selling Request Assigned",
		Message:          fmt.Sprintf("You have been assigned a new selling request from %s for %s.", sellerName, req.ContactName),
		ActionURL:        fmt.Sprintf("/api/v1/agent/selling-requests/%s", req.ID),
		ActionText:       "View Request",
		SellingRequestID: &req.ID,
	})
}

func (s *SellingRequestService) ListForSeller(ctx context.Context, sellerID uuid.UUID) ([]models.SellingRequest, error) {
	return s.store.SellingRequests.ListBySeller(ctx, sellerID)
}

// GetForSeller hides requests owned by other sellers behind a not found.
func (s *SellingRequestService) GetForSeller(ctx context.Context, sellerID, id uuid.UUID) (*models.SellingRequest, error) {
	req, err := s.store.SellingRequests.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find selling request: %w", err)
	}
	if req == nil || req.SellerID != sellerID {
		return nil, notFound("Selling request not found")
	}
	return req, nil
}

func (s *SellingRequestService) Update(ctx context.Context, sellerID, id uuid.UUID, in SellingRequestPatch) (*models.SellingRequest, error) {
	req, err := s.GetForSeller(ctx, sellerID, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.SellingRequestPending {
		return nil, invalid("Can only update requests with 'pending' status. Current status: %s", req.Status)
	}

	if in.AgentID != nil {
		if _, err := s.activeAgent(ctx, *in.AgentID); err != nil {
			return nil, err
		}
		req.AgentID = in.AgentID
	}
	setString(&req.SellingReason, in.SellingReason)
	setString(&req.ContactName, in.ContactName)
	setString(&req.ContactEmail, in.ContactEmail)
	setString(&req.ContactPhone, in.ContactPhone)
	if in.AskingPrice != nil {
		if *in.AskingPrice <= 0 {
			return nil, invalid("Asking price must be greater than zero")
		}
		req.AskingPrice = *in.AskingPrice
	}
	if in.StartDate != nil {
		req.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		req.EndDate = *in.EndDate
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, invalid("Start date must be before end date")
	}

	var out Outbox
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.SellingRequests.Save(ctx, req); err != nil {
			return fmt.Errorf("save selling request: %w", err)
		}
		return s.notifyAssigned(ctx, tx, &out, req)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Flush(&out)
	return s.store.SellingRequests.FindByID(ctx, req.ID)
}

func (s *SellingRequestService) Delete(ctx context.Context, sellerID, id uuid.UUID) error {
	req, err := s.GetForSeller(ctx, sellerID, id)
	if err != nil {
		return err
	}
	if req.Status != models.SellingRequestPending {
		return invalid("Can only delete requests with 'pending' status. Current status: %s", req.Status)
	}
	return s.store.SellingRequests.Delete(ctx, id)
}

func (s *SellingRequestService) ListAgents(ctx context.Context) ([]models.Agent, error) {
	return s.store.Accounts.ListActiveAgents(ctx)
}

func (s *SellingRequestService) ListForAgent(ctx context.Context, agentID uuid.UUID, status models.SellingRequestStatus) ([]models.SellingRequest, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("Invalid status filter: %s", status)
	}
	return s.store.SellingRequests.ListByAgent(ctx, agentID, status)
}

func (s *SellingRequestService) Stats(ctx context.Context, agentID uuid.UUID) (*SellingRequestStats, error) {
	counts, err := s.store.SellingRequests.CountByStatus(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("count selling requests: %w", err)
	}
	st := &SellingRequestStats{
		PendingCount:  counts[models.SellingRequestPending],
		AcceptedCount: counts[models.SellingRequestAccepted],
		RejectedCount: counts[models.SellingRequestRejected],
		Stats:         []StatusCount{},
	}
	for _, status := range []models.SellingRequestStatus{
		models.SellingRequestPending, models.SellingRequestAccepted, models.SellingRequestRejected,
	} {
		if n := counts[status]; n > 0 {
			st.Stats = append(st.Stats, StatusCount{Status: status, Count: n})
		}
		st.TotalRequests += counts[status]
	}
	return st, nil
}

// GetForAgent only returns requests assigned to the agent.
func (s *SellingRequestService) GetForAgent(ctx context.Context, agentID, id uuid.UUID) (*models.SellingRequest, error) {
	req, err := s.store.SellingRequests.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find selling request: %w", err)
	}
	if req == nil || !req.IsAssignedTo(agentID) {
		return nil, notFound("Selling request not found or not assigned to you")
	}
	return req, nil
}

// Decide accepts or rejects a pending request and tells the seller.
func (s *SellingRequestService) Decide(ctx context.Context, agentID, id uuid.UUID, status models.SellingRequestStatus) (*models.SellingRequest, error) {
	if status != models.SellingRequestAccepted && status != models.SellingRequestRejected {
		return nil, invalid("Status must be accepted or rejected")
	}
	req, err := s.GetForAgent(ctx, agentID, id)
	if err != nil {
		return nil, err
	}
	if req.Status != models.SellingRequestPending {
		return nil, invalid("Can only update requests with 'pending' status. Current status: %s", req.Status)
	}
	req.Status = status

	n := &models.Notification{
		RecipientID:      req.SellerID,
		SellingRequestID: &req.ID,
	}
	if status == models.SellingRequestAccepted {
		n.NotificationType = models.NotifyApproved
		n.Title = "Selling Request Approved"
		n.Message = "Your property selling request has been accepted for review. " +
			"Upload your property images or supporting documents so we can prepare your CMA report."
		n.ActionText = "View CMA Report"
		n.ActionURL = fmt.Sprintf("/api/v1/seller/selling-requests/%s", req.ID)
	} else {
		n.NotificationType = models.NotifyRejected
		n.Title = "Selling Request Declined"
		n.Message = "Your property selling request has been declined by the agent. " +
			"We will reach out to you shortly to discuss next steps or you can contact via chat."
		n.ActionText = "Chat with Agent"
		n.ActionURL = "/api/v1/messaging/conversations"
	}

	var out Outbox
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.SellingRequests.Save(ctx, req); err != nil {
			return fmt.Errorf("save selling request: %w", err)
		}
		return out.Add(ctx, tx, models.RoleSeller, n)
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Flush(&out)
	return req, nil
}
