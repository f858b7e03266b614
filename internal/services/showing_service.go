package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
	"github.com/nahid2887/padzzey-sub000/internal/storage"
	"github.com/nahid2887/padzzey-sub000/internal/utils"
)

const (
	MaxSignatureSize = 5 << 20

	humanDate  = "January 02, 2006"
	humanClock = "03:04 PM"
)

var signatureExtensions = []string{"jpg", "jpeg", "png", "pdf"}

type ShowingRequestInput struct {
	ListingID       uuid.UUID
	RequestedDate   time.Time
	PreferredTime   models.PreferredTime
	AdditionalNotes string
}

type AgentScheduleInput struct {
	BuyerID       uuid.UUID
	ListingID     uuid.UUID
	ScheduledDate time.Time
	ScheduledTime string
	AgentNotes    string
}

type RespondInput struct {
	Status        models.ShowingStatus
	AgentResponse string
	ConfirmedDate *time.Time
	ConfirmedTime string
}

type SignAgreementInput struct {
	Signature         *storage.File
	AgreementAccepted bool
	DurationType      models.AgreementDuration
	TermsText         string
}

type ShowingService struct {
	store    *repositories.Store
	notifier *Notifier
	now      func() time.Time
}

func NewShowingService(store *repositories.Store, notifier *Notifier) *ShowingService {
	return &ShowingService{store: store, notifier: notifier, now: time.Now}
}

func clock12(hhmm string) string {
	t, err := time.Parse(utils.ClockLayout, hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format(humanClock)
}

func displayName(a *models.Account, fallback string) string {
	if a == nil {
		return fallback
	}
	return a.FullName()
}

func (s *ShowingService) notPast(d time.Time, field string) error {
	if utils.IsPastDate(d, s.now()) {
		return invalid("%s cannot be in the past", field)
	}
	return nil
}

// commit saves the showing and queued notifications in one transaction, then pushes them.
func (s *ShowingService) commit(ctx context.Context, fn func(tx *repositories.Store, out *Outbox) error) error {
	var out Outbox
	if err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		return fn(tx, &out)
	}); err != nil {
		return err
	}
	s.notifier.Flush(&out)
	return nil
}

func (s *ShowingService) reload(ctx context.Context, id uuid.UUID) (*models.ShowingSchedule, error) {
	sh, err := s.store.Showings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find showing: %w", err)
	}
	if sh == nil {
		return nil, notFound("Showing not found")
	}
	return sh, nil
}

// Request books a showing on a published listing and tells the listing agent.
func (s *ShowingService) Request(ctx context.Context, buyerID uuid.UUID, in ShowingRequestInput) (*models.ShowingSchedule, error) {
	if err := s.notPast(in.RequestedDate, "Requested date"); err != nil {
		return nil, err
	}
	if in.PreferredTime == "" {
		in.PreferredTime = models.PreferredAfternoon
	}
	if !in.PreferredTime.Valid() {
		return nil, invalid("Preferred time must be morning, afternoon or evening")
	}
	listing, err := s.store.Listings.FindByID(ctx, in.ListingID)
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}
	if listing == nil || listing.Status != models.ListingPublished {
		return nil, notFound("Property listing not found or not available")
	}
	buyer, err := s.store.Accounts.FindByID(ctx, models.RoleBuyer, buyerID)
	if err != nil {
		return nil, fmt.Errorf("find buyer: %w", err)
	}
	if buyer == nil {
		return nil, notFound("Buyer not found")
	}

	sh := &models.ShowingSchedule{
		BuyerID:           buyerID,
		PropertyListingID: listing.ID,
		RequestedDate:     utils.Today(in.RequestedDate),
		PreferredTime:     in.PreferredTime,
		AdditionalNotes:   in.AdditionalNotes,
		Status:            models.ShowingPending,
	}
	err = s.commit(ctx, func(tx *repositories.Store, out *Outbox) error {
		if err := tx.Showings.Create(ctx, sh); err != nil {
			return fmt.Errorf("create showing: %w", err)
		}
		return out.Add(ctx, tx, models.RoleAgent, &models.Notification{
			RecipientID:      listing.AgentID,
			NotificationType: models.NotifyShowingRequested,
			Title:            "New Showing Request",
			Message: fmt.Sprintf("%s has requested a showing for %s on %s (%s).",
				buyer.Credentials().FullName(), listing.Title, sh.RequestedDate.Format(humanDate), sh.PreferredTime),
			ActionURL:         fmt.Sprintf("/api/v1/agent/showings/%s", sh.ID),
			ActionText:        "View Request",
			ShowingScheduleID: &sh.ID,
			ListingID:         &listing.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, sh.ID)
}

func (s *ShowingService) ListForBuyer(ctx context.Context, buyerID uuid.UUID, status models.ShowingStatus) ([]models.ShowingSchedule, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("Invalid status filter: %s", status)
	}
	return s.store.Showings.ListByBuyer(ctx, buyerID, status)
}

func (s *ShowingService) GetForBuyer(ctx context.Context, buyerID, id uuid.UUID) (*models.ShowingSchedule, error) {
	sh, err := s.store.Showings.FindForBuyer(ctx, id, buyerID)
	if err != nil {
		return nil, fmt.Errorf("find showing: %w", err)
	}
	if sh == nil {
		return nil, notFound("Showing not found")
	}
	return sh, nil
}

// BuyerReschedule asks for a new date. An accepted showing goes back to pending.
func (s *ShowingService) BuyerReschedule(ctx context.Context, buyerID, id uuid.UUID, date time.Time, pt models.PreferredTime) (*models.ShowingSchedule, error) {
	sh, err := s.GetForBuyer(ctx, buyerID, id)
	if err != nil {
		return nil, err
	}
	if sh.Closed() {
		return nil, invalid("Cannot reschedule a showing with status: %s", sh.Status)
	}
	if err := s.notPast(date, "Preferred date"); err != nil {
		return nil, err
	}
	if pt == "" {
		pt = sh.PreferredTime
	}
	if !pt.Valid() {
		return nil, invalid("Preferred time must be morning, afternoon or evening")
	}

	oldDate, oldTime := sh.RequestedDate, sh.PreferredTime
	sh.RequestedDate = utils.Today(date)
	sh.PreferredTime = pt
	if sh.Status == models.ShowingAccepted {
		sh.Status = models.ShowingPending
		sh.ConfirmedDate = nil
		sh.ConfirmedTime = ""
	}

	listing := sh.PropertyListing
	msg := fmt.Sprintf("%s has requested to reschedule the showing for %s. Original: %s (%s). New request: %s (%s).",
		displayName(buyerAccount(sh.Buyer), "The buyer"), listing.Title,
		oldDate.Format(humanDate), oldTime, sh.RequestedDate.Format(humanDate), sh.PreferredTime)
	err = s.commit(ctx, func(tx *repositories.Store, out *Outbox) error {
		if err := tx.Showings.Save(ctx, sh); err != nil {
			return fmt.Errorf("save showing: %w", err)
		}
		return out.Add(ctx, tx, models.RoleAgent, &models.Notification{
			RecipientID:       listing.AgentID,
			NotificationType:  models.NotifyShowingRequested,
			Title:             "Showing Reschedule Request",
			Message:           msg,
			ActionURL:         fmt.Sprintf("/api/v1/agent/showings/%s", sh.ID),
			ActionText:        "Review Request",
			ShowingScheduleID: &sh.ID,
			ListingID:         &listing.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, sh.ID)
}

// Cancel withdraws a pending or accepted showing.
func (s *ShowingService) Cancel(ctx context.Context, buyerID, id uuid.UUID) (*models.ShowingSchedule, error) {
	sh, err := s.GetForBuyer(ctx, buyerID, id)
	if err != nil {
		return nil, err
	}
	if !sh.Cancellable() {
		return nil, invalid("Cannot cancel a showing with status: %s", sh.Status)
	}
	sh.Status = models.ShowingCancelled
	if err := s.store.Showings.Save(ctx, sh); err != nil {
		return nil, fmt.Errorf("save showing: %w", err)
	}
	return sh, nil
}

// encodeSignature validates the upload and returns it as a data URI.
func encodeSignature(f *storage.File) (string, error) {
	if f == nil || f.Content == nil {
		return "", invalid("Signature file is required")
	}
	if !utils.Contains(signatureExtensions, f.Ext()) {
		return "", invalid("Signature must be a JPG, JPEG, PNG or PDF file")
	}
	if f.Size > MaxSignatureSize {
		return "", invalid("Signature file must be 5MB or smaller")
	}
	raw, err := io.ReadAll(io.LimitReader(f.Content, MaxSignatureSize+1))
	if err != nil {
		return "", fmt.Errorf("read signature: %w", err)
	}
	if len(raw) > MaxSignatureSize {
		return "", invalid("Signature file must be 5MB or smaller")
	}
	ctype := mime.TypeByExtension("." + f.Ext())
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	return "data:" + ctype + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

// SignAgreement records the buyer's signature on an accepted showing and completes it.
func (s *ShowingService) SignAgreement(ctx context.Context, buyerID, id uuid.UUID, in SignAgreementInput) (*models.ShowingAgreement, error) {
	sh, err := s.GetForBuyer(ctx, buyerID, id)
	if err != nil {
		return nil, err
	}
	if sh.Status != models.ShowingAccepted {
		return nil, invalid("Agreement can only be signed for accepted showings. Current status: %s", sh.Status)
	}
	if sh.Agreement != nil {
		return nil, invalid("Agreement has already been signed for this showing")
	}
	if !in.AgreementAccepted {
		return nil, invalid("You must accept the agreement terms")
	}
	if in.DurationType == "" {
		in.DurationType = models.DurationOneProperty
	}
	if !in.DurationType.Valid() {
		return nil, invalid("Duration type must be 7_days or one_property")
	}
	signature, err := encodeSignature(in.Signature)
	if err != nil {
		return nil, err
	}

	listing := sh.PropertyListing
	agreement := &models.ShowingAgreement{
		ShowingScheduleID: sh.ID,
		BuyerID:           buyerID,
		AgentID:           listing.AgentID,
		DurationType:      in.DurationType,
		PropertyAddress:   listing.FullAddress(),
		ShowingDate:       sh.ShowingDate(),
		Signature:         signature,
		AgreementAccepted: true,
		TermsText:         in.TermsText,
		SignedAt:          s.now(),
	}
	sh.Status = models.ShowingCompleted

	err = s.commit(ctx, func(tx *repositories.Store, out *Outbox) error {
		if err := tx.Showings.CreateAgreement(ctx, agreement); err != nil {
			if repositories.IsDuplicate(err) {
				return invalid("Agreement has already been signed for this showing")
			}
			return fmt.Errorf("create agreement: %w", err)
		}
		if err := tx.Showings.Save(ctx, sh); err != nil {
			return fmt.Errorf("save showing: %w", err)
		}

		prior, err := tx.Notifications.FindForShowing(ctx, models.RoleBuyer, buyerID, sh.ID, models.NotifyShowingAccepted)
		if err != nil {
			return fmt.Errorf("find buyer notification: %w", err)
		}
		if prior != nil {
			prior.Title = "Agreement Signed Successfully"
			prior.Message = fmt.Sprintf("You have successfully signed the showing agreement for %s. "+
				"The agreement is now complete and the agent has been notified.", listing.Title)
			prior.ActionURL = fmt.Sprintf("/api/v1/buyer/showings/%s/agreement", sh.ID)
			prior.ActionText = "View Agreement"
			if err := tx.Notifications.Save(ctx, models.RoleBuyer, prior); err != nil {
				return fmt.Errorf("update buyer notification: %w", err)
			}
		}

		return out.Add(ctx, tx, models.RoleAgent, &models.Notification{
			RecipientID:      listing.AgentID,
			NotificationType: models.NotifyAgreementSigned,
			Title:            "Buyer Signed Agreement for " + listing.Title,
			Message: fmt.Sprintf("%s has signed the showing agreement for %s. The showing is now completed.",
				displayName(buyerAccount(sh.Buyer), "The buyer"), listing.Title),
			ActionURL:         fmt.Sprintf("/api/v1/agent/showings/%s", sh.ID),
			ActionText:        "View Agreement",
			ShowingScheduleID: &sh.ID,
			ListingID:         &listing.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return agreement, nil
}

func (s *ShowingService) Agreement(ctx context.Context, buyerID, id uuid.UUID) (*models.ShowingAgreement, error) {
	sh, err := s.GetForBuyer(ctx, buyerID, id)
	if err != nil {
		return nil, err
	}
	if sh.Agreement == nil {
		return nil, notFound("No agreement has been signed for this showing")
	}
	return sh.Agreement, nil
}

func (s *ShowingService) ListForAgent(ctx context.Context, agentID uuid.UUID, status models.ShowingStatus) ([]models.ShowingSchedule, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("Invalid status filter: %s", status)
	}
	return s.store.Showings.ListByAgent(ctx, agentID, status)
}

func (s *ShowingService) GetForAgent(ctx context.Context, agentID, id uuid.UUID) (*models.ShowingSchedule, error) {
	sh, err := s.store.Showings.FindForAgent(ctx, id, agentID)
	if err != nil {
		return nil, fmt.Errorf("find showing: %w", err)
	}
	if sh == nil {
		return nil, notFound("Showing not found")
	}
	return sh, nil
}

// Schedule books an already accepted showing on the agent's own listing.
func (s *ShowingService) Schedule(ctx context.Context, agentID uuid.UUID, in AgentScheduleInput) (*models.ShowingSchedule, error) {
	if err := s.notPast(in.ScheduledDate, "Scheduled date"); err != nil {
		return nil, err
	}
	at, err := utils.ParseClock(in.ScheduledTime)
	if err != nil {
		return nil, invalid("Scheduled time must be in HH:MM format")
	}
	listing, err := s.store.Listings.FindByID(ctx, in.ListingID)
	if err != nil {
		return nil, fmt.Errorf("find listing: %w", err)
	}
	if listing == nil {
		return nil, notFound("Property listing not found")
	}
	if listing.AgentID != agentID {
		return nil, forbidden("You can only schedule showings for your own listings")
	}
	buyer, err := s.store.Accounts.FindByID(ctx, models.RoleBuyer, in.BuyerID)
	if err != nil {
		return nil, fmt.Errorf("find buyer: %w", err)
	}
	if buyer == nil {
		return nil, notFound("Buyer not found")
	}

	date := utils.Today(in.ScheduledDate)
	now := s.now()
	sh := &models.ShowingSchedule{
		BuyerID:           in.BuyerID,
		PropertyListingID: listing.ID,
		RequestedDate:     date,
		PreferredTime:     models.PreferredAfternoon,
		AdditionalNotes:   "Scheduled by agent",
		AgentResponse:     in.AgentNotes,
		RespondedAt:       &now,
	}
	sh.Confirm(&date, at)

	agentName := displayName(accountOf(listing.Agent), "Your agent")
	err = s.commit(ctx, func(tx *repositories.Store, out *Outbox) error {
		if err := tx.Showings.Create(ctx, sh); err != nil {
			return fmt.Errorf("create showing: %w", err)
		}
		return out.Add(ctx, tx, models.RoleBuyer, &models.Notification{
			RecipientID:      in.BuyerID,
			NotificationType: models.NotifyShowingAccepted,
			Title:            "Showing Scheduled by Agent",
			Message: fmt.Sprintf("%s has scheduled a showing for %s on %s at %s. "+
				"Please upload your signature to complete the showing agreement.",
				agentName, listing.Title, date.Format(humanDate), clock12(at)),
			ActionURL:         fmt.Sprintf("/api/v1/buyer/showings/%s/sign-agreement", sh.ID),
			ActionText:        "Sign Agreement",
			ShowingScheduleID: &sh.ID,
			ListingID:         &listing.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, sh.ID)
}

func accountOf(a *models.Agent) *models.Account {
	if a == nil {
		return nil
	}
	return &a.Account
}

func buyerAccount(b *models.Buyer) *models.Account {
	if b == nil {
		return nil
	}
	return &b.Account
}

// Respond accepts or declines a pending showing and tells both parties.
func (s *ShowingService) Respond(ctx context.Context, agentID, id uuid.UUID, in RespondInput) (*models.ShowingSchedule, error) {
	if in.Status != models.ShowingAccepted && in.Status != models.ShowingDeclined {
		return nil, invalid("Status must be accepted or declined")
	}
	sh, err := s.GetForAgent(ctx, agentID, id)
	if err != nil {
		return nil, err
	}
	if sh.Status != models.ShowingPending {
		return nil, invalid("Cannot respond to a showing with status: %s", sh.Status)
	}

	var confirmedAt string
	if in.ConfirmedTime != "" {
		if confirmedAt, err = utils.ParseClock(in.ConfirmedTime); err != nil {
			return nil, invalid("Confirmed time must be in HH:MM format")
		}
	}
	if in.ConfirmedDate != nil {
		if err := s.notPast(*in.ConfirmedDate, "Confirmed date"); err != nil {
			return nil, err
		}
		d := utils.Today(*in.ConfirmedDate)
		in.ConfirmedDate = &d
	}

	now := s.now()
	sh.AgentResponse = strings.TrimSpace(in.AgentResponse)
	sh.RespondedAt = &now

	listing := sh.PropertyListing
	agentName := displayName(accountOf(listing.Agent), "The agent")
	buyerName := displayName(buyerAccount(sh.Buyer), "The buyer")
	buyerNote := &models.Notification{
		RecipientID:       sh.BuyerID,
		ShowingScheduleID: &sh.ID,
		ListingID:         &listing.ID,
	}
	agentNote := &models.Notification{
		RecipientID:       agentID,
		ActionURL:         fmt.Sprintf("/api/v1/agent/showings/%s", sh.ID),
		ActionText:        "View Showing",
		ShowingScheduleID: &sh.ID,
		ListingID:         &listing.ID,
	}

	if in.Status == models.ShowingAccepted {
		sh.Confirm(in.ConfirmedDate, confirmedAt)
		slot := "Please coordinate with the agent to confirm the exact time."
		if sh.ConfirmedDate != nil && sh.ConfirmedTime != "" {
			slot = fmt.Sprintf("Confirmed for %s at %s.", sh.ConfirmedDate.Format(humanDate), clock12(sh.ConfirmedTime))
		}
		buyerNote.NotificationType = models.NotifyShowingAccepted
		buyerNote.Title = "Showing Request Accepted!"
		buyerNote.Message = fmt.Sprintf("%s has accepted your showing request for %s. %s "+
			"Please upload your signature to complete the showing agreement.", agentName, listing.Title, slot)
		buyerNote.ActionURL = fmt.Sprintf("/api/v1/buyer/showings/%s/sign-agreement", sh.ID)
		buyerNote.ActionText = "Sign Agreement"

		agentNote.NotificationType = models.NotifyShowingAccepted
		agentNote.Title = "Showing Accepted - " + buyerName
		agentNote.Message = fmt.Sprintf("You accepted the showing request from %s for %s. %s", buyerName, listing.Title, slot)
	} else {
		sh.Status = models.ShowingDeclined
		msg := fmt.Sprintf("%s has declined your showing request for %s.", agentName, listing.Title)
		if sh.AgentResponse != "" {
			msg += " Reason: " + sh.AgentResponse
		}
		buyerNote.NotificationType = models.NotifyShowingDeclined
		buyerNote.Title = "Showing Request Declined"
		buyerNote.Message = msg
		buyerNote.ActionURL = fmt.Sprintf("/api/v1/buyer/showings/%s", sh.ID)
		buyerNote.ActionText = "View Details"

		agentNote.NotificationType = models.NotifyShowingDeclined
		agentNote.Title = "Showing Declined - " + buyerName
		agentNote.Message = fmt.Sprintf("You declined the showing request from %s for %s.", buyerName, listing.Title)
	}

	err = s.commit(ctx, func(tx *repositories.Store, out *Outbox) error {
		if err := tx.Showings.Save(ctx, sh); err != nil {
			return fmt.Errorf("save showing: %w", err)
		}
		if err := out.Add(ctx, tx, models.RoleBuyer, buyerNote); err != nil {
			return err
		}
		return out.Add(ctx, tx, models.RoleAgent, agentNote)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, sh.ID)
}

// Reschedule moves the showing to a new confirmed slot and tells the buyer.
func (s *ShowingService) Reschedule(ctx context.Context, agentID, id uuid.UUID, date time.Time, at, reason string) (*models.ShowingSchedule, error) {
	sh, err := s.GetForAgent(ctx, agentID, id)
	if err != nil {
		return nil, err
	}
	if sh.Closed() {
		return nil, invalid("Cannot reschedule a showing with status: %s", sh.Status)
	}
	if err := s.notPast(date, "Confirmed date"); err != nil {
		return nil, err
	}
	clock, err := utils.ParseClock(at)
	if err != nil {
		return nil, invalid("Confirmed time must be in HH:MM format")
	}

	original := sh.ShowingDate().Format(humanDate)
	if sh.ConfirmedTime != "" {
		original += " at " + clock12(sh.ConfirmedTime)
	} else {
		original += " (" + string(sh.PreferredTime) + ")"
	}
	d := utils.Today(date)
	now := s.now()
	sh.Confirm(&d, clock)
	sh.RespondedAt = &now
	if reason = strings.TrimSpace(reason); reason != "" {
		sh.AgentResponse = reason
	}

	listing := sh.PropertyListing
	msg := fmt.Sprintf("%s has rescheduled your showing for %s. Original: %s. New time: %s at %s.",
		displayName(accountOf(listing.Agent), "Your agent"), listing.Title, original, d.Format(humanDate), clock12(clock))
	if reason != "" {
		msg += " Reason: " + reason
	}
	err = s.commit(ctx, func(tx *repositories.Store, out *Outbox) error {
		if err := tx.Showings.Save(ctx, sh); err != nil {
			return fmt.Errorf("save showing: %w", err)
		}
		return out.Add(ctx, tx, models.RoleBuyer, &models.Notification{
			RecipientID:       sh.BuyerID,
			NotificationType:  models.NotifyShowingAccepted,
			Title:             "Showing Rescheduled by Agent",
			Message:           msg,
			ActionURL:         fmt.Sprintf("/api/v1/buyer/showings/%s", sh.ID),
			ActionText:        "View Details",
			ShowingScheduleID: &sh.ID,
			ListingID:         &listing.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, sh.ID)
}

func (s *ShowingService) AgentAgreements(ctx context.Context, agentID uuid.UUID) ([]models.ShowingAgreement, error) {
	return s.store.Showings.ListAgreementsByAgent(ctx, agentID)
}

func (s *ShowingService) ListAgreements(ctx context.Context, offset, limit int) ([]models.ShowingAgreement, int64, error) {
	return s.store.Showings.ListAgreements(ctx, offset, limit)
}

// Showing returns any showing with its buyer, listing, agent and agreement.
func (s *ShowingService) Showing(ctx context.Context, id uuid.UUID) (*models.ShowingSchedule, error) {
	sh, err := s.store.Showings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find showing: %w", err)
	}
	if sh == nil {
		return nil, notFound("Showing schedule not found")
	}
	return sh, nil
}
