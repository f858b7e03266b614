package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

// Seller notification types.
const (
	NotifyApproved  NotificationType = "approved"
	NotifyRejected  NotificationType = "rejected"
	NotifyCMAReady  NotificationType = "cma_ready"
	NotifyAgreement NotificationType = "agreement"
)

// Agent notification types. NotifyCMAReady is shared with sellers.
const (
	NotifyNewSellingRequest NotificationType = "new_selling_request"
	NotifyDocumentUploaded  NotificationType = "document_uploaded"
	NotifyCMARequested      NotificationType = "cma_requested"
	NotifyDocumentUpdated   NotificationType = "document_updated"
	NotifyShowingRequested  NotificationType = "showing_requested"
	NotifyAgreementSigned   NotificationType = "agreement_signed"
)

// Buyer notification types. Accepted and declined also land on the agent's feed.
const (
	NotifyShowingAccepted NotificationType = "showing_accepted"
	NotifyShowingDeclined NotificationType = "showing_declined"
	NotifyShowingReminder NotificationType = "showing_reminder"
	NotifyGeneral         NotificationType = "general"
)

// Notification is one row of a per-role notification table. Rows for each role
// live in their own table, see NotificationTable.
type Notification struct {
	Base
	RecipientID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"recipient_id"`
	NotificationType NotificationType `gorm:"type:varchar(40);not null" json:"notification_type"`
	Title            string           `gorm:"type:varchar(255);not null" json:"title"`
	Message          string           `gorm:"type:text" json:"message"`
	ActionURL        string           `gorm:"type:varchar(500)" json:"action_url,omitempty"`
	ActionText       string           `gorm:"type:varchar(100)" json:"action_text,omitempty"`
	IsRead           bool             `gorm:"not null;index" json:"is_read"`
	ReadAt           *time.Time       `json:"read_at"`

	SellingRequestID   *uuid.UUID `gorm:"type:uuid;index" json:"selling_request_id,omitempty"`
	PropertyDocumentID *uuid.UUID `gorm:"type:uuid" json:"property_document_id,omitempty"`
	ShowingScheduleID  *uuid.UUID `gorm:"type:uuid;index" json:"showing_schedule_id,omitempty"`
	ListingID          *uuid.UUID `gorm:"type:uuid" json:"listing_id,omitempty"`
}

// MarkRead flags the notification read once.
func (n *Notification) MarkRead(now time.Time) {
	if n.IsRead {
		return
	}
	n.IsRead = true
	n.ReadAt = &now
}

// NotificationTable returns the table holding the role's notifications.
func NotificationTable(role Role) string {
	return string(role) + "_notifications"
}

// The per-role types below only exist so migrations create one table per role
// with distinct index names.

type AgentNotification struct{ Notification }

func (AgentNotification) TableName() string { return NotificationTable(RoleAgent) }

type SellerNotification struct{ Notification }

func (SellerNotification) TableName() string { return NotificationTable(RoleSeller) }

type BuyerNotification struct{ Notification }

func (BuyerNotification) TableName() string { return NotificationTable(RoleBuyer) }
