package models

import (
	"time"

	"github.com/google/uuid"
)

type SellingRequestStatus string

const (
	SellingRequestPending  SellingRequestStatus = "pending"
	SellingRequestAccepted SellingRequestStatus = "accepted"
	SellingRequestRejected SellingRequestStatus = "rejected"
)

func (s SellingRequestStatus) Valid() bool {
	return s == SellingRequestPending || s == SellingRequestAccepted || s == SellingRequestRejected
}

// SellingRequest is a seller asking an agent to take on the sale of a property.
type SellingRequest struct {
	Base
	SellerID      uuid.UUID            `gorm:"type:uuid;not null;index" json:"seller_id"`
	Seller        *Seller              `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE" json:"seller,omitempty"`
	AgentID       *uuid.UUID           `gorm:"type:uuid;index" json:"agent_id"`
	Agent         *Agent               `gorm:"foreignKey:AgentID;constraint:OnDelete:SET NULL" json:"agent,omitempty"`
	SellingReason string               `gorm:"type:text" json:"selling_reason"`
	ContactName   string               `gorm:"type:varchar(255);not null" json:"contact_name"`
	ContactEmail  string               `gorm:"type:varchar(254);not null" json:"contact_email"`
	ContactPhone  string               `gorm:"type:varchar(20);not null" json:"contact_phone"`
	AskingPrice   float64              `gorm:"type:numeric(12,2);not null" json:"asking_price"`
	StartDate     time.Time            `gorm:"type:date;not null" json:"start_date"`
	EndDate       time.Time            `gorm:"type:date;not null" json:"end_date"`
	Status        SellingRequestStatus `gorm:"type:varchar(20);not null;index" json:"status"`
}

// IsAssignedTo reports whether the request is assigned to the given agent.
func (r *SellingRequest) IsAssignedTo(agentID uuid.UUID) bool {
	return r.AgentID != nil && *r.AgentID == agentID
}
