package models

import (
	"time"

	"github.com/google/uuid"
)

type ConversationType string

const (
	ConversationSellingRequest ConversationType = "selling_request"
	ConversationShowingInquiry ConversationType = "showing_inquiry"
	ConversationGeneral        ConversationType = "general"
)

func (t ConversationType) Valid() bool {
	return t == ConversationSellingRequest || t == ConversationShowingInquiry || t == ConversationGeneral
}

// Conversation is a thread between an agent and either a seller or a buyer.
type Conversation struct {
	Base
	AgentID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"agent_id"`
	Agent    *Agent     `gorm:"foreignKey:AgentID;constraint:OnDelete:CASCADE" json:"agent,omitempty"`
	SellerID *uuid.UUID `gorm:"type:uuid;index" json:"seller_id,omitempty"`
	Seller   *Seller    `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE" json:"seller,omitempty"`
	BuyerID  *uuid.UUID `gorm:"type:uuid;index" json:"buyer_id,omitempty"`
	Buyer    *Buyer     `gorm:"foreignKey:BuyerID;constraint:OnDelete:CASCADE" json:"buyer,omitempty"`

	ConversationType  ConversationType `gorm:"type:varchar(20);not null" json:"conversation_type"`
	SellingRequestID  *uuid.UUID       `gorm:"type:uuid" json:"selling_request_id,omitempty"`
	ShowingScheduleID *uuid.UUID       `gorm:"type:uuid" json:"showing_schedule_id,omitempty"`
	PropertyListingID *uuid.UUID       `gorm:"type:uuid" json:"property_listing_id,omitempty"`

	Subject       string     `gorm:"type:varchar(255)" json:"subject"`
	IsActive      bool       `gorm:"not null" json:"is_active"`
	LastMessageAt *time.Time `gorm:"index" json:"last_message_at"`
}

// HasParticipant reports whether the user takes part in the conversation.
func (c *Conversation) HasParticipant(role Role, userID uuid.UUID) bool {
	switch role {
	case RoleAgent:
		return c.AgentID == userID
	case RoleSeller:
		return c.SellerID != nil && *c.SellerID == userID
	case RoleBuyer:
		return c.BuyerID != nil && *c.BuyerID == userID
	}
	return false
}

type Message struct {
	Base
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderType     Role       `gorm:"type:varchar(10);not null" json:"sender_type"`
	SenderID       uuid.UUID  `gorm:"type:uuid;not null" json:"sender_id"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	IsRead         bool       `gorm:"not null;index" json:"is_read"`
	ReadAt         *time.Time `json:"read_at"`
}
