package models

import (
	"time"

	"github.com/google/uuid"
)

type ShowingStatus string

const (
	ShowingPending   ShowingStatus = "pending"
	ShowingAccepted  ShowingStatus = "accepted"
	ShowingDeclined  ShowingStatus = "declined"
	ShowingCancelled ShowingStatus = "cancelled"
	ShowingCompleted ShowingStatus = "completed"
)

func (s ShowingStatus) Valid() bool {
	switch s {
	case ShowingPending, ShowingAccepted, ShowingDeclined, ShowingCancelled, ShowingCompleted:
		return true
	}
	return false
}

type PreferredTime string

const (
	PreferredMorning   PreferredTime = "morning"
	PreferredAfternoon PreferredTime = "afternoon"
	PreferredEvening   PreferredTime = "evening"
)

func (p PreferredTime) Valid() bool {
	return p == PreferredMorning || p == PreferredAfternoon || p == PreferredEvening
}

// ShowingSchedule is a buyer's request to view a listing and the agent's answer.
type ShowingSchedule struct {
	Base
	BuyerID           uuid.UUID        `gorm:"type:uuid;not null;index" json:"buyer_id"`
	Buyer             *Buyer           `gorm:"foreignKey:BuyerID;constraint:OnDelete:CASCADE" json:"buyer,omitempty"`
	PropertyListingID uuid.UUID        `gorm:"type:uuid;not null;index" json:"property_listing_id"`
	PropertyListing   *PropertyListing `gorm:"foreignKey:PropertyListingID;constraint:OnDelete:CASCADE" json:"property_listing,omitempty"`

	RequestedDate   time.Time     `gorm:"type:date;not null" json:"requested_date"`
	PreferredTime   PreferredTime `gorm:"type:varchar(20);not null" json:"preferred_time"`
	AdditionalNotes string        `gorm:"type:text" json:"additional_notes"`

	Status        ShowingStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	AgentResponse string        `gorm:"type:text" json:"agent_response"`
	RespondedAt   *time.Time    `json:"responded_at"`
	ConfirmedDate *time.Time    `gorm:"type:date" json:"confirmed_date"`
	ConfirmedTime string        `gorm:"type:varchar(5)" json:"confirmed_time"`

	Agreement *ShowingAgreement `gorm:"foreignKey:ShowingScheduleID;constraint:OnDelete:CASCADE" json:"agreement,omitempty"`
}

// Closed reports whether the showing can no longer be rescheduled.
func (s *ShowingSchedule) Closed() bool {
	return s.Status == ShowingCompleted || s.Status == ShowingCancelled
}

// Cancellable reports whether the buyer may still cancel.
func (s *ShowingSchedule) Cancellable() bool {
	return s.Status == ShowingPending || s.Status == ShowingAccepted
}

// Confirm records the agreed slot and marks the showing accepted.
func (s *ShowingSchedule) Confirm(date *time.Time, at string) {
	s.Status = ShowingAccepted
	s.ConfirmedDate = date
	s.ConfirmedTime = at
}

// ShowingDate is the confirmed date if one exists, otherwise the requested date.
func (s *ShowingSchedule) ShowingDate() time.Time {
	if s.ConfirmedDate != nil {
		return *s.ConfirmedDate
	}
	return s.RequestedDate
}

type AgreementDuration string

const (
	DurationSevenDays   AgreementDuration = "7_days"
	DurationOneProperty AgreementDuration = "one_property"
)

func (d AgreementDuration) Valid() bool {
	return d == DurationSevenDays || d == DurationOneProperty
}

// ShowingAgreement is the buyer's signed agreement for an accepted showing.
type ShowingAgreement struct {
	Base
	ShowingScheduleID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex" json:"showing_schedule_id"`
	BuyerID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"buyer_id"`
	AgentID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"agent_id"`
	DurationType      AgreementDuration `gorm:"type:varchar(20);not null" json:"duration_type"`
	PropertyAddress   string            `gorm:"type:text" json:"property_address"`
	ShowingDate       time.Time         `gorm:"type:date" json:"showing_date"`
	Signature         string            `gorm:"type:text" json:"signature"`
	AgreementAccepted bool              `json:"agreement_accepted"`
	TermsText         string            `gorm:"type:text" json:"terms_text"`
	SignedAt          time.Time         `json:"signed_at"`
}
