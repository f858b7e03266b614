package models

import (
	"time"

	"github.com/google/uuid"
)

type LegalDocumentType string

const (
	LegalPrivacyPolicy   LegalDocumentType = "privacy_policy"
	LegalTermsConditions LegalDocumentType = "terms_conditions"
)

func (t LegalDocumentType) Valid() bool {
	return t == LegalPrivacyPolicy || t == LegalTermsConditions
}

// LegalDocument is a privacy policy or terms text published for one audience role.
// At most one document per (audience, type) is active.
type LegalDocument struct {
	Base
	Audience      Role              `gorm:"type:varchar(20);not null;index:idx_legal_audience_type" json:"audience"`
	DocumentType  LegalDocumentType `gorm:"type:varchar(30);not null;index:idx_legal_audience_type" json:"document_type"`
	Title         string            `gorm:"type:varchar(255);not null" json:"title"`
	Content       string            `gorm:"type:text;not null" json:"content"`
	Version       string            `gorm:"type:varchar(50);not null" json:"version"`
	IsActive      bool              `gorm:"not null" json:"is_active"`
	EffectiveDate time.Time         `gorm:"type:date;not null" json:"effective_date"`
}

type PlatformDocumentType string

const (
	PlatformMortgageLetter   PlatformDocumentType = "mortgage_letter"
	PlatformCMAReport        PlatformDocumentType = "cma_report"
	PlatformShowingAgreement PlatformDocumentType = "showing_agreement"
	PlatformSellingAgreement PlatformDocumentType = "selling_agreement"
	PlatformBuyerAgreement   PlatformDocumentType = "buyer_agreement"
)

func (t PlatformDocumentType) Valid() bool {
	switch t {
	case PlatformMortgageLetter, PlatformCMAReport, PlatformShowingAgreement,
		PlatformSellingAgreement, PlatformBuyerAgreement:
		return true
	}
	return false
}

// PlatformDocument is a template file published by the superadmin for buyers and sellers.
type PlatformDocument struct {
	Base
	DocumentType PlatformDocumentType `gorm:"type:varchar(50);not null;index" json:"document_type"`
	Title        string               `gorm:"type:varchar(255);not null" json:"title"`
	Description  string               `gorm:"type:text" json:"description"`
	Document     string               `gorm:"type:text;not null" json:"document"`
	FileSize     int64                `json:"file_size"`
	IsActive     bool                 `gorm:"not null" json:"is_active"`
	Version      string               `gorm:"type:varchar(50);not null" json:"version"`
	UploadedByID *uuid.UUID           `gorm:"type:uuid" json:"uploaded_by_id,omitempty"`
	URL          string               `gorm:"-" json:"url,omitempty"`
}
