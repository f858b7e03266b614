package models

import (
	"time"

	"github.com/google/uuid"
)

type DocumentType string

const (
	DocumentCMA        DocumentType = "cma"
	DocumentInspection DocumentType = "inspection"
	DocumentAppraisal  DocumentType = "appraisal"
	DocumentOther      DocumentType = "other"
)

func (d DocumentType) Valid() bool {
	switch d {
	case DocumentCMA, DocumentInspection, DocumentAppraisal, DocumentOther:
		return true
	}
	return false
}

// ReviewStatus is the seller's verdict on a CMA or a selling agreement.
type ReviewStatus string

const (
	ReviewNone     ReviewStatus = ""
	ReviewPending  ReviewStatus = "pending"
	ReviewAccepted ReviewStatus = "accepted"
	ReviewRejected ReviewStatus = "rejected"
)

// Decided reports whether the seller already accepted or rejected.
func (r ReviewStatus) Decided() bool {
	return r == ReviewAccepted || r == ReviewRejected
}

// PropertyDocument groups files attached to a selling request, such as a CMA report,
// and carries the selling agreement once the agent uploads one.
type PropertyDocument struct {
	Base
	SellingRequestID uuid.UUID       `gorm:"type:uuid;not null;index" json:"selling_request_id"`
	SellingRequest   *SellingRequest `gorm:"foreignKey:SellingRequestID;constraint:OnDelete:CASCADE" json:"selling_request,omitempty"`
	SellerID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"seller_id"`
	Seller           *Seller         `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE" json:"seller,omitempty"`
	UploadedByID     *uuid.UUID      `gorm:"type:uuid" json:"uploaded_by_agent_id,omitempty"`
	DocumentType     DocumentType    `gorm:"type:varchar(20);not null;index" json:"document_type"`
	Title            string          `gorm:"type:varchar(255);not null" json:"title"`
	Description      string          `gorm:"type:text" json:"description"`

	CMAStatus         ReviewStatus `gorm:"column:cma_status;type:varchar(20)" json:"cma_status"`
	CMADocumentStatus ReviewStatus `gorm:"column:cma_document_status;type:varchar(20)" json:"cma_document_status"`

	SellingAgreementFile     string       `gorm:"type:text" json:"selling_agreement_file,omitempty"`
	SellingAgreementURL      string       `gorm:"-" json:"selling_agreement_url,omitempty"`
	AgreementStatus          ReviewStatus `gorm:"type:varchar(20)" json:"agreement_status"`
	AgreementRejectionReason string       `gorm:"type:text" json:"agreement_rejection_reason,omitempty"`
	AgreementUploadedAt      *time.Time   `json:"agreement_uploaded_at,omitempty"`

	Files []DocumentFile `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"files"`
}

type DocumentFile struct {
	Base
	DocumentID       uuid.UUID `gorm:"type:uuid;not null;index" json:"document_id"`
	File             string    `gorm:"type:text;not null" json:"file"`
	OriginalFilename string    `gorm:"type:varchar(255)" json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	URL              string    `gorm:"-" json:"url,omitempty"`
}
