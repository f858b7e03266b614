package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PropertyType string

const (
	PropertyHouse      PropertyType = "house"
	PropertyApartment  PropertyType = "apartment"
	PropertyCondo      PropertyType = "condo"
	PropertyTownhouse  PropertyType = "townhouse"
	PropertyLand       PropertyType = "land"
	PropertyCommercial PropertyType = "commercial"
	PropertyOther      PropertyType = "other"
)

func (p PropertyType) Valid() bool {
	switch p {
	case PropertyHouse, PropertyApartment, PropertyCondo, PropertyTownhouse,
		PropertyLand, PropertyCommercial, PropertyOther:
		return true
	}
	return false
}

type ListingStatus string

const (
	ListingDraft     ListingStatus = "draft"
	ListingPending   ListingStatus = "pending"
	ListingPublished ListingStatus = "published"
	ListingSold      ListingStatus = "sold"
	ListingArchived  ListingStatus = "archived"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingDraft, ListingPending, ListingPublished, ListingSold, ListingArchived:
		return true
	}
	return false
}

type PropertyListing struct {
	Base
	AgentID            uuid.UUID         `gorm:"type:uuid;not null;index" json:"agent_id"`
	Agent              *Agent            `gorm:"foreignKey:AgentID;constraint:OnDelete:CASCADE" json:"agent,omitempty"`
	PropertyDocumentID *uuid.UUID        `gorm:"type:uuid;uniqueIndex" json:"property_document_id"`
	PropertyDocument   *PropertyDocument `gorm:"foreignKey:PropertyDocumentID;constraint:OnDelete:SET NULL" json:"-"`

	Title         string       `gorm:"type:varchar(255);not null" json:"title"`
	StreetAddress string       `gorm:"type:varchar(255);not null" json:"street_address"`
	City          string       `gorm:"type:varchar(100);not null;index" json:"city"`
	State         string       `gorm:"type:varchar(50);not null" json:"state"`
	ZipCode       string       `gorm:"type:varchar(20);not null" json:"zip_code"`
	PropertyType  PropertyType `gorm:"type:varchar(20);not null" json:"property_type"`
	Bedrooms      *int         `json:"bedrooms"`
	Bathrooms     *float64     `gorm:"type:numeric(4,1)" json:"bathrooms"`
	SquareFeet    *int         `json:"square_feet"`
	Description   string       `gorm:"type:text" json:"description"`
	Price         float64      `gorm:"type:numeric(12,2);not null;index" json:"price"`

	Status      ListingStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PublishedAt *time.Time    `json:"published_at"`

	Photos    []ListingPhoto    `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"photos,omitempty"`
	Documents []ListingDocument `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

// MLSNumber is the identifier local listings expose next to MLS feed results.
func (l *PropertyListing) MLSNumber() string {
	return "LOCAL-" + l.ID.String()
}

func (l *PropertyListing) FullAddress() string {
	return strings.TrimSpace(fmt.Sprintf("%s, %s, %s %s", l.StreetAddress, l.City, l.State, l.ZipCode))
}

// SetStatus moves the listing to status and stamps the first publication time.
func (l *PropertyListing) SetStatus(status ListingStatus, now time.Time) {
	l.Status = status
	if status == ListingPublished && l.PublishedAt == nil {
		l.PublishedAt = &now
	}
}

type ListingPhoto struct {
	Base
	ListingID uuid.UUID `gorm:"type:uuid;not null;index" json:"listing_id"`
	Photo     string    `gorm:"type:text;not null" json:"photo"`
	Caption   string    `gorm:"type:varchar(255)" json:"caption"`
	IsPrimary bool      `json:"is_primary"`
	SortOrder int       `gorm:"column:sort_order" json:"order"`
	FileSize  int64     `json:"file_size"`
	URL       string    `gorm:"-" json:"url,omitempty"`
}

type ListingDocumentType string

const (
	ListingDocDeed       ListingDocumentType = "deed"
	ListingDocInspection ListingDocumentType = "inspection"
	ListingDocAppraisal  ListingDocumentType = "appraisal"
	ListingDocFloorPlan  ListingDocumentType = "floor_plan"
	ListingDocOther      ListingDocumentType = "other"
)

func (d ListingDocumentType) Valid() bool {
	switch d {
	case ListingDocDeed, ListingDocInspection, ListingDocAppraisal, ListingDocFloorPlan, ListingDocOther:
		return true
	}
	return false
}

type ListingDocument struct {
	Base
	ListingID    uuid.UUID           `gorm:"type:uuid;not null;index" json:"listing_id"`
	Document     string              `gorm:"type:text;not null" json:"document"`
	DocumentType ListingDocumentType `gorm:"type:varchar(20);not null" json:"document_type"`
	Title        string              `gorm:"type:varchar(255)" json:"title"`
	FileSize     int64               `json:"file_size"`
	URL          string              `gorm:"-" json:"url,omitempty"`
}
