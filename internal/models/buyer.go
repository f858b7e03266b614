package models

import "github.com/google/uuid"

// SavedListing is a buyer's bookmark on a local listing.
type SavedListing struct {
	Base
	BuyerID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_saved_buyer_listing" json:"buyer_id"`
	ListingID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_saved_buyer_listing" json:"listing_id"`
	Listing   *PropertyListing `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"listing,omitempty"`
	Notes     string           `gorm:"type:text" json:"notes"`
}

// BuyerDocument is a file a buyer keeps on their profile, such as a pre-approval letter.
type BuyerDocument struct {
	Base
	BuyerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"buyer_id"`
	Buyer       *Buyer    `gorm:"foreignKey:BuyerID;constraint:OnDelete:CASCADE" json:"buyer,omitempty"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	File        string    `gorm:"type:text;not null" json:"file"`
	FileSize    int64     `json:"file_size"`
	URL         string    `gorm:"-" json:"url,omitempty"`
}
