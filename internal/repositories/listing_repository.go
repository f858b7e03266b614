package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// ListingFilter narrows listing searches. Zero values are ignored.
type ListingFilter struct {
	AgentID  *uuid.UUID
	Statuses []models.ListingStatus
	MinPrice *float64
	MaxPrice *float64
	Bedrooms *int
	City     string
	State    string
	ZipCode  string
	Offset   int
	Limit    int
}

func (f ListingFilter) scope(db *gorm.DB) *gorm.DB {
	if f.AgentID != nil {
		db = db.Where("agent_id = ?", *f.AgentID)
	}
	if len(f.Statuses) > 0 {
		db = db.Where("status IN ?", f.Statuses)
	}
	if f.MinPrice != nil {
		db = db.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		db = db.Where("price <= ?", *f.MaxPrice)
	}
	if f.Bedrooms != nil {
		db = db.Where("bedrooms >= ?", *f.Bedrooms)
	}
	if f.City != "" {
		db = db.Where(likeClause("LOWER(city)"), containsPattern(strings.ToLower(f.City)))
	}
	if f.State != "" {
		db = db.Where(likeClause("LOWER(state)"), containsPattern(strings.ToLower(f.State)))
	}
	if f.ZipCode != "" {
		db = db.Where("zip_code = ?", f.ZipCode)
	}
	return db
}

func (r *ListingRepository) Create(ctx context.Context, l *models.PropertyListing) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error
}

func (r *ListingRepository) Save(ctx context.Context, l *models.PropertyListing) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(l).Error
}

func (r *ListingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("listing_id = ?", id).Delete(&models.ListingPhoto{}).Error; err != nil {
		return err
	}
	if err := db.Where("listing_id = ?", id).Delete(&models.ListingDocument{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.PropertyListing{}, "id = ?", id).Error
}

func (r *ListingRepository) withMedia(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, sort_order ASC, created_at ASC")
		}).
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

func (r *ListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.PropertyListing, error) {
	return findOne(r.withMedia(ctx).Preload("Agent").Where("id = ?", id), &models.PropertyListing{})
}

func (r *ListingRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) (*models.PropertyListing, error) {
	return findOne(r.db.WithContext(ctx).Where("property_document_id = ?", documentID), &models.PropertyListing{})
}

// List returns one page of listings, newest first, with photos and documents loaded.
func (r *ListingRepository) List(ctx context.Context, f ListingFilter) ([]models.PropertyListing, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.PropertyListing{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.PropertyListing
	err := r.withMedia(ctx).
		Scopes(f.scope, paginate(f.Offset, f.Limit)).
		Order("created_at DESC").
		Find(&out).Error
	return out, total, err
}

func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PropertyListing{}).Count(&count).Error
	return count, err
}

func (r *ListingRepository) AddPhoto(ctx context.Context, p *models.ListingPhoto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// ClearPrimary unsets the primary flag on every photo of the listing except keep.
func (r *ListingRepository) ClearPrimary(ctx context.Context, listingID, keep uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ListingPhoto{}).
		Where("listing_id = ? AND id <> ?", listingID, keep).
		Update("is_primary", false).Error
}

func (r *ListingRepository) FindPhoto(ctx context.Context, listingID, photoID uuid.UUID) (*models.ListingPhoto, error) {
	q := r.db.WithContext(ctx).Where("id = ? AND listing_id = ?", photoID, listingID)
	return findOne(q, &models.ListingPhoto{})
}

func (r *ListingRepository) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ListingPhoto{}, "id = ?", id).Error
}

func (r *ListingRepository) AddDocument(ctx context.Context, d *models.ListingDocument) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *ListingRepository) FindDocument(ctx context.Context, listingID, documentID uuid.UUID) (*models.ListingDocument, error) {
	q := r.db.WithContext(ctx).Where("id = ? AND listing_id = ?", documentID, listingID)
	return findOne(q, &models.ListingDocument{})
}

func (r *ListingRepository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ListingDocument{}, "id = ?", id).Error
}
