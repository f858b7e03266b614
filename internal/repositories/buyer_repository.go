package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type SavedListingRepository struct {
	db *gorm.DB
}

func NewSavedListingRepository(db *gorm.DB) *SavedListingRepository {
	return &SavedListingRepository{db: db}
}

func (r *SavedListingRepository) Create(ctx context.Context, s *models.SavedListing) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error
}

func (r *SavedListingRepository) Exists(ctx context.Context, buyerID, listingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SavedListing{}).
		Where("buyer_id = ? AND listing_id = ?", buyerID, listingID).
		Count(&count).Error
	return count > 0, err
}

func (r *SavedListingRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.SavedListing, error) {
	var out []models.SavedListing
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Listing.Photos").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *SavedListingRepository) Delete(ctx context.Context, id, buyerID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND buyer_id = ?", id, buyerID).Delete(&models.SavedListing{})
	return res.RowsAffected > 0, res.Error
}

type BuyerDocumentRepository struct {
	db *gorm.DB
}

func NewBuyerDocumentRepository(db *gorm.DB) *BuyerDocumentRepository {
	return &BuyerDocumentRepository{db: db}
}

func (r *BuyerDocumentRepository) Create(ctx context.Context, d *models.BuyerDocument) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(d).Error
}

func (r *BuyerDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.BuyerDocument, error) {
	return findOne(r.db.WithContext(ctx).Preload("Buyer").Where("id = ?", id), &models.BuyerDocument{})
}

func (r *BuyerDocumentRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.BuyerDocument, error) {
	var out []models.BuyerDocument
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *BuyerDocumentRepository) List(ctx context.Context, offset, limit int) ([]models.BuyerDocument, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.BuyerDocument{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.BuyerDocument
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Scopes(paginate(offset, limit)).
		Order("created_at DESC").
		Find(&out).Error
	return out, total, err
}

func (r *BuyerDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.BuyerDocument{}, "id = ?", id).Error
}
