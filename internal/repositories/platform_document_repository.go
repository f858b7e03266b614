package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type PlatformDocumentRepository struct {
	db *gorm.DB
}

func NewPlatformDocumentRepository(db *gorm.DB) *PlatformDocumentRepository {
	return &PlatformDocumentRepository{db: db}
}

func (r *PlatformDocumentRepository) Create(ctx context.Context, d *models.PlatformDocument) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *PlatformDocumentRepository) Save(ctx context.Context, d *models.PlatformDocument) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *PlatformDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PlatformDocument{}, "id = ?", id).Error
}

func (r *PlatformDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.PlatformDocument, error) {
	return findOne(r.db.WithContext(ctx).Where("id = ?", id), &models.PlatformDocument{})
}

// List returns every document when activeOnly is false, optionally of one type.
func (r *PlatformDocumentRepository) List(ctx context.Context, docType models.PlatformDocumentType, activeOnly bool) ([]models.PlatformDocument, error) {
	q := r.db.WithContext(ctx)
	if docType != "" {
		q = q.Where("document_type = ?", docType)
	}
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []models.PlatformDocument
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}
