package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type LegalDocumentRepository struct {
	db *gorm.DB
}

func NewLegalDocumentRepository(db *gorm.DB) *LegalDocumentRepository {
	return &LegalDocumentRepository{db: db}
}

func (r *LegalDocumentRepository) Create(ctx context.Context, d *models.LegalDocument) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *LegalDocumentRepository) Save(ctx context.Context, d *models.LegalDocument) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *LegalDocumentRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.LegalDocument{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *LegalDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.LegalDocument, error) {
	return findOne(r.db.WithContext(ctx).Where("id = ?", id), &models.LegalDocument{})
}

// DeactivateOthers clears the active flag on every document sharing the
// audience and type, except keep.
func (r *LegalDocumentRepository) DeactivateOthers(ctx context.Context, audience models.Role, docType models.LegalDocumentType, keep uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.LegalDocument{}).
		Where("audience = ? AND document_type = ? AND id <> ?", audience, docType, keep).
		Update("is_active", false).Error
}

// FindActive returns the active document with the latest effective date.
func (r *LegalDocumentRepository) FindActive(ctx context.Context, audience models.Role, docType models.LegalDocumentType) (*models.LegalDocument, error) {
	q := r.db.WithContext(ctx).
		Where("audience = ? AND document_type = ? AND is_active = ?", audience, docType, true).
		Order("effective_date DESC, created_at DESC")
	return findOne(q, &models.LegalDocument{})
}

func (r *LegalDocumentRepository) ListActive(ctx context.Context, audience models.Role) ([]models.LegalDocument, error) {
	var out []models.LegalDocument
	err := r.db.WithContext(ctx).
		Where("audience = ? AND is_active = ?", audience, true).
		Order("document_type ASC, effective_date DESC").
		Find(&out).Error
	return out, err
}

type LegalDocumentFilter struct {
	Audience     models.Role
	DocumentType models.LegalDocumentType
}

func (r *LegalDocumentRepository) List(ctx context.Context, f LegalDocumentFilter) ([]models.LegalDocument, error) {
	q := r.db.WithContext(ctx)
	if f.Audience != "" {
		q = q.Where("audience = ?", f.Audience)
	}
	if f.DocumentType != "" {
		q = q.Where("document_type = ?", f.DocumentType)
	}
	var out []models.LegalDocument
	err := q.Order("effective_date DESC, created_at DESC").Find(&out).Error
	return out, err
}
