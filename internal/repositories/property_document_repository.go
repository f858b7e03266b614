package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type PropertyDocumentRepository struct {
	db *gorm.DB
}

func NewPropertyDocumentRepository(db *gorm.DB) *PropertyDocumentRepository {
	return &PropertyDocumentRepository{db: db}
}

// Create inserts the document together with its files.
func (r *PropertyDocumentRepository) Create(ctx context.Context, doc *models.PropertyDocument) error {
	return r.db.WithContext(ctx).Omit("SellingRequest", "Seller").Create(doc).Error
}

func (r *PropertyDocumentRepository) Save(ctx context.Context, doc *models.PropertyDocument) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(doc).Error
}

func (r *PropertyDocumentRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Files").
		Preload("SellingRequest").
		Preload("SellingRequest.Seller").
		Preload("SellingRequest.Agent")
}

func (r *PropertyDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.PropertyDocument, error) {
	return findOne(r.withRelations(ctx).Where("id = ?", id), &models.PropertyDocument{})
}

func (r *PropertyDocumentRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, docType models.DocumentType) ([]models.PropertyDocument, error) {
	q := r.withRelations(ctx).Where("seller_id = ?", sellerID)
	if docType != "" {
		q = q.Where("document_type = ?", docType)
	}
	var out []models.PropertyDocument
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

// ListByAgent returns documents on requests assigned to the agent.
func (r *PropertyDocumentRepository) ListByAgent(ctx context.Context, agentID uuid.UUID, docType models.DocumentType) ([]models.PropertyDocument, error) {
	q := r.withRelations(ctx).
		Where("selling_request_id IN (?)",
			r.db.Model(&models.SellingRequest{}).Select("id").Where("agent_id = ?", agentID))
	if docType != "" {
		q = q.Where("document_type = ?", docType)
	}
	var out []models.PropertyDocument
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

type DocumentFilter struct {
	DocumentType  models.DocumentType
	WithAgreement bool
	Offset        int
	Limit         int
}

func (f DocumentFilter) scope(db *gorm.DB) *gorm.DB {
	if f.DocumentType != "" {
		db = db.Where("document_type = ?", f.DocumentType)
	}
	if f.WithAgreement {
		db = db.Where("selling_agreement_file <> ''")
	}
	return db
}

// List pages through every document, for the superadmin console.
func (r *PropertyDocumentRepository) List(ctx context.Context, f DocumentFilter) ([]models.PropertyDocument, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.PropertyDocument{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.PropertyDocument
	err := r.withRelations(ctx).
		Scopes(f.scope, paginate(f.Offset, f.Limit)).
		Order("created_at DESC").
		Find(&out).Error
	return out, total, err
}
