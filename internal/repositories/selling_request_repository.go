package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type SellingRequestRepository struct {
	db *gorm.DB
}

func NewSellingRequestRepository(db *gorm.DB) *SellingRequestRepository {
	return &SellingRequestRepository{db: db}
}

func (r *SellingRequestRepository) Create(ctx context.Context, req *models.SellingRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

func (r *SellingRequestRepository) Save(ctx context.Context, req *models.SellingRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(req).Error
}

func (r *SellingRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.SellingRequest{}, "id = ?", id).Error
}

func (r *SellingRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.SellingRequest, error) {
	q := r.db.WithContext(ctx).Preload("Seller").Preload("Agent").Where("id = ?", id)
	return findOne(q, &models.SellingRequest{})
}

func (r *SellingRequestRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.SellingRequest, error) {
	var out []models.SellingRequest
	err := r.db.WithContext(ctx).
		Preload("Agent").
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *SellingRequestRepository) ListByAgent(ctx context.Context, agentID uuid.UUID, status models.SellingRequestStatus) ([]models.SellingRequest, error) {
	q := r.db.WithContext(ctx).Preload("Seller").Where("agent_id = ?", agentID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.SellingRequest
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

// CountByStatus groups the agent's assigned requests by status.
func (r *SellingRequestRepository) CountByStatus(ctx context.Context, agentID uuid.UUID) (map[models.SellingRequestStatus]int64, error) {
	var rows []struct {
		Status models.SellingRequestStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.SellingRequest{}).
		Select("status, COUNT(*) AS count").
		Where("agent_id = ?", agentID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[models.SellingRequestStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}
