package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type ShowingRepository struct {
	db *gorm.DB
}

func NewShowingRepository(db *gorm.DB) *ShowingRepository {
	return &ShowingRepository{db: db}
}

func (r *ShowingRepository) Create(ctx context.Context, s *models.ShowingSchedule) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error
}

func (r *ShowingRepository) Save(ctx context.Context, s *models.ShowingSchedule) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(s).Error
}

func (r *ShowingRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("PropertyListing").
		Preload("PropertyListing.Agent").
		Preload("Agreement")
}

func (r *ShowingRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.ShowingSchedule, error) {
	return findOne(r.withRelations(ctx).Where("id = ?", id), &models.ShowingSchedule{})
}

func (r *ShowingRepository) agentListings(agentID uuid.UUID) *gorm.DB {
	return r.db.Model(&models.PropertyListing{}).Select("id").Where("agent_id = ?", agentID)
}

// FindForAgent only finds showings on listings the agent owns.
func (r *ShowingRepository) FindForAgent(ctx context.Context, id, agentID uuid.UUID) (*models.ShowingSchedule, error) {
	q := r.withRelations(ctx).
		Where("id = ?", id).
		Where("property_listing_id IN (?)", r.agentListings(agentID))
	return findOne(q, &models.ShowingSchedule{})
}

func (r *ShowingRepository) FindForBuyer(ctx context.Context, id, buyerID uuid.UUID) (*models.ShowingSchedule, error) {
	q := r.withRelations(ctx).Where("id = ? AND buyer_id = ?", id, buyerID)
	return findOne(q, &models.ShowingSchedule{})
}

func (r *ShowingRepository) ListByBuyer(ctx context.Context, buyerID uuid.UUID, status models.ShowingStatus) ([]models.ShowingSchedule, error) {
	q := r.withRelations(ctx).Where("buyer_id = ?", buyerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.ShowingSchedule
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *ShowingRepository) ListByAgent(ctx context.Context, agentID uuid.UUID, status models.ShowingStatus) ([]models.ShowingSchedule, error) {
	q := r.withRelations(ctx).Where("property_listing_id IN (?)", r.agentListings(agentID))
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.ShowingSchedule
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *ShowingRepository) CreateAgreement(ctx context.Context, a *models.ShowingAgreement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ShowingRepository) FindAgreement(ctx context.Context, scheduleID uuid.UUID) (*models.ShowingAgreement, error) {
	return findOne(r.db.WithContext(ctx).Where("showing_schedule_id = ?", scheduleID), &models.ShowingAgreement{})
}

func (r *ShowingRepository) ListAgreementsByAgent(ctx context.Context, agentID uuid.UUID) ([]models.ShowingAgreement, error) {
	var out []models.ShowingAgreement
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("signed_at DESC").
		Find(&out).Error
	return out, err
}

func (r *ShowingRepository) ListAgreements(ctx context.Context, offset, limit int) ([]models.ShowingAgreement, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ShowingAgreement{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.ShowingAgreement
	err := r.db.WithContext(ctx).
		Scopes(paginate(offset, limit)).
		Order("signed_at DESC").
		Find(&out).Error
	return out, total, err
}
