package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type PreferencesRepository struct {
	db *gorm.DB
}

func NewPreferencesRepository(db *gorm.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Privacy returns the user's privacy row, creating it with defaults on first access.
func (r *PreferencesRepository) Privacy(ctx context.Context, role models.Role, userID uuid.UUID) (*models.PrivacySettings, error) {
	var out models.PrivacySettings
	err := r.db.WithContext(ctx).
		Where(&models.PrivacySettings{OwnerRole: role, OwnerID: userID}).
		Attrs(models.DefaultPrivacySettings(role, userID)).
		FirstOrCreate(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PreferencesRepository) SavePrivacy(ctx context.Context, p *models.PrivacySettings) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// Terms returns the user's terms row, creating it with defaults on first access.
func (r *PreferencesRepository) Terms(ctx context.Context, role models.Role, userID uuid.UUID) (*models.TermsAcceptance, error) {
	var out models.TermsAcceptance
	err := r.db.WithContext(ctx).
		Where(&models.TermsAcceptance{OwnerRole: role, OwnerID: userID}).
		Attrs(models.DefaultTermsAcceptance(role, userID)).
		FirstOrCreate(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PreferencesRepository) SaveTerms(ctx context.Context, t *models.TermsAcceptance) error {
	return r.db.WithContext(ctx).Save(t).Error
}

// DeleteFor removes the preference rows of a deleted account.
func (r *PreferencesRepository) DeleteFor(ctx context.Context, role models.Role, userID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("owner_role = ? AND owner_id = ?", role, userID).Delete(&models.PrivacySettings{}).Error; err != nil {
		return err
	}
	return db.Where("owner_role = ? AND owner_id = ?", role, userID).Delete(&models.TermsAcceptance{}).Error
}
