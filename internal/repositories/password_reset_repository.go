package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type PasswordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Create(ctx context.Context, t *models.PasswordResetToken) error {
	t.Email = strings.ToLower(strings.TrimSpace(t.Email))
	return r.db.WithContext(ctx).Create(t).Error
}

// InvalidateOutstanding burns every unused code issued for the email and role.
func (r *PasswordResetRepository) InvalidateOutstanding(ctx context.Context, email string, role models.Role) error {
	return r.db.WithContext(ctx).
		Model(&models.PasswordResetToken{}).
		Where("email = ? AND user_type = ? AND is_used = ?", strings.ToLower(strings.TrimSpace(email)), role, false).
		Update("is_used", true).Error
}

// FindUsable returns the newest unused, unexpired token matching the code.
func (r *PasswordResetRepository) FindUsable(ctx context.Context, email string, role models.Role, otp string, now time.Time) (*models.PasswordResetToken, error) {
	q := r.db.WithContext(ctx).
		Where("email = ? AND user_type = ? AND otp = ?", strings.ToLower(strings.TrimSpace(email)), role, otp).
		Where("is_used = ? AND expires_at > ?", false, now).
		Order("created_at DESC")
	return findOne(q, &models.PasswordResetToken{})
}

// MarkUsed redeems the code. It reports false when another request already did.
func (r *PasswordResetRepository) MarkUsed(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PasswordResetToken{}).
		Where("id = ? AND is_used = ?", id, false).
		Update("is_used", true)
	return res.RowsAffected == 1, res.Error
}
