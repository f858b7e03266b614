package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

// NotificationRepository addresses the per-role notification tables.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) table(ctx context.Context, role models.Role) *gorm.DB {
	return r.db.WithContext(ctx).Table(models.NotificationTable(role))
}

func (r *NotificationRepository) Create(ctx context.Context, role models.Role, n *models.Notification) error {
	return r.table(ctx, role).Create(n).Error
}

func (r *NotificationRepository) Save(ctx context.Context, role models.Role, n *models.Notification) error {
	return r.table(ctx, role).Save(n).Error
}

func (r *NotificationRepository) List(ctx context.Context, role models.Role, recipientID uuid.UUID, isRead *bool) ([]models.Notification, error) {
	q := r.table(ctx, role).Where("recipient_id = ?", recipientID)
	if isRead != nil {
		q = q.Where("is_read = ?", *isRead)
	}
	var out []models.Notification
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *NotificationRepository) Find(ctx context.Context, role models.Role, id, recipientID uuid.UUID) (*models.Notification, error) {
	q := r.table(ctx, role).Where("id = ? AND recipient_id = ?", id, recipientID)
	return findOne(q, &models.Notification{})
}

func (r *NotificationRepository) Delete(ctx context.Context, role models.Role, id, recipientID uuid.UUID) (bool, error) {
	res := r.table(ctx, role).Where("id = ? AND recipient_id = ?", id, recipientID).Delete(&models.Notification{})
	return res.RowsAffected > 0, res.Error
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, role models.Role, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.table(ctx, role).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkAllRead flags every unread notification of the recipient and returns how many changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, role models.Role, recipientID uuid.UUID, now time.Time) (int64, error) {
	res := r.table(ctx, role).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	return res.RowsAffected, res.Error
}

// ExistsForRequest reports whether the recipient already has a notification of
// this type about the selling request.
func (r *NotificationRepository) ExistsForRequest(ctx context.Context, role models.Role, recipientID, requestID uuid.UUID, kind models.NotificationType) (bool, error) {
	var count int64
	err := r.table(ctx, role).
		Where("recipient_id = ? AND selling_request_id = ? AND notification_type = ?", recipientID, requestID, kind).
		Count(&count).Error
	return count > 0, err
}

// FindForShowing returns the latest notification of this type about the showing.
func (r *NotificationRepository) FindForShowing(ctx context.Context, role models.Role, recipientID, showingID uuid.UUID, kind models.NotificationType) (*models.Notification, error) {
	q := r.table(ctx, role).
		Where("recipient_id = ? AND showing_schedule_id = ? AND notification_type = ?", recipientID, showingID, kind).
		Order("created_at DESC")
	return findOne(q, &models.Notification{})
}

// DeleteFor removes every notification of a deleted account.
func (r *NotificationRepository) DeleteFor(ctx context.Context, role models.Role, recipientID uuid.UUID) error {
	return r.table(ctx, role).Where("recipient_id = ?", recipientID).Delete(&models.Notification{}).Error
}
