package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
)

type NotificationService struct {
	store *repositories.Store
	now   func() time.Time
}

func NewNotificationService(store *repositories.Store) *NotificationService {
	return &NotificationService{store: store, now: time.Now}
}

func (s *NotificationService) List(ctx context.Context, role models.Role, userID uuid.UUID, isRead *bool) ([]models.Notification, error) {
	return s.store.Notifications.List(ctx, role, userID, isRead)
}

func (s *NotificationService) UnreadCount(ctx context.Context, role models.Role, userID uuid.UUID) (int64, error) {
	return s.store.Notifications.UnreadCount(ctx, role, userID)
}

func (s *NotificationService) Get(ctx context.Context, role models.Role, userID, id uuid.UUID) (*models.Notification, error) {
	n, err := s.store.Notifications.Find(ctx, role, id, userID)
	if err != nil {
		return nil, fmt.Errorf("find notification: %w", err)
	}
	if n == nil {
		return nil, notFound("Notification not found")
	}
	return n, nil
}

// MarkRead is idempotent; read_at keeps the first read time.
func (s *NotificationService) MarkRead(ctx context.Context, role models.Role, userID, id uuid.UUID) (*models.Notification, error) {
	n, err := s.Get(ctx, role, userID, id)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	n.MarkRead(s.now())
	if err := s.store.Notifications.Save(ctx, role, n); err != nil {
		return nil, fmt.Errorf("save notification: %w", err)
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, role models.Role, userID uuid.UUID) (int64, error) {
	return s.store.Notifications.MarkAllRead(ctx, role, userID, s.now())
}

func (s *NotificationService) Delete(ctx context.Context, role models.Role, userID, id uuid.UUID) error {
	ok, err := s.store.Notifications.Delete(ctx, role, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if !ok {
		return notFound("Notification not found")
	}
	return nil
}
