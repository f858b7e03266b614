package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nahid2887/padzzey-sub000/internal/models"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// participantColumn names the conversations column holding the role's user id.
func participantColumn(role models.Role) string {
	switch role {
	case models.RoleAgent:
		return "agent_id"
	case models.RoleSeller:
		return "seller_id"
	case models.RoleBuyer:
		return "buyer_id"
	}
	return ""
}

func (r *ConversationRepository) Create(ctx context.Context, c *models.Conversation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *ConversationRepository) Save(ctx context.Context, c *models.Conversation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

func (r *ConversationRepository) withParticipants(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Agent").Preload("Seller").Preload("Buyer")
}

func (r *ConversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	return findOne(r.withParticipants(ctx).Where("id = ?", id), &models.Conversation{})
}

// FindActiveBetween finds an open thread of the given type between the agent
// and the counterpart.
func (r *ConversationRepository) FindActiveBetween(ctx context.Context, agentID uuid.UUID, counterpart models.Role, counterpartID uuid.UUID, kind models.ConversationType) (*models.Conversation, error) {
	col := participantColumn(counterpart)
	if col == "" {
		return nil, ErrUnknownRole
	}
	q := r.withParticipants(ctx).
		Where("agent_id = ? AND "+col+" = ?", agentID, counterpartID).
		Where("conversation_type = ? AND is_active = ?", kind, true)
	return findOne(q, &models.Conversation{})
}

func (r *ConversationRepository) ListFor(ctx context.Context, role models.Role, userID uuid.UUID) ([]models.Conversation, error) {
	col := participantColumn(role)
	if col == "" {
		return nil, ErrUnknownRole
	}
	var out []models.Conversation
	err := r.withParticipants(ctx).
		Where(col+" = ? AND is_active = ?", userID, true).
		Order("last_message_at DESC NULLS LAST, created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *ConversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("conversation_id = ?", id).Delete(&models.Message{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Conversation{}, "id = ?", id).Error
}

func (r *ConversationRepository) AddMessage(ctx context.Context, m *models.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *ConversationRepository) Messages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	var out []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// MarkRead flags the messages the reader did not send as read.
func (r *ConversationRepository) MarkRead(ctx context.Context, conversationID uuid.UUID, reader models.Role, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND sender_type <> ? AND is_read = ?", conversationID, reader, false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	return res.RowsAffected, res.Error
}

// UnreadCount counts unread messages sent to the user across their conversations.
func (r *ConversationRepository) UnreadCount(ctx context.Context, role models.Role, userID uuid.UUID) (int64, error) {
	col := participantColumn(role)
	if col == "" {
		return 0, ErrUnknownRole
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id IN (?)", r.db.Model(&models.Conversation{}).Select("id").Where(col+" = ?", userID)).
		Where("sender_type <> ? AND is_read = ?", role, false).
		Count(&count).Error
	return count, err
}

func (r *ConversationRepository) UnreadIn(ctx context.Context, conversationID uuid.UUID, reader models.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND sender_type <> ? AND is_read = ?", conversationID, reader, false).
		Count(&count).Error
	return count, err
}

// Clear deletes every message in the conversation.
func (r *ConversationRepository) Clear(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID).Delete(&models.Message{})
	return res.RowsAffected, res.Error
}
