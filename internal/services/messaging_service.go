package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
)

type ChatEventType string

const (
	ChatMessage ChatEventType = "message"
	ChatTyping  ChatEventType = "typing"
	ChatRead    ChatEventType = "read"
)

// ChatEvent is one frame sent to everyone watching a conversation.
type ChatEvent struct {
	Type           ChatEventType   `json:"type"`
	ConversationID uuid.UUID       `json:"conversation_id"`
	SenderType     models.Role     `json:"sender_type"`
	SenderID       uuid.UUID       `json:"sender_id"`
	SenderName     string          `json:"sender_name,omitempty"`
	Content        string          `json:"content,omitempty"`
	Message        *models.Message `json:"message,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// ChatBroadcaster fans chat events out to a conversation's live connections.
type ChatBroadcaster interface {
	BroadcastChat(conversationID uuid.UUID, ev ChatEvent)
}

type ConversationInput struct {
	AgentID           *uuid.UUID              `json:"agent_id"`
	SellerID          *uuid.UUID              `json:"seller_id"`
	BuyerID           *uuid.UUID              `json:"buyer_id"`
	ConversationType  models.ConversationType `json:"conversation_type"`
	SellingRequestID  *uuid.UUID              `json:"selling_request_id"`
	ShowingScheduleID *uuid.UUID              `json:"showing_schedule_id"`
	PropertyListingID *uuid.UUID              `json:"property_listing_id"`
	Subject           string                  `json:"subject" binding:"max=255"`
}

type ConversationView struct {
	*models.Conversation
	UnreadCount int64 `json:"unread_count"`
}

type MessagingService struct {
	store       *repositories.Store
	broadcaster ChatBroadcaster
	log         zerolog.Logger
	now         func() time.Time
}

func NewMessagingService(store *repositories.Store, broadcaster ChatBroadcaster, log zerolog.Logger) *MessagingService {
	return &MessagingService{store: store, broadcaster: broadcaster, log: log, now: time.Now}
}

func (s *MessagingService) broadcast(id uuid.UUID, ev ChatEvent) {
	if s.broadcaster == nil {
		return
	}
	ev.ConversationID = id
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.now()
	}
	s.broadcaster.BroadcastChat(id, ev)
}

// counterpart resolves who the caller wants to talk to. Agents talk to a seller
// or a buyer, sellers and buyers talk to an agent.
func counterpart(role models.Role, in ConversationInput) (models.Role, uuid.UUID, error) {
	switch role {
	case models.RoleAgent:
		switch {
		case in.SellerID != nil && in.BuyerID != nil:
			return "", uuid.Nil, invalid("Provide either seller_id or buyer_id, not both")
		case in.SellerID != nil:
			return models.RoleSeller, *in.SellerID, nil
		case in.BuyerID != nil:
			return models.RoleBuyer, *in.BuyerID, nil
		}
		return "", uuid.Nil, invalid("seller_id or buyer_id is required")
	case models.RoleSeller, models.RoleBuyer:
		if in.AgentID == nil {
			return "", uuid.Nil, invalid("agent_id is required")
		}
		return models.RoleAgent, *in.AgentID, nil
	}
	return "", uuid.Nil, forbidden("Invalid user type")
}

// Open starts a conversation or returns the active one between the same pair
// and type. created reports which happened.
func (s *MessagingService) Open(ctx context.Context, role models.Role, userID uuid.UUID, in ConversationInput) (conv *models.Conversation, created bool, err error) {
	otherRole, otherID, err := counterpart(role, in)
	if err != nil {
		return nil, false, err
	}
	if in.ConversationType == "" {
		in.ConversationType = models.ConversationGeneral
	}
	if !in.ConversationType.Valid() {
		return nil, false, invalid("Invalid conversation type: %s", in.ConversationType)
	}
	other, err := s.store.Accounts.FindByID(ctx, otherRole, otherID)
	if err != nil {
		return nil, false, fmt.Errorf("find %s: %w", otherRole, err)
	}
	if other == nil {
		return nil, false, notFound("User not found")
	}

	agentID, party, partyID := userID, otherRole, otherID
	if role != models.RoleAgent {
		agentID, party, partyID = otherID, role, userID
	}
	existing, err := s.store.Conversations.FindActiveBetween(ctx, agentID, party, partyID, in.ConversationType)
	if err != nil {
		return nil, false, fmt.Errorf("find conversation: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	conv = &models.Conversation{
		AgentID:           agentID,
		ConversationType:  in.ConversationType,
		SellingRequestID:  in.SellingRequestID,
		ShowingScheduleID: in.ShowingScheduleID,
		PropertyListingID: in.PropertyListingID,
		Subject:           strings.TrimSpace(in.Subject),
		IsActive:          true,
	}
	if party == models.RoleSeller {
		conv.SellerID = &partyID
	} else {
		conv.BuyerID = &partyID
	}
	if err := s.store.Conversations.Create(ctx, conv); err != nil {
		return nil, false, fmt.Errorf("create conversation: %w", err)
	}
	conv, err = s.store.Conversations.FindByID(ctx, conv.ID)
	if err != nil {
		return nil, false, fmt.Errorf("reload conversation: %w", err)
	}
	return conv, true, nil
}

func (s *MessagingService) List(ctx context.Context, role models.Role, userID uuid.UUID) ([]ConversationView, error) {
	convs, err := s.store.Conversations.ListFor(ctx, role, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	out := make([]ConversationView, 0, len(convs))
	for i := range convs {
		unread, err := s.store.Conversations.UnreadIn(ctx, convs[i].ID, role)
		if err != nil {
			return nil, fmt.Errorf("count unread: %w", err)
		}
		out = append(out, ConversationView{Conversation: &convs[i], UnreadCount: unread})
	}
	return out, nil
}

// Get returns the conversation when the caller takes part in it. Others get 404.
func (s *MessagingService) Get(ctx context.Context, role models.Role, userID, id uuid.UUID) (*models.Conversation, error) {
	conv, err := s.store.Conversations.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find conversation: %w", err)
	}
	if conv == nil || !conv.HasParticipant(role, userID) {
		return nil, notFound("Conversation not found")
	}
	return conv, nil
}

func (s *MessagingService) Delete(ctx context.Context, role models.Role, userID, id uuid.UUID) error {
	if _, err := s.Get(ctx, role, userID, id); err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		return tx.Conversations.Delete(ctx, id)
	})
}

func (s *MessagingService) Messages(ctx context.Context, role models.Role, userID, id uuid.UUID) ([]models.Message, error) {
	if _, err := s.Get(ctx, role, userID, id); err != nil {
		return nil, err
	}
	return s.store.Conversations.Messages(ctx, id)
}

// Send stores a message, bumps last_message_at and broadcasts it to the room.
func (s *MessagingService) Send(ctx context.Context, role models.Role, userID, id uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("Content cannot be empty")
	}
	conv, err := s.Get(ctx, role, userID, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	msg := &models.Message{
		ConversationID: id,
		SenderType:     role,
		SenderID:       userID,
		Content:        content,
	}
	conv.LastMessageAt = &now
	conv.IsActive = true
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Conversations.AddMessage(ctx, msg); err != nil {
			return fmt.Errorf("add message: %w", err)
		}
		return tx.Conversations.Save(ctx, conv)
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(id, ChatEvent{
		Type:       ChatMessage,
		SenderType: role,
		SenderID:   userID,
		SenderName: senderName(conv, role),
		Content:    content,
		Message:    msg,
		Timestamp:  msg.CreatedAt,
	})
	return msg, nil
}

func senderName(c *models.Conversation, role models.Role) string {
	switch role {
	case models.RoleAgent:
		return displayName(accountOf(c.Agent), "Unknown")
	case models.RoleSeller:
		if c.Seller != nil {
			return c.Seller.FullName()
		}
	case models.RoleBuyer:
		return displayName(buyerAccount(c.Buyer), "Unknown")
	}
	return "Unknown"
}

// Typing relays a typing indicator without storing anything.
func (s *MessagingService) Typing(ctx context.Context, role models.Role, userID, id uuid.UUID) error {
	conv, err := s.Get(ctx, role, userID, id)
	if err != nil {
		return err
	}
	s.broadcast(id, ChatEvent{Type: ChatTyping, SenderType: role, SenderID: userID, SenderName: senderName(conv, role)})
	return nil
}

// MarkRead flags the other party's messages read and returns how many changed.
func (s *MessagingService) MarkRead(ctx context.Context, role models.Role, userID, id uuid.UUID) (int64, error) {
	if _, err := s.Get(ctx, role, userID, id); err != nil {
		return 0, err
	}
	n, err := s.store.Conversations.MarkRead(ctx, id, role, s.now())
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	if n > 0 {
		s.broadcast(id, ChatEvent{Type: ChatRead, SenderType: role, SenderID: userID})
	}
	return n, nil
}

func (s *MessagingService) UnreadCount(ctx context.Context, role models.Role, userID uuid.UUID) (int64, error) {
	return s.store.Conversations.UnreadCount(ctx, role, userID)
}

// Clear deletes the messages and closes the conversation until someone writes again.
func (s *MessagingService) Clear(ctx context.Context, role models.Role, userID, id uuid.UUID) (int64, error) {
	conv, err := s.Get(ctx, role, userID, id)
	if err != nil {
		return 0, err
	}
	var deleted int64
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		var err error
		if deleted, err = tx.Conversations.Clear(ctx, id); err != nil {
			return fmt.Errorf("clear messages: %w", err)
		}
		conv.IsActive = false
		conv.LastMessageAt = nil
		return tx.Conversations.Save(ctx, conv)
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
