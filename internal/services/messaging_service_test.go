package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/testutil"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []ChatEvent
}

func (r *recordingBroadcaster) BroadcastChat(_ uuid.UUID, ev ChatEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingBroadcaster) types() []ChatEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ChatEventType
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func TestConversationFlow(t *testing.T) {
	store := testutil.NewStore(t)
	rec := &recordingBroadcaster{}
	svc := NewMessagingService(store, rec, zerolog.Nop())
	ctx := context.Background()

	agent := testutil.Agent(t, store, "alice")
	seller := testutil.Seller(t, store, "sam")
	buyer := testutil.Buyer(t, store, "bob")

	conv, created, err := svc.Open(ctx, models.RoleSeller, seller.ID, ConversationInput{AgentID: &agent.ID, Subject: " Pricing "})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.ConversationGeneral, conv.ConversationType)
	assert.Equal(t, "Pricing", conv.Subject)
	require.NotNil(t, conv.SellerID)

	// The agent opening the same pair finds the existing thread.
	again, created, err := svc.Open(ctx, models.RoleAgent, agent.ID, ConversationInput{SellerID: &seller.ID})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, conv.ID, again.ID)

	_, err = svc.Get(ctx, models.RoleBuyer, buyer.ID, conv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Send(ctx, models.RoleBuyer, buyer.ID, conv.ID, "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Send(ctx, models.RoleSeller, seller.ID, conv.ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	msg, err := svc.Send(ctx, models.RoleSeller, seller.ID, conv.ID, "Hello there")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSeller, msg.SenderType)
	_, err = svc.Send(ctx, models.RoleSeller, seller.ID, conv.ID, "Any update?")
	require.NoError(t, err)

	unread, err := svc.UnreadCount(ctx, models.RoleAgent, agent.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	list, err := svc.List(ctx, models.RoleAgent, agent.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 2, list[0].UnreadCount)
	require.NotNil(t, list[0].LastMessageAt)

	// Senders never count their own messages as unread.
	n, err := svc.MarkRead(ctx, models.RoleSeller, seller.ID, conv.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.MarkRead(ctx, models.RoleAgent, agent.ID, conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, svc.Typing(ctx, models.RoleAgent, agent.ID, conv.ID))
	assert.Equal(t, []ChatEventType{ChatMessage, ChatMessage, ChatRead, ChatTyping}, rec.types())

	rec.mu.Lock()
	first := rec.events[0]
	rec.mu.Unlock()
	assert.Equal(t, conv.ID, first.ConversationID)
	assert.Equal(t, "Test sam", first.SenderName)

	msgs, err := svc.Messages(ctx, models.RoleAgent, agent.ID, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hello there", msgs[0].Content)
	assert.True(t, msgs[0].IsRead)

	deleted, err := svc.Clear(ctx, models.RoleAgent, agent.ID, conv.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	list, err = svc.List(ctx, models.RoleSeller, seller.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	// A cleared thread is closed, so opening again starts a new one.
	fresh, created, err := svc.Open(ctx, models.RoleSeller, seller.ID, ConversationInput{AgentID: &agent.ID})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, conv.ID, fresh.ID)

	require.NoError(t, svc.Delete(ctx, models.RoleSeller, seller.ID, fresh.ID))
	_, err = svc.Get(ctx, models.RoleSeller, seller.ID, fresh.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenConversationCounterpart(t *testing.T) {
	store := testutil.NewStore(t)
	svc := NewMessagingService(store, nil, zerolog.Nop())
	ctx := context.Background()

	agent := testutil.Agent(t, store, "alice")
	seller := testutil.Seller(t, store, "sam")
	buyer := testutil.Buyer(t, store, "bob")

	_, _, err := svc.Open(ctx, models.RoleAgent, agent.ID, ConversationInput{})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Open(ctx, models.RoleAgent, agent.ID, ConversationInput{SellerID: &seller.ID, BuyerID: &buyer.ID})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Open(ctx, models.RoleBuyer, buyer.ID, ConversationInput{})
	assert.ErrorIs(t, err, ErrValidation)

	missing := uuid.New()
	_, _, err = svc.Open(ctx, models.RoleBuyer, buyer.ID, ConversationInput{AgentID: &missing})
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.Open(ctx, models.RoleBuyer, buyer.ID, ConversationInput{AgentID: &agent.ID, ConversationType: "gossip"})
	assert.ErrorIs(t, err, ErrValidation)

	conv, created, err := svc.Open(ctx, models.RoleAgent, agent.ID, ConversationInput{
		BuyerID:          &buyer.ID,
		ConversationType: models.ConversationShowingInquiry,
	})
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, conv.BuyerID)
	assert.Nil(t, conv.SellerID)

	// A different type between the same pair is a separate thread.
	other, created, err := svc.Open(ctx, models.RoleBuyer, buyer.ID, ConversationInput{AgentID: &agent.ID})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, conv.ID, other.ID)

	_, _, err = svc.Open(ctx, models.RoleSuperadmin, uuid.New(), ConversationInput{AgentID: &agent.ID})
	assert.ErrorIs(t, err, ErrForbidden)
}
