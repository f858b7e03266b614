package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
	"github.com/nahid2887/padzzey-sub000/internal/testutil"
)

func notify(t *testing.T, store *repositories.Store, role models.Role, id uuid.UUID, title string) *models.Notification {
	t.Helper()
	n := &models.Notification{RecipientID: id, NotificationType: models.NotifyGeneral, Title: title}
	require.NoError(t, store.Notifications.Create(context.Background(), role, n))
	return n
}

func TestNotifications(t *testing.T) {
	store := testutil.NewStore(t)
	svc := NewNotificationService(store)
	ctx := context.Background()

	seller := testutil.Seller(t, store, "sam")
	first := notify(t, store, models.RoleSeller, seller.ID, "one")
	notify(t, store, models.RoleSeller, seller.ID, "two")
	notify(t, store, models.RoleSeller, seller.ID, "three")
	// Same id in another role's table is a different inbox.
	foreign := notify(t, store, models.RoleBuyer, seller.ID, "elsewhere")

	count, err := svc.UnreadCount(ctx, models.RoleSeller, seller.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	_, err = svc.Get(ctx, models.RoleSeller, seller.ID, foreign.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	readAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return readAt }
	n, err := svc.MarkRead(ctx, models.RoleSeller, seller.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, n.IsRead)
	require.NotNil(t, n.ReadAt)

	// A second read keeps the original timestamp.
	svc.now = func() time.Time { return readAt.Add(time.Hour) }
	n, err = svc.MarkRead(ctx, models.RoleSeller, seller.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, readAt.Equal(*n.ReadAt))

	unread := false
	list, err := svc.List(ctx, models.RoleSeller, seller.ID, &unread)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	changed, err := svc.MarkAllRead(ctx, models.RoleSeller, seller.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, changed)

	count, err = svc.UnreadCount(ctx, models.RoleBuyer, seller.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, svc.Delete(ctx, models.RoleSeller, seller.ID, first.ID))
	assert.ErrorIs(t, svc.Delete(ctx, models.RoleSeller, seller.ID, first.ID), ErrNotFound)

	list, err = svc.List(ctx, models.RoleSeller, seller.ID, nil)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestNotifierFlushesAfterCommit(t *testing.T) {
	store := testutil.NewStore(t)
	pusher := &testutil.RecordingPusher{}
	notifier := NewNotifier(pusher, zerolog.Nop())
	ctx := context.Background()
	agent := testutil.Agent(t, store, "alice")

	var out Outbox
	err := store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := out.Add(ctx, tx, models.RoleAgent, &models.Notification{
			RecipientID: agent.ID, NotificationType: models.NotifyGeneral, Title: "queued",
		}); err != nil {
			return err
		}
		assert.Empty(t, pusher.Pushes())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())

	notifier.Flush(&out)
	assert.Zero(t, out.Len())
	notes := pusher.For(models.RoleAgent, agent.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, "queued", notes[0].Title)
}
