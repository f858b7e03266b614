package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nahid2887/padzzey-sub000/internal/models"
	"github.com/nahid2887/padzzey-sub000/internal/repositories"
)

// NotificationPusher delivers a stored notification to the recipient's live connections.
type NotificationPusher interface {
	PushNotification(role models.Role, recipientID uuid.UUID, n *models.Notification)
}

type delivery struct {
	role models.Role
	n    *models.Notification
}

// Outbox collects the notifications written inside a transaction so they can be
// pushed once it commits.
type Outbox struct {
	pending []delivery
}

// Add stores n in the role's table through tx and queues it for delivery.
func (o *Outbox) Add(ctx context.Context, tx *repositories.Store, role models.Role, n *models.Notification) error {
	if err := tx.Notifications.Create(ctx, role, n); err != nil {
		return fmt.Errorf("create %s notification: %w", role, err)
	}
	o.pending = append(o.pending, delivery{role: role, n: n})
	return nil
}

func (o *Outbox) Len() int { return len(o.pending) }

// Notifier pushes committed notifications to websocket subscribers.
type Notifier struct {
	pusher NotificationPusher
	log    zerolog.Logger
}

func NewNotifier(pusher NotificationPusher, log zerolog.Logger) *Notifier {
	return &Notifier{pusher: pusher, log: log}
}

// Flush pushes every queued notification. Call it after the transaction commits.
func (n *Notifier) Flush(o *Outbox) {
	for _, d := range o.pending {
		n.log.Debug().
			Str("role", string(d.role)).
			Str("recipient_id", d.n.RecipientID.String()).
			Str("type", string(d.n.NotificationType)).
			Msg("notification created")
		if n.pusher != nil {
			n.pusher.PushNotification(d.role, d.n.RecipientID, d.n)
		}
	}
	o.pending = nil
}
