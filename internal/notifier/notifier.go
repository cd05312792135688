// internal/notifier/notifier.go
package notifier

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"compliancehub/internal/messaging"
	"compliancehub/internal/model"
)

// Notifier dispatches user-facing notifications. Delivery itself (email,
// in-app) is owned by a separate service consuming the queue.
type Notifier interface {
	TrialExpiring(sub model.Subscription) error
}

// TrialExpiringPayload is the message published for a trial-expiry
// reminder.
type TrialExpiringPayload struct {
	Type           string    `json:"type"`
	TenantID       string    `json:"tenant_id"`
	SubscriptionID string    `json:"subscription_id"`
	TrialEndsAt    time.Time `json:"trial_ends_at"`
	SentAt         time.Time `json:"sent_at"`
}

// QueueNotifier publishes notification payloads to the durable
// notifications queue.
type QueueNotifier struct {
	rabbit *messaging.RabbitClient
}

func NewQueueNotifier(rabbit *messaging.RabbitClient) *QueueNotifier {
	return &QueueNotifier{rabbit: rabbit}
}

func (n *QueueNotifier) TrialExpiring(sub model.Subscription) error {
	if sub.TrialEndsAt == nil {
		return fmt.Errorf("subscription %s has no trial end date", sub.ID)
	}

	payload := TrialExpiringPayload{
		Type:           "trial_expiring",
		TenantID:       sub.TenantID.String(),
		SubscriptionID: sub.ID.String(),
		TrialEndsAt:    *sub.TrialEndsAt,
		SentAt:         time.Now(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	if err := n.rabbit.Publish(messaging.NotificationsQueue, body); err != nil {
		return err
	}
	log.Printf("[Notifier] Trial expiry reminder queued for subscription %s", sub.ID)
	return nil
}
