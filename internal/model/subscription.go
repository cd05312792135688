// internal/model/subscription.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionTrial     SubscriptionStatus = "TRIAL"
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
)

type BillingInterval string

const (
	IntervalMonthly BillingInterval = "MONTHLY"
	IntervalYearly  BillingInterval = "YEARLY"
)

type Subscription struct {
	ID              uuid.UUID          `db:"id"`
	TenantID        uuid.UUID          `db:"tenant_id"`
	Status          SubscriptionStatus `db:"status"`
	BillingInterval BillingInterval    `db:"billing_interval"`
	Price           float64            `db:"price"`
	TrialEndsAt     *time.Time         `db:"trial_ends_at"`
	LastReminderAt  *time.Time         `db:"last_reminder_at"`
	CreatedAt       time.Time          `db:"created_at"`
}
