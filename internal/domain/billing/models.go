package billing

import (
	"time"

	"study-platform/internal/domain/plans"
	"study-platform/internal/domain/users"

	"github.com/shopspring/decimal"
)

// UserSubscription is one ledger row: the last known state of a provider subscription.
type UserSubscription struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"not null;index" json:"user_id"`
	User                 users.User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PlanID               uint       `gorm:"not null;index" json:"plan_id"`
	Plan                 plans.Plan `json:"plan"`
	StripeSubscriptionID string     `gorm:"column:stripe_subscription_id;type:varchar(100);not null;uniqueIndex:idx_user_subscriptions_stripe_sub" json:"stripe_subscription_id"`
	StripeCustomerID     string     `gorm:"column:stripe_customer_id;type:varchar(100)" json:"-"`
	StartDate            time.Time  `gorm:"not null" json:"start_date"`
	EndDate              time.Time  `gorm:"not null;index" json:"end_date"`
	IsActive             bool       `gorm:"not null;index" json:"is_active"`
	CancelAtPeriodEnd    bool       `gorm:"not null;default:false" json:"cancel_at_period_end"`
	// LastEventAt is the provider creation time of the newest event applied to the row.
	LastEventAt *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsCurrent reports whether the row grants entitlement at now.
func (s UserSubscription) IsCurrent(now time.Time) bool {
	return s.IsActive && s.EndDate.After(now)
}

const (
	EventStatusReceived  = "received"
	EventStatusProcessed = "processed"
	EventStatusFailed    = "failed"
)

// WebhookEvent records every verified provider event for redelivery dedup.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_webhook_events_provider_event" json:"provider_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	Status          string     `gorm:"type:varchar(20);not null;default:'received'" json:"status"`
	Outcome         string     `gorm:"type:varchar(20)" json:"outcome"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Payment is a paid invoice for a subscription.
type Payment struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	UserID               uint            `gorm:"not null;index" json:"user_id"`
	User                 users.User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PlanID               *uint           `json:"plan_id,omitempty"`
	Plan                 *plans.Plan     `json:"plan,omitempty"`
	InvoiceID            string          `gorm:"type:varchar(100);not null;uniqueIndex" json:"invoice_id"`
	StripeSubscriptionID string          `gorm:"type:varchar(100);index" json:"stripe_subscription_id"`
	Amount               decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency             string          `gorm:"type:varchar(10)" json:"currency"`
	Status               string          `gorm:"type:varchar(20)" json:"status"`
	ReceiptURL           *string         `json:"receipt_url,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}
