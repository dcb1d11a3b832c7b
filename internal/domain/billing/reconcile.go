package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"study-platform/internal/domain/plans"
	"study-platform/internal/domain/users"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Outcome describes what a provider event did to the ledger.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	// OutcomeIgnored: the event references a user, plan or subscription not known locally.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeStale: a newer event was already applied to the row.
	OutcomeStale Outcome = "stale"
)

// SubscriptionSnapshot is the provider's view of a subscription at event time.
type SubscriptionSnapshot struct {
	ID                string
	CustomerID        string
	PriceID           string
	Status            string
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
}

// Entitled reports whether the provider status grants access.
func (s SubscriptionSnapshot) Entitled() bool {
	return s.Status == "active" || s.Status == "trialing"
}

// SubscriptionSource fetches live subscription state from the billing provider.
type SubscriptionSource interface {
	Subscription(ctx context.Context, id string) (SubscriptionSnapshot, error)
}

type CheckoutCompleted struct {
	EventAt        time.Time
	CustomerID     string
	SubscriptionID string
}

type InvoiceEvent struct {
	EventAt        time.Time
	InvoiceID      string
	SubscriptionID string
	CustomerID     string
	AmountPaid     int64 // minor units
	Currency       string
	ReceiptURL     string
}

// Reconciler maps provider events onto ledger rows keyed by subscription id.
type Reconciler struct {
	db     *gorm.DB
	source SubscriptionSource
	now    func() time.Time
}

func NewReconciler(db *gorm.DB, source SubscriptionSource) *Reconciler {
	return &Reconciler{db: db, source: source, now: time.Now}
}

func (r *Reconciler) CheckoutCompleted(ctx context.Context, ev CheckoutCompleted) (Outcome, error) {
	if ev.SubscriptionID == "" {
		return OutcomeIgnored, nil
	}

	user, err := users.FindByCustomerRef(r.db, ev.CustomerID)
	if errors.Is(err, users.ErrNotFound) {
		log.Printf("[billing] checkout for unknown customer=%s sub=%s", ev.CustomerID, ev.SubscriptionID)
		return OutcomeIgnored, nil
	}
	if err != nil {
		return "", err
	}

	snap, err := r.source.Subscription(ctx, ev.SubscriptionID)
	if err != nil {
		return "", fmt.Errorf("fetch subscription %s: %w", ev.SubscriptionID, err)
	}

	var plan plans.Plan
	err = r.db.Where("stripe_price_id = ?", snap.PriceID).First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[billing] checkout for unknown price=%s sub=%s", snap.PriceID, ev.SubscriptionID)
		return OutcomeIgnored, nil
	}
	if err != nil {
		return "", err
	}

	eventAt := ev.EventAt
	applied, err := Upsert(r.db, &UserSubscription{
		UserID:               user.ID,
		PlanID:               plan.ID,
		StripeSubscriptionID: ev.SubscriptionID,
		StripeCustomerID:     ev.CustomerID,
		StartDate:            r.now(),
		EndDate:              snap.CurrentPeriodEnd,
		IsActive:             true,
		CancelAtPeriodEnd:    snap.CancelAtPeriodEnd,
		LastEventAt:          &eventAt,
	})
	if err != nil {
		return "", err
	}
	if !applied {
		return OutcomeStale, nil
	}
	return OutcomeApplied, nil
}

// PaymentSucceeded reactivates the row, extends it to the provider period end and records the payment.
func (r *Reconciler) PaymentSucceeded(ctx context.Context, ev InvoiceEvent) (Outcome, error) {
	if ev.SubscriptionID == "" {
		return OutcomeIgnored, nil
	}
	existing, err := FindBySubscriptionRef(r.db, ev.SubscriptionID)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return OutcomeIgnored, nil
	}

	snap, err := r.source.Subscription(ctx, ev.SubscriptionID)
	if err != nil {
		return "", fmt.Errorf("fetch subscription %s: %w", ev.SubscriptionID, err)
	}

	if err := r.recordPayment(existing, ev); err != nil {
		return "", err
	}

	return updateExisting(r.db, ev.SubscriptionID, ev.EventAt, map[string]any{
		"is_active": true,
		"end_date":  snap.CurrentPeriodEnd.UTC(),
	})
}

// PaymentFailed deactivates the row immediately. The end date is left as is.
func (r *Reconciler) PaymentFailed(_ context.Context, ev InvoiceEvent) (Outcome, error) {
	if ev.SubscriptionID == "" {
		return OutcomeIgnored, nil
	}
	return updateExisting(r.db, ev.SubscriptionID, ev.EventAt, map[string]any{
		"is_active": false,
	})
}

// SubscriptionChanged mirrors an updated or deleted subscription onto its row.
func (r *Reconciler) SubscriptionChanged(_ context.Context, snap SubscriptionSnapshot, eventAt time.Time) (Outcome, error) {
	if snap.ID == "" {
		return OutcomeIgnored, nil
	}
	return updateExisting(r.db, snap.ID, eventAt, map[string]any{
		"is_active":            snap.Entitled(),
		"end_date":             snap.CurrentPeriodEnd.UTC(),
		"cancel_at_period_end": snap.CancelAtPeriodEnd,
	})
}

func (r *Reconciler) recordPayment(sub *UserSubscription, ev InvoiceEvent) error {
	if ev.InvoiceID == "" {
		return nil
	}
	planID := sub.PlanID
	p := Payment{
		UserID:               sub.UserID,
		PlanID:               &planID,
		InvoiceID:            ev.InvoiceID,
		StripeSubscriptionID: ev.SubscriptionID,
		Amount:               decimal.New(ev.AmountPaid, -2),
		Currency:             ev.Currency,
		Status:               "paid",
	}
	if ev.ReceiptURL != "" {
		url := ev.ReceiptURL
		p.ReceiptURL = &url
	}
	err := r.db.Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "invoice_id"}}, DoNothing: true}).
		Create(&p).Error
	if err != nil {
		return fmt.Errorf("record payment %s: %w", ev.InvoiceID, err)
	}
	return nil
}

// BeginEvent registers a provider event id. It returns false when the event was already
// processed successfully and must not be applied again.
func BeginEvent(db *gorm.DB, eventID, eventType string) (bool, error) {
	ev := WebhookEvent{ProviderEventID: eventID, EventType: eventType, Status: EventStatusReceived}
	res := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "provider_event_id"}}, DoNothing: true}).Create(&ev)
	if res.Error != nil {
		return false, fmt.Errorf("record event %s: %w", eventID, res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var existing WebhookEvent
	if err := db.Where("provider_event_id = ?", eventID).First(&existing).Error; err != nil {
		return false, err
	}
	return existing.Status != EventStatusProcessed, nil
}

// FinishEvent stores the processing result for an event registered with BeginEvent.
func FinishEvent(db *gorm.DB, eventID string, outcome Outcome, procErr error) error {
	now := time.Now().UTC()
	fields := map[string]any{
		"status":           EventStatusProcessed,
		"outcome":          string(outcome),
		"processing_error": "",
		"processed_at":     now,
	}
	if procErr != nil {
		fields["status"] = EventStatusFailed
		fields["processing_error"] = procErr.Error()
	}
	return db.Model(&WebhookEvent{}).Where("provider_event_id = ?", eventID).Updates(fields).Error
}
