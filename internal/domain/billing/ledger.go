package billing

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CurrentSubscription returns the newest row that is active and not yet expired, or nil.
func CurrentSubscription(db *gorm.DB, userID uint, now time.Time) (*UserSubscription, error) {
	var sub UserSubscription
	err := db.Preload("Plan").
		Where("user_id = ? AND is_active = ? AND end_date > ?", userID, true, now.UTC()).
		Order("start_date DESC").
		Order("created_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current subscription: %w", err)
	}
	return &sub, nil
}

// History lists every ledger row for the user, newest first.
func History(db *gorm.DB, userID uint) ([]UserSubscription, error) {
	var rows []UserSubscription
	err := db.Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func FindBySubscriptionRef(db *gorm.DB, ref string) (*UserSubscription, error) {
	var sub UserSubscription
	err := db.Where("stripe_subscription_id = ?", ref).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// newerOrUnset guards updates so an event older than the last applied one is a no-op.
const newerOrUnset = "(excluded.last_event_at IS NULL OR user_subscriptions.last_event_at IS NULL OR user_subscriptions.last_event_at <= excluded.last_event_at)"

// Upsert creates or replaces the row keyed by its provider subscription id in one statement.
// It reports false when an existing row already reflects a newer event.
func Upsert(db *gorm.DB, sub *UserSubscription) (bool, error) {
	if sub.StripeSubscriptionID == "" {
		return false, errors.New("upsert: missing subscription ref")
	}
	sub.StartDate = sub.StartDate.UTC()
	sub.EndDate = sub.EndDate.UTC()
	if sub.LastEventAt != nil {
		at := sub.LastEventAt.UTC()
		sub.LastEventAt = &at
	}

	res := db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stripe_subscription_id"}},
		Where:   clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: newerOrUnset}}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "plan_id", "stripe_customer_id", "start_date", "end_date",
			"is_active", "cancel_at_period_end", "last_event_at", "updated_at",
		}),
	}).Create(sub)
	if res.Error != nil {
		return false, fmt.Errorf("upsert subscription %s: %w", sub.StripeSubscriptionID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// updateExisting applies fields to an existing row unless a newer event got there first.
func updateExisting(db *gorm.DB, ref string, eventAt time.Time, fields map[string]any) (Outcome, error) {
	existing, err := FindBySubscriptionRef(db, ref)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return OutcomeIgnored, nil
	}

	eventAt = eventAt.UTC()
	fields["last_event_at"] = eventAt
	res := db.Model(&UserSubscription{}).
		Where("id = ? AND (last_event_at IS NULL OR last_event_at <= ?)", existing.ID, eventAt).
		Updates(fields)
	if res.Error != nil {
		return "", fmt.Errorf("update subscription %s: %w", ref, res.Error)
	}
	if res.RowsAffected == 0 {
		return OutcomeStale, nil
	}
	return OutcomeApplied, nil
}
