package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"study-platform/internal/domain/plans"
	"study-platform/internal/domain/users"
	"study-platform/internal/testdb"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeSource struct {
	subs  map[string]SubscriptionSnapshot
	err   error
	calls int
}

func (f *fakeSource) Subscription(_ context.Context, id string) (SubscriptionSnapshot, error) {
	f.calls++
	if f.err != nil {
		return SubscriptionSnapshot{}, f.err
	}
	s, ok := f.subs[id]
	if !ok {
		return SubscriptionSnapshot{}, errors.New("no such subscription")
	}
	return s, nil
}

type fixture struct {
	db     *gorm.DB
	user   users.User
	plan   plans.Plan
	source *fakeSource
	rec    *Reconciler
	end    time.Time
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t, &users.User{}, &plans.Plan{}, &UserSubscription{}, &Payment{}, &WebhookEvent{})

	user := users.User{Email: "buyer@example.com"}
	if err := users.Create(db, &user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := users.SetCustomerRef(db, user.ID, "cus_1"); err != nil {
		t.Fatalf("customer ref: %v", err)
	}

	plan := plans.Plan{Name: "Premium Monthly", StripePriceID: "price_1", DurationDays: 30, Price: decimal.RequireFromString("9.99")}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatalf("create plan: %v", err)
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 1, 0)
	source := &fakeSource{subs: map[string]SubscriptionSnapshot{
		"sub_1": {ID: "sub_1", CustomerID: "cus_1", PriceID: "price_1", Status: "active", CurrentPeriodEnd: end},
	}}
	rec := NewReconciler(db, source)
	rec.now = func() time.Time { return now }

	return &fixture{db: db, user: user, plan: plan, source: source, rec: rec, end: end, now: now}
}

func (f *fixture) row(t *testing.T) UserSubscription {
	t.Helper()
	sub, err := FindBySubscriptionRef(f.db, "sub_1")
	if err != nil || sub == nil {
		t.Fatalf("expected ledger row, err=%v", err)
	}
	return *sub
}

func (f *fixture) countRows(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&UserSubscription{}).Where("stripe_subscription_id = ?", "sub_1").Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestCheckoutCompletedDuplicateDeliveryKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := CheckoutCompleted{EventAt: f.now, CustomerID: "cus_1", SubscriptionID: "sub_1"}

	for i := 0; i < 2; i++ {
		out, err := f.rec.CheckoutCompleted(ctx, ev)
		if err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
		if out != OutcomeApplied {
			t.Fatalf("delivery %d: expected applied, got %s", i, out)
		}
	}

	if n := f.countRows(t); n != 1 {
		t.Fatalf("expected exactly one row, got %d", n)
	}
	row := f.row(t)
	if !row.IsActive || !row.EndDate.Equal(f.end) || row.UserID != f.user.ID || row.PlanID != f.plan.ID {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestCheckoutCompletedIgnoresUnknownRefs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.rec.CheckoutCompleted(ctx, CheckoutCompleted{EventAt: f.now, CustomerID: "cus_unknown", SubscriptionID: "sub_1"})
	if err != nil || out != OutcomeIgnored {
		t.Fatalf("unknown customer: out=%s err=%v", out, err)
	}

	f.source.subs["sub_2"] = SubscriptionSnapshot{ID: "sub_2", PriceID: "price_missing", CurrentPeriodEnd: f.end}
	out, err = f.rec.CheckoutCompleted(ctx, CheckoutCompleted{EventAt: f.now, CustomerID: "cus_1", SubscriptionID: "sub_2"})
	if err != nil || out != OutcomeIgnored {
		t.Fatalf("unknown price: out=%s err=%v", out, err)
	}

	out, err = f.rec.CheckoutCompleted(ctx, CheckoutCompleted{EventAt: f.now, CustomerID: "cus_1"})
	if err != nil || out != OutcomeIgnored {
		t.Fatalf("no subscription: out=%s err=%v", out, err)
	}

	var n int64
	f.db.Model(&UserSubscription{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected no rows, got %d", n)
	}
}

func TestCheckoutCompletedSourceError(t *testing.T) {
	f := newFixture(t)
	f.source.err = errors.New("provider down")
	if _, err := f.rec.CheckoutCompleted(context.Background(), CheckoutCompleted{EventAt: f.now, CustomerID: "cus_1", SubscriptionID: "sub_1"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestPaymentFailedKeepsEndDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.rec.CheckoutCompleted(ctx, CheckoutCompleted{EventAt: f.now, CustomerID: "cus_1", SubscriptionID: "sub_1"}); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	out, err := f.rec.PaymentFailed(ctx, InvoiceEvent{EventAt: f.now.Add(time.Minute), SubscriptionID: "sub_1"})
	if err != nil || out != OutcomeApplied {
		t.Fatalf("payment failed: out=%s err=%v", out, err)
	}

	row := f.row(t)
	if row.IsActive {
		t.Fatal("expected row to be inactive")
	}
	if !row.EndDate.Equal(f.end) {
		t.Fatalf("end date changed: %v != %v", row.EndDate, f.end)
	}
}

func TestPaymentSucceededExtendsAndRecordsPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.rec.CheckoutCompleted(ctx, CheckoutCompleted{EventAt: f.now, CustomerID: "cus_1", SubscriptionID: "sub_1"}); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if _, err := f.rec.PaymentFailed(ctx, InvoiceEvent{EventAt: f.now.Add(time.Minute), SubscriptionID: "sub_1"}); err != nil {
		t.Fatalf("payment failed: %v", err)
	}

	renewed := f.end.AddDate(0, 1, 0)
	f.source.subs["sub_1"] = SubscriptionSnapshot{ID: "sub_1", PriceID: "price_1", Status: "active", CurrentPeriodEnd: renewed}
	inv := InvoiceEvent{EventAt: f.now.Add(2 * time.Minute), InvoiceID: "in_1", SubscriptionID: "sub_1", AmountPaid: 999, Currency: "usd"}
	for i := 0; i < 2; i++ {
		out, err := f.rec.PaymentSucceeded(ctx, inv)
		if err != nil || out != OutcomeApplied {
			t.Fatalf("payment succeeded: out=%s err=%v", out, err)
		}
	}

	row := f.row(t)
	if !row.IsActive || !row.EndDate.Equal(renewed) {
		t.Fatalf("expected active row ending %v, got %+v", renewed, row)
	}

	var payments []Payment
	if err := f.db.Find(&payments).Error; err != nil {
		t.Fatalf("payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected one payment, got %d", len(payments))
	}
	if !payments[0].Amount.Equal(decimal.RequireFromString("9.99")) || payments[0].UserID != f.user.ID {
		t.Fatalf("unexpected payment: %+v", payments[0])
	}
}

func TestEventsForUnknownSubscriptionAreIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.rec.PaymentSucceeded(ctx, InvoiceEvent{EventAt: f.now, SubscriptionID: "sub_1"})
	if err != nil || out != OutcomeIgnored {
		t.Fatalf("payment succeeded: out=%s err=%v", out, err)
	}
	if f.source.calls != 0 {
		t.Fatalf("expected no provider lookups, got %d", f.source.calls)
	}
	out, err = f.rec.PaymentFailed(ctx, InvoiceEvent{EventAt: f.now, SubscriptionID: "sub_1"})
	if err != nil || out != OutcomeIgnored {
		t.Fatalf("payment failed: out=%s err=%v", out, err)
	}
	out, err = f.rec.SubscriptionChanged(ctx, SubscriptionSnapshot{ID: "sub_1", Status: "canceled"}, f.now)
	if err != nil || out != OutcomeIgnored {
		t.Fatalf("subscription changed: out=%s err=%v", out, err)
	}
}

func TestStalePaymentDoesNotReactivateDeletedSubscription(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.rec.CheckoutCompleted(ctx, CheckoutCompleted{EventAt: f.now, CustomerID: "cus_1", SubscriptionID: "sub_1"}); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	deletedAt := f.now.Add(time.Hour)
	out, err := f.rec.SubscriptionChanged(ctx, SubscriptionSnapshot{ID: "sub_1", Status: "canceled", CurrentPeriodEnd: f.end}, deletedAt)
	if err != nil || out != OutcomeApplied {
		t.Fatalf("deleted: out=%s err=%v", out, err)
	}

	out, err = f.rec.PaymentSucceeded(ctx, InvoiceEvent{EventAt: f.now.Add(30 * time.Minute), SubscriptionID: "sub_1"})
	if err != nil || out != OutcomeStale {
		t.Fatalf("stale payment: out=%s err=%v", out, err)
	}
	if f.row(t).IsActive {
		t.Fatal("stale payment reactivated a canceled subscription")
	}
}

func TestSubscriptionChangedTrialingIsActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.rec.CheckoutCompleted(ctx, CheckoutCompleted{EventAt: f.now, CustomerID: "cus_1", SubscriptionID: "sub_1"}); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	later := f.end.AddDate(0, 0, 7)
	out, err := f.rec.SubscriptionChanged(ctx, SubscriptionSnapshot{ID: "sub_1", Status: "trialing", CurrentPeriodEnd: later, CancelAtPeriodEnd: true}, f.now.Add(time.Minute))
	if err != nil || out != OutcomeApplied {
		t.Fatalf("updated: out=%s err=%v", out, err)
	}
	row := f.row(t)
	if !row.IsActive || !row.EndDate.Equal(later) || !row.CancelAtPeriodEnd {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestWebhookEventDedup(t *testing.T) {
	f := newFixture(t)

	fresh, err := BeginEvent(f.db, "evt_1", "invoice.payment_failed")
	if err != nil || !fresh {
		t.Fatalf("first delivery: fresh=%v err=%v", fresh, err)
	}
	// failed processing may be retried
	if err := FinishEvent(f.db, "evt_1", "", errors.New("boom")); err != nil {
		t.Fatalf("finish: %v", err)
	}
	fresh, err = BeginEvent(f.db, "evt_1", "invoice.payment_failed")
	if err != nil || !fresh {
		t.Fatalf("retry after failure: fresh=%v err=%v", fresh, err)
	}

	if err := FinishEvent(f.db, "evt_1", OutcomeApplied, nil); err != nil {
		t.Fatalf("finish: %v", err)
	}
	fresh, err = BeginEvent(f.db, "evt_1", "invoice.payment_failed")
	if err != nil || fresh {
		t.Fatalf("redelivery after success: fresh=%v err=%v", fresh, err)
	}
}
