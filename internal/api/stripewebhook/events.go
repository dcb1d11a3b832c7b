package stripewebhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"study-platform/internal/domain/billing"
	stripeinfra "study-platform/internal/infra/stripe"

	"github.com/stripe/stripe-go/v75"
)

// payloadError marks event data that could not be decoded.
type payloadError struct{ err error }

func (e payloadError) Error() string { return fmt.Sprintf("decode event data: %v", e.err) }

func decode(event stripe.Event, out any) error {
	if err := json.Unmarshal(event.Data.Raw, out); err != nil {
		return payloadError{err}
	}
	return nil
}

func (h *Handler) checkoutCompleted(ctx context.Context, event stripe.Event, eventAt time.Time) (billing.Outcome, error) {
	var session stripe.CheckoutSession
	if err := decode(event, &session); err != nil {
		return "", err
	}
	if session.Mode != stripe.CheckoutSessionModeSubscription || session.Subscription == nil || session.Customer == nil {
		return billing.OutcomeIgnored, nil
	}
	return h.reconciler.CheckoutCompleted(ctx, billing.CheckoutCompleted{
		EventAt:        eventAt,
		CustomerID:     session.Customer.ID,
		SubscriptionID: session.Subscription.ID,
	})
}

func invoiceEvent(event stripe.Event, eventAt time.Time) (billing.InvoiceEvent, error) {
	var inv stripe.Invoice
	if err := decode(event, &inv); err != nil {
		return billing.InvoiceEvent{}, err
	}
	ev := billing.InvoiceEvent{
		EventAt:    eventAt,
		InvoiceID:  inv.ID,
		AmountPaid: inv.AmountPaid,
		Currency:   string(inv.Currency),
		ReceiptURL: inv.HostedInvoiceURL,
	}
	if inv.Subscription != nil {
		ev.SubscriptionID = inv.Subscription.ID
	}
	if inv.Customer != nil {
		ev.CustomerID = inv.Customer.ID
	}
	return ev, nil
}

func (h *Handler) paymentSucceeded(ctx context.Context, event stripe.Event, eventAt time.Time) (billing.Outcome, error) {
	ev, err := invoiceEvent(event, eventAt)
	if err != nil {
		return "", err
	}
	return h.reconciler.PaymentSucceeded(ctx, ev)
}

func (h *Handler) paymentFailed(ctx context.Context, event stripe.Event, eventAt time.Time) (billing.Outcome, error) {
	ev, err := invoiceEvent(event, eventAt)
	if err != nil {
		return "", err
	}
	return h.reconciler.PaymentFailed(ctx, ev)
}

func (h *Handler) subscriptionChanged(ctx context.Context, event stripe.Event, eventAt time.Time) (billing.Outcome, error) {
	var sub stripe.Subscription
	if err := decode(event, &sub); err != nil {
		return "", err
	}
	return h.reconciler.SubscriptionChanged(ctx, stripeinfra.Snapshot(&sub), eventAt)
}
