package stripe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"study-platform/internal/domain/billing"

	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
	"github.com/stripe/stripe-go/v75/webhook"
)

var ErrNotConfigured = errors.New("stripe key not configured")

// Client wraps one configured provider client shared by all handlers.
type Client struct {
	api           *client.API
	webhookSecret string
}

func NewClient(secretKey, webhookSecret string) *Client {
	c := &Client{webhookSecret: webhookSecret}
	if secretKey != "" {
		c.api = client.New(secretKey, nil)
	}
	return c
}

func (c *Client) Configured() bool {
	return c != nil && c.api != nil
}

// Subscription implements billing.SubscriptionSource.
func (c *Client) Subscription(ctx context.Context, id string) (billing.SubscriptionSnapshot, error) {
	if !c.Configured() {
		return billing.SubscriptionSnapshot{}, ErrNotConfigured
	}
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := c.api.Subscriptions.Get(id, params)
	if err != nil {
		return billing.SubscriptionSnapshot{}, fmt.Errorf("get subscription %s: %w", id, err)
	}
	return Snapshot(sub), nil
}

// Snapshot converts a provider subscription payload into the ledger's view of it.
func Snapshot(sub *stripe.Subscription) billing.SubscriptionSnapshot {
	if sub == nil {
		return billing.SubscriptionSnapshot{}
	}
	snap := billing.SubscriptionSnapshot{
		ID:                sub.ID,
		Status:            NormalizeStripeStatus(string(sub.Status)),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.CurrentPeriodEnd > 0 {
		snap.CurrentPeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}
	if sub.Customer != nil {
		snap.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		snap.PriceID = sub.Items.Data[0].Price.ID
	}
	return snap
}

func (c *Client) CreateCustomer(ctx context.Context, email string, userID uint, appEnv string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Metadata: map[string]string{
			"user_id": fmt.Sprint(userID),
			"app_env": appEnv,
		},
	}
	params.Context = ctx
	cus, err := c.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return cus.ID, nil
}

type CheckoutRequest struct {
	CustomerID string
	PriceID    string
	UserID     uint
	PlanID     uint
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	ID  string
	URL string
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	if !c.Configured() {
		return CheckoutSession{}, ErrNotConfigured
	}
	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(req.CustomerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(fmt.Sprint(req.UserID)),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"user_id": fmt.Sprint(req.UserID),
				"plan_id": fmt.Sprint(req.PlanID),
			},
		},
	}
	params.Context = ctx
	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	return CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx
	portal, err := c.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return portal.URL, nil
}

// CancelAtPeriodEnd forwards a cancellation intent. The ledger changes when the provider
// reports the updated subscription.
func (c *Client) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	params := &stripe.SubscriptionParams{CancelAtPeriodEnd: stripe.Bool(true)}
	params.Context = ctx
	if _, err := c.api.Subscriptions.Update(subscriptionID, params); err != nil {
		return fmt.Errorf("cancel subscription %s: %w", subscriptionID, err)
	}
	return nil
}

// RecurringPrice is an active recurring price with its product expanded.
type RecurringPrice struct {
	PriceID     string
	ProductID   string
	Name        string
	Description string
	Currency    string
	UnitAmount  int64
	Interval    string
	Metadata    map[string]string
}

func (c *Client) ListRecurringPrices(ctx context.Context) ([]RecurringPrice, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	params := &stripe.PriceListParams{}
	params.Active = stripe.Bool(true)
	params.Type = stripe.String("recurring")
	params.AddExpand("data.product")
	params.Context = ctx

	out := []RecurringPrice{}
	it := c.api.Prices.List(params)
	for it.Next() {
		p := it.Price()
		if !p.Active || p.Recurring == nil || p.Product == nil || !p.Product.Active {
			continue
		}
		out = append(out, RecurringPrice{
			PriceID:     p.ID,
			ProductID:   p.Product.ID,
			Name:        p.Product.Name,
			Description: p.Product.Description,
			Currency:    string(p.Currency),
			UnitAmount:  p.UnitAmount,
			Interval:    string(p.Recurring.Interval),
			Metadata:    p.Metadata,
		})
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	return out, nil
}

// ConstructEvent verifies the signature header against the endpoint secret.
func (c *Client) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	if c == nil || c.webhookSecret == "" {
		return stripe.Event{}, errors.New("webhook secret not configured")
	}
	return webhook.ConstructEventWithOptions(
		payload,
		signature,
		c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
}
