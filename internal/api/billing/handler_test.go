package billing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"study-platform/internal/domain/billing"
	"study-platform/internal/domain/plans"
	"study-platform/internal/domain/users"
	stripeinfra "study-platform/internal/infra/stripe"
	"study-platform/internal/testdb"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeProvider struct {
	configured bool
	customers  int
	checkout   []stripeinfra.CheckoutRequest
	canceled   []string
	err        error
}

func (f *fakeProvider) Configured() bool { return f.configured }

func (f *fakeProvider) CreateCustomer(context.Context, string, uint, string) (string, error) {
	f.customers++
	return "cus_new", f.err
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req stripeinfra.CheckoutRequest) (stripeinfra.CheckoutSession, error) {
	f.checkout = append(f.checkout, req)
	if f.err != nil {
		return stripeinfra.CheckoutSession{}, f.err
	}
	return stripeinfra.CheckoutSession{ID: "cs_1", URL: "https://checkout.example/cs_1"}, nil
}

func (f *fakeProvider) CreatePortalSession(_ context.Context, customerID, _ string) (string, error) {
	return "https://portal.example/" + customerID, f.err
}

func (f *fakeProvider) CancelAtPeriodEnd(_ context.Context, id string) error {
	f.canceled = append(f.canceled, id)
	return f.err
}

type fixture struct {
	r    *gin.Engine
	db   *gorm.DB
	user users.User
	plan plans.Plan
	prov *fakeProvider
}

func setup(t *testing.T, detail bool) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testdb.New(t, &users.User{}, &plans.Plan{}, &billing.UserSubscription{}, &billing.Payment{})
	u := users.User{Email: "buyer@example.com", IsVerified: true}
	if err := users.Create(db, &u); err != nil {
		t.Fatal(err)
	}
	plan := plans.Plan{Name: "Premium Monthly", StripePriceID: "price_m", DurationDays: 30, Price: decimal.NewFromInt(10)}
	db.Create(&plan)

	prov := &fakeProvider{configured: true}
	h := NewHandler(db, prov, Options{AppURL: "https://app.example.com", Detail: detail})
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", u.ID) })
	r.POST("/billing/checkout/:plan_id", h.CreateCheckoutSession)
	r.POST("/billing/portal", h.CreateBillingPortal)
	r.POST("/billing/cancel", h.CancelSubscription)
	r.GET("/billing/payments", h.GetPaymentHistory)
	r.GET("/billing/subscriptions", h.GetSubscriptions)
	return &fixture{r: r, db: db, user: u, plan: plan, prov: prov}
}

func (f *fixture) do(method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func (f *fixture) subscribe(t *testing.T) {
	t.Helper()
	now := time.Now().UTC()
	if err := f.db.Omit("User", "Plan").Create(&billing.UserSubscription{
		UserID: f.user.ID, PlanID: f.plan.ID, StripeSubscriptionID: "sub_1", StripeCustomerID: "cus_new",
		StartDate: now.AddDate(0, 0, -1), EndDate: now.AddDate(0, 0, 29), IsActive: true,
	}).Error; err != nil {
		t.Fatal(err)
	}
}

func TestCheckoutCreatesCustomerOnce(t *testing.T) {
	f := setup(t, false)

	for i := 0; i < 2; i++ {
		w := f.do(http.MethodPost, "/billing/checkout/1")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", w.Code, w.Body)
		}
		var body map[string]string
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["session_id"] != "cs_1" || body["url"] == "" {
			t.Fatalf("unexpected body: %v", body)
		}
	}
	if f.prov.customers != 1 {
		t.Fatalf("customer created %d times", f.prov.customers)
	}
	u, _ := users.FindByID(f.db, f.user.ID)
	if u.StripeCustomerID == nil || *u.StripeCustomerID != "cus_new" {
		t.Fatalf("customer ref not stored: %v", u.StripeCustomerID)
	}
	req := f.prov.checkout[1]
	if req.PriceID != "price_m" || req.PlanID != f.plan.ID || !strings.HasPrefix(req.SuccessURL, "https://app.example.com/") {
		t.Fatalf("unexpected checkout request: %+v", req)
	}
}

func TestCheckoutErrors(t *testing.T) {
	f := setup(t, false)
	if w := f.do(http.MethodPost, "/billing/checkout/abc"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", w.Code)
	}
	if w := f.do(http.MethodPost, "/billing/checkout/99"); w.Code != http.StatusNotFound {
		t.Fatalf("missing plan status = %d", w.Code)
	}

	f.prov.err = errors.New("card_declined: secret detail")
	w := f.do(http.MethodPost, "/billing/checkout/1")
	if w.Code != http.StatusBadGateway || strings.Contains(w.Body.String(), "secret detail") {
		t.Fatalf("upstream error leaked or wrong status: %d %s", w.Code, w.Body)
	}

	f.prov.configured = false
	if w := f.do(http.MethodPost, "/billing/checkout/1"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("unconfigured status = %d", w.Code)
	}
}

func TestCheckoutRequiresVerifiedEmail(t *testing.T) {
	f := setup(t, false)
	f.db.Model(&users.User{}).Where("id = ?", f.user.ID).Update("is_email_verified", false)
	if w := f.do(http.MethodPost, "/billing/checkout/1"); w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestUpstreamDetailOutsideProduction(t *testing.T) {
	f := setup(t, true)
	f.prov.err = errors.New("card_declined")
	w := f.do(http.MethodPost, "/billing/checkout/1")
	if !strings.Contains(w.Body.String(), "card_declined") {
		t.Fatalf("expected detail in body: %s", w.Body)
	}
}

func TestPortalRequiresCustomer(t *testing.T) {
	f := setup(t, false)
	if w := f.do(http.MethodPost, "/billing/portal"); w.Code != http.StatusConflict {
		t.Fatalf("status = %d", w.Code)
	}
	users.SetCustomerRef(f.db, f.user.ID, "cus_9")
	w := f.do(http.MethodPost, "/billing/portal")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "cus_9") {
		t.Fatalf("status = %d body=%s", w.Code, w.Body)
	}
}

func TestCancelForwardsIntentOnly(t *testing.T) {
	f := setup(t, false)
	if w := f.do(http.MethodPost, "/billing/cancel"); w.Code != http.StatusNotFound {
		t.Fatalf("no subscription status = %d", w.Code)
	}

	f.subscribe(t)
	if w := f.do(http.MethodPost, "/billing/cancel"); w.Code != http.StatusAccepted {
		t.Fatalf("status = %d body=%s", w.Code, w.Body)
	}
	if len(f.prov.canceled) != 1 || f.prov.canceled[0] != "sub_1" {
		t.Fatalf("cancel not forwarded: %v", f.prov.canceled)
	}
	sub, _ := billing.FindBySubscriptionRef(f.db, "sub_1")
	if !sub.IsActive || sub.CancelAtPeriodEnd {
		t.Fatalf("ledger changed before provider event: %+v", sub)
	}
}

func TestHistoryAndPayments(t *testing.T) {
	f := setup(t, false)
	f.subscribe(t)
	f.db.Omit("User", "Plan").Create(&billing.Payment{UserID: f.user.ID, PlanID: &f.plan.ID, InvoiceID: "in_1", Amount: decimal.NewFromInt(10), Currency: "eur", Status: "paid"})

	w := f.do(http.MethodGet, "/billing/subscriptions")
	var subs struct {
		Current *billing.UserSubscription  `json:"current"`
		History []billing.UserSubscription `json:"history"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &subs)
	if subs.Current == nil || len(subs.History) != 1 || subs.Current.Plan.Name != "Premium Monthly" {
		t.Fatalf("unexpected subscriptions: %s", w.Body)
	}

	w = f.do(http.MethodGet, "/billing/payments")
	var payments []billing.Payment
	_ = json.Unmarshal(w.Body.Bytes(), &payments)
	if len(payments) != 1 || payments[0].InvoiceID != "in_1" || payments[0].Plan == nil {
		t.Fatalf("unexpected payments: %s", w.Body)
	}
}
