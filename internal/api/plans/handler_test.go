package plans

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"study-platform/internal/domain/plans"
	stripeinfra "study-platform/internal/infra/stripe"
	"study-platform/internal/testdb"

	"github.com/gin-gonic/gin"
)

type fakePrices struct {
	prices []stripeinfra.RecurringPrice
	err    error
}

func (f fakePrices) ListRecurringPrices(context.Context) ([]stripeinfra.RecurringPrice, error) {
	return f.prices, f.err
}

func TestSyncThenList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testdb.New(t, &plans.Plan{})
	h := NewHandler(db, fakePrices{prices: []stripeinfra.RecurringPrice{
		{PriceID: "price_y", Name: "Premium Yearly", UnitAmount: 12000, Interval: "year", Currency: "eur"},
		{PriceID: "price_m", Name: "Premium Monthly", UnitAmount: 1000, Interval: "month", Currency: "eur"},
	}}, false)

	r := gin.New()
	r.GET("/plans", h.ListPlans)
	r.POST("/admin/sync-plans", h.SyncPlansFromStripe)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/sync-plans", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("sync status = %d body=%s", w.Code, w.Body)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plans", nil))
	var got []PlanDTO
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 plans, got %s", w.Body)
	}
	if got[0].Name != "Premium Monthly" || got[0].MonthlyPrice != "10.00" {
		t.Fatalf("unexpected first plan: %+v", got[0])
	}
	if got[1].MonthlyPrice != "8.00" || got[1].Tier != plans.TierPremium {
		t.Fatalf("unexpected yearly plan: %+v", got[1])
	}
}

func TestSyncUpstreamError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testdb.New(t, &plans.Plan{})
	h := NewHandler(db, fakePrices{err: errors.New("boom")}, false)
	r := gin.New()
	r.POST("/admin/sync-plans", h.SyncPlansFromStripe)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/sync-plans", nil))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
}
