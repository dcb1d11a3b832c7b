package plans

import (
	"context"
	"errors"
	"net/http"

	"study-platform/internal/api/respond"
	"study-platform/internal/domain/plans"
	stripeinfra "study-platform/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PriceLister lists active recurring prices at the payment provider.
type PriceLister interface {
	ListRecurringPrices(ctx context.Context) ([]stripeinfra.RecurringPrice, error)
}

type Handler struct {
	db     *gorm.DB
	prices PriceLister
	detail bool
}

func NewHandler(db *gorm.DB, prices PriceLister, detail bool) *Handler {
	return &Handler{db: db, prices: prices, detail: detail}
}

type PlanDTO struct {
	ID            uint     `json:"id"`
	Name          string   `json:"name"`
	Tier          string   `json:"tier"`
	StripePriceID string   `json:"stripe_price_id"`
	DurationDays  int      `json:"duration_days"`
	Price         string   `json:"price"`
	MonthlyPrice  string   `json:"monthly_price"`
	Description   string   `json:"description"`
	Features      []string `json:"features"`
	NonFeatures   []string `json:"non_features"`
}

func buildPlanDTO(p plans.Plan) PlanDTO {
	return PlanDTO{
		ID:            p.ID,
		Name:          p.Name,
		Tier:          plans.PlanTier(&p),
		StripePriceID: p.StripePriceID,
		DurationDays:  p.DurationDays,
		Price:         p.Price.StringFixed(2),
		MonthlyPrice:  p.MonthlyPrice(),
		Description:   p.Description,
		Features:      p.FeatureList(),
		NonFeatures:   p.NonFeatureList(),
	}
}

// GET /plans
func (h *Handler) ListPlans(c *gin.Context) {
	list, err := plans.List(h.db)
	if err != nil {
		respond.Internal(c, err, "Failed to load plans")
		return
	}
	out := make([]PlanDTO, 0, len(list))
	for _, p := range list {
		out = append(out, buildPlanDTO(p))
	}
	c.JSON(http.StatusOK, out)
}

// POST /admin/sync-plans imports the provider's active recurring prices.
func (h *Handler) SyncPlansFromStripe(c *gin.Context) {
	if h.prices == nil {
		respond.Error(c, http.StatusServiceUnavailable, "Payments are not configured")
		return
	}
	listed, err := h.prices.ListRecurringPrices(c.Request.Context())
	if errors.Is(err, stripeinfra.ErrNotConfigured) {
		respond.Error(c, http.StatusServiceUnavailable, "Payments are not configured")
		return
	}
	if err != nil {
		respond.Upstream(c, err, "Failed to fetch provider prices", h.detail)
		return
	}

	prices := make([]plans.ProviderPrice, 0, len(listed))
	for _, p := range listed {
		prices = append(prices, plans.ProviderPrice{
			PriceID:     p.PriceID,
			Name:        p.Name,
			Description: p.Description,
			UnitAmount:  p.UnitAmount,
			Interval:    p.Interval,
			Metadata:    p.Metadata,
		})
	}

	res, err := plans.Sync(h.db, prices)
	if err != nil {
		respond.Internal(c, err, "Failed to sync plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"synced":  res.Created + res.Updated,
		"created": res.Created,
		"updated": res.Updated,
		"skipped": res.Skipped,
	})
}
