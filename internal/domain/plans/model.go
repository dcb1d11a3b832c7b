package plans

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DurationMonthly = 30
	DurationYearly  = 365
)

// annualDiscount is applied to yearly plans when shown as a monthly figure.
var annualDiscount = decimal.RequireFromString("0.8")

type Plan struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	StripePriceID string          `gorm:"column:stripe_price_id;not null;uniqueIndex:idx_plans_stripe_price_id" json:"stripe_price_id"`
	DurationDays  int             `gorm:"not null" json:"duration_days"`
	Price         decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"price"`
	Description   string          `json:"description"`
	Features      string          `json:"-"`
	NonFeatures   string          `json:"-"`
	CreatedAt     time.Time       `json:"-"`
	UpdatedAt     time.Time       `json:"-"`
}

// MonthlyPrice is the price shown per month. Yearly plans are divided by twelve and
// discounted; other durations return "" since they have no monthly rendering.
func (p Plan) MonthlyPrice() string {
	switch p.DurationDays {
	case DurationMonthly:
		return p.Price.StringFixed(2)
	case DurationYearly:
		return p.Price.Div(decimal.NewFromInt(12)).Mul(annualDiscount).StringFixed(2)
	default:
		return ""
	}
}

// FeatureList splits the comma separated feature column.
func (p Plan) FeatureList() []string {
	return splitList(p.Features)
}

func (p Plan) NonFeatureList() []string {
	return splitList(p.NonFeatures)
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
