package plans

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// List returns every plan, cheapest first.
func List(db *gorm.DB) ([]Plan, error) {
	var out []Plan
	err := db.Order("price ASC").Order("id ASC").Find(&out).Error
	return out, err
}

func FindByPriceRef(db *gorm.DB, priceID string) (*Plan, error) {
	var p Plan
	err := db.Where("stripe_price_id = ?", priceID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ProviderPrice is a recurring price as listed by the payment provider.
type ProviderPrice struct {
	PriceID     string
	Name        string
	Description string
	UnitAmount  int64 // minor units
	Interval    string
	Metadata    map[string]string
}

type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

func durationDays(p ProviderPrice) int {
	if n, err := strconv.Atoi(p.Metadata["duration_days"]); err == nil && n > 0 {
		return n
	}
	switch strings.ToLower(p.Interval) {
	case "year":
		return DurationYearly
	case "month":
		return DurationMonthly
	default:
		return 0
	}
}

// Sync creates or updates one plan per provider price. Prices marked visible=false and
// intervals with no known duration are skipped.
func Sync(db *gorm.DB, prices []ProviderPrice) (SyncResult, error) {
	var res SyncResult
	for _, p := range prices {
		days := durationDays(p)
		if p.Metadata["visible"] == "false" || days == 0 {
			res.Skipped++
			continue
		}

		name := p.Name
		if v := strings.TrimSpace(p.Metadata["plan"]); v != "" {
			name = v
		}
		fields := Plan{
			Name:         name,
			DurationDays: days,
			Price:        decimal.New(p.UnitAmount, -2),
			Description:  p.Description,
			Features:     p.Metadata["features"],
			NonFeatures:  p.Metadata["non_features"],
		}

		existing, err := FindByPriceRef(db, p.PriceID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			fields.StripePriceID = p.PriceID
			if err := db.Create(&fields).Error; err != nil {
				return res, fmt.Errorf("create plan %s: %w", p.PriceID, err)
			}
			res.Created++
		case err != nil:
			return res, err
		default:
			if err := db.Model(existing).Select("name", "duration_days", "price", "description", "features", "non_features").
				Updates(&fields).Error; err != nil {
				return res, fmt.Errorf("update plan %s: %w", p.PriceID, err)
			}
			res.Updated++
		}
	}
	return res, nil
}
