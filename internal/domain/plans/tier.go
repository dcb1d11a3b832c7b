package plans

import "strings"

// Tier constants (single source of truth)
const (
	TierFree    = "free"
	TierPremium = "premium"
	TierPro     = "pro"
)

// PlanTier returns the tier a plan grants. A nil plan means no subscription.
// Tiers are inferred from the plan name, e.g. "Pro Yearly" or "Premium Monthly".
func PlanTier(p *Plan) string {
	if p == nil {
		return TierFree
	}

	name := strings.ToLower(p.Name)
	switch {
	case strings.Contains(name, TierPro):
		return TierPro
	case strings.Contains(name, TierPremium):
		return TierPremium
	default:
		// a paid plan with an unrecognized name still gets the base paid tier
		return TierPremium
	}
}
