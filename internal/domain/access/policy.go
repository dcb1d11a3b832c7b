package access

import (
	"time"

	"study-platform/internal/domain/billing"
	"study-platform/internal/domain/plans"
)

type Policy struct {
	State        AccessState
	Tier         string
	Capabilities []string
	Current      *billing.UserSubscription
}

func ComputePolicy(now time.Time, current *billing.UserSubscription) Policy {
	state := ComputeEffectiveAccessState(now, current)

	var plan *plans.Plan
	if state == AccessFull {
		plan = &current.Plan
	} else {
		current = nil
	}

	return Policy{
		State:        state,
		Tier:         plans.PlanTier(plan),
		Capabilities: CapabilitiesFor(state, plan),
		Current:      current,
	}
}

func (p Policy) Allows(capability string) bool {
	return Has(p.Capabilities, capability)
}

// PlanName is the display name of the current plan, "Free" without one.
func (p Policy) PlanName() string {
	if p.Current == nil {
		return "Free"
	}
	return p.Current.Plan.Name
}
