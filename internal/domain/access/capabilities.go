package access

import (
	"study-platform/internal/domain/plans"
)

var freeCapabilities = []string{CapGeneration, CapChat}

func CapabilitiesFor(state AccessState, plan *plans.Plan) []string {
	if state != AccessFull {
		return append([]string{}, freeCapabilities...)
	}

	caps := append([]string{}, freeCapabilities...)
	switch plans.PlanTier(plan) {
	case plans.TierPro:
		return append(caps, CapProgressTracking, CapAIInsights, CapPrograms, CapEarlyFeatures)
	default:
		return append(caps, CapProgressTracking, CapAIInsights, CapPrograms)
	}
}

func Has(caps []string, capability string) bool {
	for _, c := range caps {
		if c == capability {
			return true
		}
	}
	return false
}
