package access

import (
	"time"

	"study-platform/internal/domain/billing"
)

// ComputeEffectiveAccessState reads the current ledger row, if any. Entitlement is never cached.
func ComputeEffectiveAccessState(now time.Time, current *billing.UserSubscription) AccessState {
	if current == nil || !current.IsCurrent(now) {
		return AccessFree
	}
	return AccessFull
}
