package access

import (
	"testing"
	"time"

	"study-platform/internal/domain/billing"
	"study-platform/internal/domain/plans"
)

func TestComputePolicy(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		current   *billing.UserSubscription
		wantState AccessState
		wantTier  string
		wantPlan  string
		allows    string
		denies    string
	}{
		{
			name:      "no subscription",
			wantState: AccessFree, wantTier: plans.TierFree, wantPlan: "Free",
			allows: CapGeneration, denies: CapProgressTracking,
		},
		{
			name: "expired row",
			current: &billing.UserSubscription{IsActive: true, EndDate: now.Add(-time.Hour),
				Plan: plans.Plan{Name: "Pro Monthly"}},
			wantState: AccessFree, wantTier: plans.TierFree, wantPlan: "Free",
			allows: CapChat, denies: CapEarlyFeatures,
		},
		{
			name: "premium",
			current: &billing.UserSubscription{IsActive: true, EndDate: now.Add(time.Hour),
				Plan: plans.Plan{Name: "Premium Monthly"}},
			wantState: AccessFull, wantTier: plans.TierPremium, wantPlan: "Premium Monthly",
			allows: CapProgressTracking, denies: CapEarlyFeatures,
		},
		{
			name: "pro",
			current: &billing.UserSubscription{IsActive: true, EndDate: now.Add(time.Hour),
				Plan: plans.Plan{Name: "Pro Yearly"}},
			wantState: AccessFull, wantTier: plans.TierPro, wantPlan: "Pro Yearly",
			allows: CapEarlyFeatures,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComputePolicy(now, tt.current)
			if p.State != tt.wantState || p.Tier != tt.wantTier {
				t.Fatalf("got state=%s tier=%s", p.State, p.Tier)
			}
			if p.PlanName() != tt.wantPlan {
				t.Fatalf("plan name %q, want %q", p.PlanName(), tt.wantPlan)
			}
			if tt.allows != "" && !p.Allows(tt.allows) {
				t.Fatalf("expected %s to be allowed", tt.allows)
			}
			if tt.denies != "" && p.Allows(tt.denies) {
				t.Fatalf("expected %s to be denied", tt.denies)
			}
		})
	}
}
