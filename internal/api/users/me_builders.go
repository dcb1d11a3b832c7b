package users

import (
	"study-platform/internal/domain/access"
	"study-platform/internal/domain/billing"
	"study-platform/internal/domain/plans"
	"study-platform/internal/domain/progress"
	"study-platform/internal/domain/users"
)

func BuildUserDTO(u users.User) UserDTO {
	return UserDTO{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		Role:           u.Role,
		IsVerified:     u.IsVerified,
		Bio:            u.Bio,
		ReferralSource: u.ReferralSource,
		Goals:          u.Goals,
		AICredits:      u.AICredits,
	}
}

func BuildProgressDTO(points int) ProgressDTO {
	level, pct := progress.Level(points)
	return ProgressDTO{Points: points, Level: level, LevelProgress: pct}
}

func BuildPlanDTO(p *plans.Plan) *PlanDTO {
	if p == nil {
		return nil
	}
	return &PlanDTO{
		ID:           p.ID,
		Name:         p.Name,
		DurationDays: p.DurationDays,
		Price:        p.Price.StringFixed(2),
		MonthlyPrice: p.MonthlyPrice(),
	}
}

func BuildSubscriptionDTO(s *billing.UserSubscription) *SubscriptionDTO {
	if s == nil {
		return nil
	}
	return &SubscriptionDTO{
		StartDate:         s.StartDate,
		EndDate:           s.EndDate,
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
	}
}

func BuildBillingDTO(p access.Policy) BillingDTO {
	dto := BillingDTO{PlanName: p.PlanName(), Subscription: BuildSubscriptionDTO(p.Current)}
	if p.Current != nil {
		dto.Plan = BuildPlanDTO(&p.Current.Plan)
	}
	return dto
}

func BuildAccessDTO(p access.Policy) AccessDTO {
	return AccessDTO{State: string(p.State), Tier: p.Tier, Capabilities: p.Capabilities}
}
