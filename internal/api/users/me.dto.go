package users

import "time"

type MeResponse struct {
	User     UserDTO     `json:"user"`
	Progress ProgressDTO `json:"progress"`
	Billing  BillingDTO  `json:"billing"`
	Access   AccessDTO   `json:"access"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID             uint   `json:"id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	Role           string `json:"role"`
	IsVerified     bool   `json:"is_email_verified"`
	Bio            string `json:"bio"`
	ReferralSource string `json:"referral_source"`
	Goals          string `json:"goals"`
	AICredits      int    `json:"ai_credits"`
}

type ProgressDTO struct {
	Points        int `json:"points"`
	Level         int `json:"level"`
	LevelProgress int `json:"level_progress"` // percent toward the next level
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	PlanName     string           `json:"plan_name"`
	Plan         *PlanDTO         `json:"plan"`
	Subscription *SubscriptionDTO `json:"subscription"`
}

type PlanDTO struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	DurationDays int    `json:"duration_days"`
	Price        string `json:"price"`
	MonthlyPrice string `json:"monthly_price"`
}

type SubscriptionDTO struct {
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	CancelAtPeriodEnd bool      `json:"cancel_at_period_end"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	State        string   `json:"state"` // full|free
	Tier         string   `json:"tier"`
	Capabilities []string `json:"capabilities"`
}
