package users

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	ProviderLocal  = "local"
	ProviderGoogle = "google"

	DefaultCredits = 10000
)

type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email" json:"email"`
	Username     string  `gorm:"not null;uniqueIndex:idx_users_username" json:"username"`
	Password     *string `json:"-"`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'" json:"auth_provider"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub" json:"-"`
	Role         string  `gorm:"not null;default:'user'" json:"role"`
	IsVerified   bool    `gorm:"column:is_email_verified;not null;default:false" json:"is_email_verified"`

	Points    int `gorm:"not null;default:0" json:"points"`
	AICredits int `gorm:"column:ai_credits;not null;default:10000" json:"ai_credits"`

	StripeCustomerID *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_users_stripe_customer_id" json:"-"`

	Bio            string `gorm:"type:text" json:"bio"`
	ReferralSource string `json:"referral_source"`
	Goals          string `gorm:"type:text" json:"goals"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
