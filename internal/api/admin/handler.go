package admin

import (
	"net/http"
	"strconv"
	"time"

	"study-platform/internal/api/respond"
	"study-platform/internal/domain/billing"
	"study-platform/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AdminUser struct {
	ID         uint       `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	IsVerified bool       `json:"is_verified"`
	AICredits  int        `json:"ai_credits"`
	Points     int        `json:"points"`
	PlanName   *string    `json:"plan_name,omitempty"`
	PlanEnd    *time.Time `json:"plan_end,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type AdminPayment struct {
	ID         uint            `json:"id"`
	Email      string          `json:"email"`
	PlanName   *string         `json:"plan_name,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	Status     string          `json:"status"`
	InvoiceID  string          `json:"invoice_id"`
	ReceiptURL *string         `json:"receipt_url,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

type AdminStats struct {
	TotalUsers    int             `json:"total_users"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	RecentRevenue decimal.Decimal `json:"recent_revenue"`
	UsersPerPlan  map[string]int  `json:"users_per_plan"`
}

type Handler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, now: time.Now}
}

// currentPlans maps user id to the subscription that currently entitles them.
func (h *Handler) currentPlans() (map[uint]billing.UserSubscription, error) {
	var rows []billing.UserSubscription
	err := h.db.Preload("Plan").
		Where("is_active = ? AND end_date > ?", true, h.now().UTC()).
		Order("start_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]billing.UserSubscription, len(rows))
	for _, r := range rows {
		out[r.UserID] = r // newest start wins
	}
	return out, nil
}

// GET /admin/dashboard
func (h *Handler) AdminDashboard(c *gin.Context) {
	var totalUsers int64
	if err := h.db.Model(&users.User{}).Count(&totalUsers).Error; err != nil {
		respond.Internal(c, err, "Failed to count users")
		return
	}

	stats := AdminStats{TotalUsers: int(totalUsers), UsersPerPlan: map[string]int{}}
	if err := h.db.Model(&billing.Payment{}).Where("status = ?", "paid").
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&stats.TotalRevenue); err != nil {
		respond.Internal(c, err, "Failed to sum revenue")
		return
	}
	thirtyDaysAgo := h.now().UTC().AddDate(0, 0, -30)
	if err := h.db.Model(&billing.Payment{}).
		Where("status = ? AND created_at >= ?", "paid", thirtyDaysAgo).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&stats.RecentRevenue); err != nil {
		respond.Internal(c, err, "Failed to sum revenue")
		return
	}

	current, err := h.currentPlans()
	if err != nil {
		respond.Internal(c, err, "Failed to load subscriptions")
		return
	}
	for _, s := range current {
		stats.UsersPerPlan[s.Plan.Name]++
	}
	stats.UsersPerPlan["Free"] = stats.TotalUsers - len(current)

	c.JSON(http.StatusOK, stats)
}

// GET /admin/users
func (h *Handler) ListAllUsers(c *gin.Context) {
	var all []users.User
	if err := h.db.Order("id ASC").Find(&all).Error; err != nil {
		respond.Internal(c, err, "Failed to load users")
		return
	}
	current, err := h.currentPlans()
	if err != nil {
		respond.Internal(c, err, "Failed to load subscriptions")
		return
	}

	adminUsers := make([]AdminUser, 0, len(all))
	for _, u := range all {
		au := AdminUser{
			ID:         u.ID,
			Username:   u.Username,
			Email:      u.Email,
			Role:       u.Role,
			IsVerified: u.IsVerified,
			AICredits:  u.AICredits,
			Points:     u.Points,
			CreatedAt:  u.CreatedAt,
		}
		if s, ok := current[u.ID]; ok {
			name, end := s.Plan.Name, s.EndDate
			au.PlanName = &name
			au.PlanEnd = &end
		}
		adminUsers = append(adminUsers, au)
	}
	c.JSON(http.StatusOK, adminUsers)
}

// GET /admin/payments
func (h *Handler) ListAllPayments(c *gin.Context) {
	var payments []billing.Payment
	if err := h.db.Preload("User").Preload("Plan").Order("created_at DESC").Find(&payments).Error; err != nil {
		respond.Internal(c, err, "Failed to load payments")
		return
	}

	result := make([]AdminPayment, 0, len(payments))
	for _, p := range payments {
		var planName *string
		if p.Plan != nil {
			planName = &p.Plan.Name
		}
		result = append(result, AdminPayment{
			ID:         p.ID,
			Email:      p.User.Email,
			PlanName:   planName,
			Amount:     p.Amount,
			Currency:   p.Currency,
			Status:     p.Status,
			InvoiceID:  p.InvoiceID,
			ReceiptURL: p.ReceiptURL,
			CreatedAt:  p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	c.JSON(http.StatusOK, result)
}

// GET /admin/user/:id
func (h *Handler) GetUserDetails(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid user id")
		return
	}
	user, err := users.FindByID(h.db, uint(id))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "User not found")
		return
	}

	subs, err := billing.History(h.db, user.ID)
	if err != nil {
		respond.Internal(c, err, "Failed to fetch subscriptions")
		return
	}
	var payments []billing.Payment
	if err := h.db.Preload("Plan").Where("user_id = ?", user.ID).Order("created_at DESC").Find(&payments).Error; err != nil {
		respond.Internal(c, err, "Failed to fetch payments")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":          user,
		"subscriptions": subs,
		"payments":      payments,
	})
}
