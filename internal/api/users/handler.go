package users

import (
	"net/http"
	"strings"
	"time"

	"study-platform/internal/api/respond"
	"study-platform/internal/domain/access"
	"study-platform/internal/domain/billing"
	"study-platform/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const referralOther = "other"

type Handler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, now: time.Now}
}

// GET /me
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, err := users.FindByID(h.db, respond.UserID(c))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "User not found")
		return
	}

	now := h.now()
	current, err := billing.CurrentSubscription(h.db, user.ID, now)
	if err != nil {
		respond.Internal(c, err, "Failed to load subscription")
		return
	}
	policy := access.ComputePolicy(now, current)

	c.JSON(http.StatusOK, MeResponse{
		User:     BuildUserDTO(user),
		Progress: BuildProgressDTO(user.Points),
		Billing:  BuildBillingDTO(policy),
		Access:   BuildAccessDTO(policy),
	})
}

// PUT /me/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var body struct {
		Bio *string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, err)
		return
	}
	if body.Bio == nil {
		respond.Error(c, http.StatusBadRequest, "Nothing to update")
		return
	}
	if err := h.db.Model(&users.User{}).Where("id = ?", respond.UserID(c)).
		Update("bio", strings.TrimSpace(*body.Bio)).Error; err != nil {
		respond.Internal(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// POST /me/onboarding
func (h *Handler) Onboarding(c *gin.Context) {
	var body struct {
		ReferralSource string   `json:"referral_source"`
		ReferralOther  string   `json:"referral_other"`
		Goals          []string `json:"goals"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.BadRequest(c, err)
		return
	}

	source := strings.TrimSpace(body.ReferralSource)
	if strings.EqualFold(source, referralOther) && strings.TrimSpace(body.ReferralOther) != "" {
		source = strings.TrimSpace(body.ReferralOther)
	}
	goals := make([]string, 0, len(body.Goals))
	for _, g := range body.Goals {
		if g = strings.TrimSpace(g); g != "" {
			goals = append(goals, g)
		}
	}

	if err := h.db.Model(&users.User{}).Where("id = ?", respond.UserID(c)).Updates(map[string]any{
		"referral_source": source,
		"goals":           strings.Join(goals, ", "),
	}).Error; err != nil {
		respond.Internal(c, err, "Failed to save onboarding")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Onboarding saved"})
}
