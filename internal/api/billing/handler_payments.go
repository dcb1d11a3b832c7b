package billing

import (
	"net/http"

	"study-platform/internal/api/respond"
	"study-platform/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// GET /billing/payments
func (h *Handler) GetPaymentHistory(c *gin.Context) {
	var payments []billing.Payment
	if err := h.db.
		Preload("Plan").
		Where("user_id = ?", respond.UserID(c)).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		respond.Internal(c, err, "Failed to load payments")
		return
	}
	c.JSON(http.StatusOK, payments)
}
