package billing

import (
	"net/http"
	"time"

	"study-platform/internal/api/respond"
	"study-platform/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// POST /billing/cancel asks the provider to stop renewing. Entitlement is unchanged until
// the provider's subscription event is reconciled.
func (h *Handler) CancelSubscription(c *gin.Context) {
	if !h.requireProvider(c) {
		return
	}

	current, err := billing.CurrentSubscription(h.db, respond.UserID(c), time.Now())
	if err != nil {
		respond.Internal(c, err, "Failed to load subscription")
		return
	}
	if current == nil {
		respond.Error(c, http.StatusNotFound, "No active subscription")
		return
	}
	if current.CancelAtPeriodEnd {
		c.JSON(http.StatusOK, gin.H{"message": "Subscription already set to cancel", "end_date": current.EndDate})
		return
	}

	if err := h.provider.CancelAtPeriodEnd(c.Request.Context(), current.StripeSubscriptionID); err != nil {
		h.upstream(c, err, "Failed to cancel subscription")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"message":  "Cancellation requested. Access continues until the end of the billing period.",
		"end_date": current.EndDate,
	})
}
