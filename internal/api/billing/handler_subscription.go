package billing

import (
	"net/http"
	"time"

	"study-platform/internal/api/respond"
	"study-platform/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// GET /billing/subscriptions returns the current subscription (or null) and the full ledger history.
func (h *Handler) GetSubscriptions(c *gin.Context) {
	userID := respond.UserID(c)

	current, err := billing.CurrentSubscription(h.db, userID, time.Now())
	if err != nil {
		respond.Internal(c, err, "Failed to load subscription")
		return
	}
	history, err := billing.History(h.db, userID)
	if err != nil {
		respond.Internal(c, err, "Failed to load subscription history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": current, "history": history})
}
