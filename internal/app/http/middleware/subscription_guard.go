package middleware

import (
	"log"
	"net/http"
	"time"

	"study-platform/internal/domain/access"
	"study-platform/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequireActiveSubscription lets the request through only while the user has a current subscription.
func RequireActiveSubscription(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, ok := currentSubscription(c, db)
		if !ok {
			return
		}
		if current == nil {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "An active subscription is required"})
			return
		}
		c.Next()
	}
}

// RequireCapability checks the caller's plan against one capability.
func RequireCapability(db *gorm.DB, capability string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, ok := currentSubscription(c, db)
		if !ok {
			return
		}
		if !access.ComputePolicy(time.Now(), current).Allows(capability) {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":      "Your plan does not include this feature",
				"capability": capability,
			})
			return
		}
		c.Next()
	}
}

func currentSubscription(c *gin.Context, db *gorm.DB) (*billing.UserSubscription, bool) {
	current, err := billing.CurrentSubscription(db, c.GetUint("user_id"), time.Now())
	if err != nil {
		log.Printf("[auth] subscription lookup failed user=%d err=%v", c.GetUint("user_id"), err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check subscription"})
		return nil, false
	}
	return current, true
}
