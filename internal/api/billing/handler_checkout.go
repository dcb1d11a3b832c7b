package billing

import (
	"errors"
	"net/http"
	"strconv"

	"study-platform/internal/api/respond"
	"study-platform/internal/domain/plans"
	"study-platform/internal/domain/users"
	stripeinfra "study-platform/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// POST /billing/checkout/:plan_id starts a subscription checkout. The customer reference
// is created on the first attempt and stored on the user.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	planID, err := strconv.ParseUint(c.Param("plan_id"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid plan id")
		return
	}
	if !h.requireProvider(c) {
		return
	}

	var plan plans.Plan
	if err := h.db.First(&plan, planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respond.Error(c, http.StatusNotFound, "Plan not found")
			return
		}
		respond.Internal(c, err, "Failed to load plan")
		return
	}

	user, err := users.FindByID(h.db, respond.UserID(c))
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "User not found")
		return
	}
	if !user.IsVerified {
		respond.Error(c, http.StatusForbidden, "Please verify your email first")
		return
	}

	ctx := c.Request.Context()
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		customerID, err := h.provider.CreateCustomer(ctx, user.Email, user.ID, h.opts.AppEnv)
		if err != nil {
			h.upstream(c, err, "Failed to create payment customer")
			return
		}
		if err := users.SetCustomerRef(h.db, user.ID, customerID); err != nil {
			respond.Internal(c, err, "Failed to store payment customer")
			return
		}
		user.StripeCustomerID = &customerID
	}

	session, err := h.provider.CreateCheckoutSession(ctx, stripeinfra.CheckoutRequest{
		CustomerID: *user.StripeCustomerID,
		PriceID:    plan.StripePriceID,
		UserID:     user.ID,
		PlanID:     plan.ID,
		SuccessURL: h.opts.AppURL + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  h.opts.AppURL + "/plans?canceled=1",
	})
	if err != nil {
		h.upstream(c, err, "Failed to create checkout session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": session.ID, "url": session.URL})
}

// POST /billing/portal
func (h *Handler) CreateBillingPortal(c *gin.Context) {
	if !h.requireProvider(c) {
		return
	}
	user, err := users.FindByID(h.db, respond.UserID(c))
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "User not found")
		return
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		respond.Error(c, http.StatusConflict, "No billing account yet (subscribe first)")
		return
	}

	url, err := h.provider.CreatePortalSession(c.Request.Context(), *user.StripeCustomerID, h.opts.AppURL+"/account")
	if err != nil {
		h.upstream(c, err, "Could not create billing portal session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
