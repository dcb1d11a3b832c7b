package billing

import (
	"context"
	"errors"
	"net/http"

	"study-platform/internal/api/respond"
	stripeinfra "study-platform/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Provider is the part of the payment provider the billing endpoints call.
type Provider interface {
	Configured() bool
	CreateCustomer(ctx context.Context, email string, userID uint, appEnv string) (string, error)
	CreateCheckoutSession(ctx context.Context, req stripeinfra.CheckoutRequest) (stripeinfra.CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) error
}

type Options struct {
	AppURL string
	AppEnv string
	// Detail exposes provider error messages to clients.
	Detail bool
}

type Handler struct {
	db       *gorm.DB
	provider Provider
	opts     Options
}

func NewHandler(db *gorm.DB, provider Provider, opts Options) *Handler {
	return &Handler{db: db, provider: provider, opts: opts}
}

func (h *Handler) requireProvider(c *gin.Context) bool {
	if h.provider == nil || !h.provider.Configured() {
		respond.Error(c, http.StatusServiceUnavailable, "Payments are not configured")
		return false
	}
	return true
}

func (h *Handler) upstream(c *gin.Context, err error, msg string) {
	if errors.Is(err, stripeinfra.ErrNotConfigured) {
		respond.Error(c, http.StatusServiceUnavailable, "Payments are not configured")
		return
	}
	respond.Upstream(c, err, msg, h.opts.Detail)
}
