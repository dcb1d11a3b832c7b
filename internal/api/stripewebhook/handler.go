package stripewebhooks

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"study-platform/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"gorm.io/gorm"
)

const maxBodyBytes = 65536

// EventVerifier checks the provider signature and decodes the event.
type EventVerifier interface {
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

type Handler struct {
	db         *gorm.DB
	verifier   EventVerifier
	reconciler *billing.Reconciler
}

func NewHandler(db *gorm.DB, verifier EventVerifier, reconciler *billing.Reconciler) *Handler {
	return &Handler{db: db, verifier: verifier, reconciler: reconciler}
}

// POST /webhook. Verified events are always acknowledged with 200; processing errors are
// logged and stored on the event row, there is no retry.
func (h *Handler) StripeWebhook(c *gin.Context) {
	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := h.verifier.ConstructEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		log.Printf("[webhook] signature verification failed err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	process, err := billing.BeginEvent(h.db, event.ID, string(event.Type))
	if err != nil {
		log.Printf("[webhook] dedup lookup failed event=%s err=%v", event.ID, err)
		process = true
	}
	if !process {
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		return
	}

	outcome, err := h.dispatch(c.Request.Context(), event)
	var perr payloadError
	if errors.As(err, &perr) {
		_ = billing.FinishEvent(h.db, event.ID, "", perr)
		log.Printf("[webhook] malformed payload event=%s type=%s err=%v", event.ID, event.Type, perr.err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse event payload"})
		return
	}
	if err != nil {
		log.Printf("[webhook] processing failed event=%s type=%s err=%v", event.ID, event.Type, err)
	} else {
		log.Printf("[webhook] event=%s type=%s outcome=%s", event.ID, event.Type, outcome)
	}
	if ferr := billing.FinishEvent(h.db, event.ID, outcome, err); ferr != nil {
		log.Printf("[webhook] store outcome failed event=%s err=%v", event.ID, ferr)
	}

	status := string(outcome)
	if err != nil {
		status = "failed"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *Handler) dispatch(ctx context.Context, event stripe.Event) (billing.Outcome, error) {
	eventAt := time.Unix(event.Created, 0).UTC()

	switch event.Type {
	case "checkout.session.completed":
		return h.checkoutCompleted(ctx, event, eventAt)
	case "invoice.payment_succeeded":
		return h.paymentSucceeded(ctx, event, eventAt)
	case "invoice.payment_failed":
		return h.paymentFailed(ctx, event, eventAt)
	case "customer.subscription.updated", "customer.subscription.deleted":
		return h.subscriptionChanged(ctx, event, eventAt)
	default:
		return billing.OutcomeIgnored, nil
	}
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
