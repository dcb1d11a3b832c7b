package stripe

import "strings"

// NormalizeStripeStatus folds provider subscription statuses into the set the ledger understands.
func NormalizeStripeStatus(s string) string {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return "none"
	case "active", "trialing":
		return s
	case "past_due", "unpaid":
		return "past_due"
	case "canceled", "incomplete_expired":
		return "canceled"
	default:
		return s
	}
}
