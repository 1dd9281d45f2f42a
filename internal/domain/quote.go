package domain

import "time"

// Quote statuses. Only approved quotes are checkout-eligible; ordered is the
// terminal status after a quote-backed order is created.
const (
	QuoteStatusPending  = "pending"
	QuoteStatusApproved = "approved"
	QuoteStatusRejected = "rejected"
	QuoteStatusOrdered  = "ordered"
)

// Quote is a basket snapshot submitted for review and pricing.
type Quote struct {
	ID         string       `json:"id"`
	AccountID  string       `json:"accountId"`
	Status     string       `json:"status"`
	Reference  string       `json:"reference,omitempty"`
	Note       string       `json:"note,omitempty"`
	Items      []BasketItem `json:"items"`
	TotalCents int64        `json:"totalCents"`
	Currency   string       `json:"currency"`
	CreatedAt  time.Time    `json:"createdAt"`
	DecidedAt  *time.Time   `json:"decidedAt,omitempty"`
}

// CheckoutEligible reports whether the quote can enter checkout.
func (q Quote) CheckoutEligible() bool {
	return q.Status == QuoteStatusApproved
}
