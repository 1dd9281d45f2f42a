package domain

import "time"

// Order sources mirror the two checkout entry points.
const (
	OrderSourceCart  = "cart"
	OrderSourceQuote = "quote"
)

const (
	OrderStatusPendingPayment = "pendingPayment"
	OrderStatusPaid           = "paid"
	OrderStatusPaymentFailed  = "paymentFailed"
)

// Order is a placed order with its frozen line items.
type Order struct {
	ID                string       `json:"id"`
	AccountID         string       `json:"accountId"`
	Source            string       `json:"source"`
	QuoteID           *string      `json:"quoteId,omitempty"`
	ShippingAddressID string       `json:"shippingAddressId"`
	BillingAddressID  string       `json:"billingAddressId"`
	Items             []BasketItem `json:"items"`
	TotalCents        int64        `json:"totalCents"`
	Currency          string       `json:"currency"`
	Status            string       `json:"status"`
	CreatedAt         time.Time    `json:"createdAt"`
}
