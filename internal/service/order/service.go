// Package order owns order creation. Cart-backed and quote-backed creation
// are distinct operations with the same contract: both take shipping and
// billing address IDs and return the created order or a failure reason.
package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	orderrepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/order"
	"github.com/google/uuid"
)

var ErrQuoteNotApproved = errors.New("quote is not approved")

type quoteMarker interface {
	MarkOrdered(ctx context.Context, id string) (*domain.Quote, error)
}

type Service struct {
	repo   orderrepo.Repository
	quotes quoteMarker
}

func New(repo orderrepo.Repository, quotes quoteMarker) *Service {
	return &Service{repo: repo, quotes: quotes}
}

// CreateFromCart places an order backed by a cart snapshot.
func (s *Service) CreateFromCart(ctx context.Context, accountID string, items []domain.BasketItem, shippingAddressID, billingAddressID string) (*domain.Order, error) {
	return s.create(ctx, domain.Order{
		AccountID:         accountID,
		Source:            domain.OrderSourceCart,
		ShippingAddressID: shippingAddressID,
		BillingAddressID:  billingAddressID,
		Items:             items,
	})
}

// CreateFromQuote places an order backed by an approved quote and moves the
// quote to its ordered status.
func (s *Service) CreateFromQuote(ctx context.Context, accountID string, quote domain.Quote, shippingAddressID, billingAddressID string) (*domain.Order, error) {
	if !quote.CheckoutEligible() {
		return nil, fmt.Errorf("%w: status is %s", ErrQuoteNotApproved, quote.Status)
	}
	quoteID := quote.ID
	o, err := s.create(ctx, domain.Order{
		AccountID:         accountID,
		Source:            domain.OrderSourceQuote,
		QuoteID:           &quoteID,
		ShippingAddressID: shippingAddressID,
		BillingAddressID:  billingAddressID,
		Items:             quote.Items,
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.quotes.MarkOrdered(ctx, quote.ID); err != nil {
		return nil, fmt.Errorf("mark quote ordered: %w", err)
	}
	return o, nil
}

func (s *Service) create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	if len(o.Items) == 0 {
		return nil, errors.New("order has no items")
	}
	if o.ShippingAddressID == "" || o.BillingAddressID == "" {
		return nil, errors.New("shipping and billing addresses required")
	}
	o.ID = uuid.NewString()
	o.Status = domain.OrderStatusPendingPayment
	o.Currency = o.Items[0].Currency
	var total int64
	for _, it := range o.Items {
		total += it.UnitPriceCents * int64(it.Quantity)
	}
	o.TotalCents = total
	return s.repo.Create(ctx, o)
}

// Get returns an order owned by the account.
func (s *Service) Get(ctx context.Context, accountID, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, accountID, id)
}

// List returns the account's orders, newest first.
func (s *Service) List(ctx context.Context, accountID string) ([]domain.Order, error) {
	return s.repo.ListByAccount(ctx, accountID)
}

// RecordPaymentOutcome stamps the order's terminal payment status.
func (s *Service) RecordPaymentOutcome(ctx context.Context, orderID string, succeeded bool) error {
	status := domain.OrderStatusPaymentFailed
	if succeeded {
		status = domain.OrderStatusPaid
	}
	return s.repo.SetStatus(ctx, orderID, status)
}
