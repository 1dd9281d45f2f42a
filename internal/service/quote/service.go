// Package quote handles the quote request workflow: a basket snapshot is
// submitted for review, an operator approves or rejects it, and an approved
// quote becomes checkout-eligible until it is ordered.
package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/notify"
	quoterepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/quote"
)

var (
	ErrEmptyBasket = errors.New("basket is empty")
	// ErrAlreadyDecided is returned when deciding a quote that is no longer
	// pending.
	ErrAlreadyDecided = errors.New("quote already decided")
)

type Service struct {
	repo   quoterepo.Repository
	notify notify.Notifier
}

func New(repo quoterepo.Repository, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{repo: repo, notify: notifier}
}

// SubmitInput carries the optional customer-facing fields of a request.
type SubmitInput struct {
	Reference string `json:"reference"`
	Note      string `json:"note"`
}

// Submit freezes the account's current basket into a pending quote.
func (s *Service) Submit(ctx context.Context, account domain.Account, basket domain.Basket, in SubmitInput) (*domain.Quote, error) {
	if basket.Rows() == 0 {
		return nil, ErrEmptyBasket
	}
	currency := basket.Items[0].Currency
	frozen := basket.Clone()
	q, err := s.repo.Create(ctx, domain.Quote{
		AccountID:  account.ID,
		Reference:  in.Reference,
		Note:       in.Note,
		Items:      frozen.Items,
		TotalCents: basket.SubtotalCents(),
		Currency:   currency,
	})
	if err != nil {
		return nil, err
	}
	notify.Success(ctx, s.notify, account.ID, "Your quote request was submitted for review.")
	return q, nil
}

// Get returns a quote owned by the account.
func (s *Service) Get(ctx context.Context, accountID, id string) (*domain.Quote, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.AccountID != accountID {
		return nil, domain.ErrNotFound
	}
	return q, nil
}

// List returns the account's quotes, newest first.
func (s *Service) List(ctx context.Context, accountID string) ([]domain.Quote, error) {
	return s.repo.ListByAccount(ctx, accountID)
}

// Decide approves or rejects a pending quote (operator action).
func (s *Service) Decide(ctx context.Context, id string, approve bool) (*domain.Quote, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != domain.QuoteStatusPending {
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadyDecided, q.Status)
	}
	status := domain.QuoteStatusRejected
	message := "Your quote request was declined."
	if approve {
		status = domain.QuoteStatusApproved
		message = "Your quote was approved and is ready for checkout."
	}
	decided, err := s.repo.SetStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	notify.Info(ctx, s.notify, q.AccountID, message)
	return decided, nil
}

// MarkOrdered transitions an approved quote to its terminal ordered status.
func (s *Service) MarkOrdered(ctx context.Context, id string) (*domain.Quote, error) {
	q, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.CheckoutEligible() {
		return nil, fmt.Errorf("quote %s is not approved", id)
	}
	return s.repo.SetStatus(ctx, id, domain.QuoteStatusOrdered)
}
