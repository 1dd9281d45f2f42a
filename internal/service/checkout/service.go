// Package checkout drives the multi-step checkout state machine. Sessions
// are ephemeral: held in process memory, never persisted, and discarded on
// completion or abandonment. The working set is frozen at session start so
// concurrent basket edits cannot invalidate an in-progress checkout.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/notify"
	basketsvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/basket"
	"github.com/google/uuid"
)

// Source selects where the session's working set comes from. Fixed at Start
// for the lifetime of the session.
type Source string

const (
	SourceCart  Source = "cart"
	SourceQuote Source = "quote"
)

// Step is the current state machine position. Transitions are forward-only
// except the single review -> address back edge.
type Step string

const (
	StepAddress Step = "address"
	StepReview  Step = "review"
	StepPayment Step = "payment"
)

var (
	// ErrNoActiveCart rejects a cart-source session with no basket rows;
	// terminal, the caller redirects to the cart view.
	ErrNoActiveCart = errors.New("no active cart")
	// ErrQuoteNotEligible rejects a quote-source session whose quote is not
	// approved; terminal, the caller redirects to the quote detail view.
	ErrQuoteNotEligible = errors.New("quote is not eligible for checkout")
	ErrSessionNotFound  = errors.New("checkout session not found")
	// ErrInvalidTransition blocks any step change the machine does not
	// define.
	ErrInvalidTransition = errors.New("invalid checkout transition")
	// ErrAddressIncomplete blocks the address -> review transition until
	// the selection guard passes.
	ErrAddressIncomplete = errors.New("address selection incomplete")
	// ErrTermsNotAccepted blocks order placement on the review step.
	ErrTermsNotAccepted = errors.New("terms must be accepted")
)

// Summary is the frozen pricing summary displayed through the session.
type Summary struct {
	Rows          int    `json:"rows"`
	ItemCount     int    `json:"itemCount"`
	SubtotalCents int64  `json:"subtotalCents"`
	Currency      string `json:"currency"`
}

// Session is one in-flight checkout.
type Session struct {
	ID        string              `json:"id"`
	AccountID string              `json:"accountId"`
	Source    Source              `json:"source"`
	Step      Step                `json:"step"`
	QuoteID   string              `json:"quoteId,omitempty"`
	Items     []domain.BasketItem `json:"items"`
	Summary   Summary             `json:"summary"`

	Addresses         []domain.Address `json:"addresses"`
	ShippingAddressID string           `json:"shippingAddressId,omitempty"`
	BillingAddressID  string           `json:"billingAddressId,omitempty"`
	UseSameAddress    bool             `json:"useSameAddress"`

	TermsAccepted bool      `json:"termsAccepted"`
	OrderID       string    `json:"orderId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// CanAdvanceFromAddress is the pure guard for the address -> review
// transition: a shipping selection is required, and a billing selection too
// unless billing reuses shipping.
func CanAdvanceFromAddress(s *Session) bool {
	if s.ShippingAddressID == "" {
		return false
	}
	if !s.UseSameAddress && s.BillingAddressID == "" {
		return false
	}
	return true
}

// EffectiveBillingAddressID resolves the billing selection, defaulting to
// shipping when UseSameAddress is set.
func (s *Session) EffectiveBillingAddressID() string {
	if s.UseSameAddress {
		return s.ShippingAddressID
	}
	return s.BillingAddressID
}

type basketSource interface {
	Get(ctx context.Context, owner basketsvc.Owner) (domain.Basket, error)
	Clear(ctx context.Context, owner basketsvc.Owner) error
}

type quoteSource interface {
	Get(ctx context.Context, accountID, id string) (*domain.Quote, error)
}

type addressSource interface {
	ListByAccount(ctx context.Context, accountID string) ([]domain.Address, error)
	GetByID(ctx context.Context, accountID, id string) (*domain.Address, error)
}

type orderCreator interface {
	CreateFromCart(ctx context.Context, accountID string, items []domain.BasketItem, shippingAddressID, billingAddressID string) (*domain.Order, error)
	CreateFromQuote(ctx context.Context, accountID string, quote domain.Quote, shippingAddressID, billingAddressID string) (*domain.Order, error)
	RecordPaymentOutcome(ctx context.Context, orderID string, succeeded bool) error
}

type Service struct {
	baskets   basketSource
	quotes    quoteSource
	addresses addressSource
	orders    orderCreator
	notify    notify.Notifier
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func New(baskets basketSource, quotes quoteSource, addresses addressSource, orders orderCreator, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		baskets:   baskets,
		quotes:    quotes,
		addresses: addresses,
		orders:    orders,
		notify:    notifier,
		now:       func() time.Time { return time.Now().UTC() },
		sessions:  make(map[string]*Session),
	}
}

// Start opens a session for the given source. Precondition failures are
// terminal: no session is created.
func (s *Service) Start(ctx context.Context, account domain.Account, source Source, quoteID string) (Session, error) {
	sess := &Session{
		ID:             uuid.NewString(),
		AccountID:      account.ID,
		Source:         source,
		Step:           StepAddress,
		UseSameAddress: true,
		CreatedAt:      s.now(),
	}

	switch source {
	case SourceCart:
		b, err := s.baskets.Get(ctx, basketsvc.Owner{AccountID: account.ID})
		if err != nil {
			return Session{}, fmt.Errorf("load cart: %w", err)
		}
		if b.Rows() == 0 {
			return Session{}, ErrNoActiveCart
		}
		frozen := b.Clone()
		sess.Items = frozen.Items
		sess.Summary = summarize(frozen)
	case SourceQuote:
		if quoteID == "" {
			return Session{}, ErrQuoteNotEligible
		}
		q, err := s.quotes.Get(ctx, account.ID, quoteID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return Session{}, ErrQuoteNotEligible
			}
			return Session{}, fmt.Errorf("load quote: %w", err)
		}
		if !q.CheckoutEligible() {
			return Session{}, ErrQuoteNotEligible
		}
		sess.QuoteID = q.ID
		frozen := domain.Basket{Items: q.Items}.Clone()
		sess.Items = frozen.Items
		sess.Summary = summarize(frozen)
	default:
		return Session{}, fmt.Errorf("unknown checkout source %q", source)
	}

	addrs, err := s.addresses.ListByAccount(ctx, account.ID)
	if err != nil {
		return Session{}, fmt.Errorf("load addresses: %w", err)
	}
	sess.Addresses = addrs
	preselectAddresses(sess, account, addrs)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return *sess, nil
}

// preselectAddresses applies the account's defaults. Individual accounts
// carry a single profile address, which is selected outright.
func preselectAddresses(sess *Session, account domain.Account, addrs []domain.Address) {
	if account.Policy().Tier == domain.TierIndividual && len(addrs) == 1 {
		sess.ShippingAddressID = addrs[0].ID
		sess.UseSameAddress = true
		return
	}
	for _, a := range addrs {
		if a.DefaultShipping && sess.ShippingAddressID == "" {
			sess.ShippingAddressID = a.ID
		}
		if a.DefaultBilling && sess.BillingAddressID == "" {
			sess.BillingAddressID = a.ID
		}
	}
	if sess.BillingAddressID != "" && sess.BillingAddressID != sess.ShippingAddressID {
		sess.UseSameAddress = false
	}
}

func summarize(b domain.Basket) Summary {
	currency := ""
	if len(b.Items) > 0 {
		currency = b.Items[0].Currency
	}
	return Summary{
		Rows:          b.Rows(),
		ItemCount:     b.ItemCount(),
		SubtotalCents: b.SubtotalCents(),
		Currency:      currency,
	}
}

// Get returns a copy of the session.
func (s *Service) Get(sessionID, accountID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookupLocked(sessionID, accountID)
	if err != nil {
		return Session{}, err
	}
	return *sess, nil
}

// AddressSelection is the address-step input.
type AddressSelection struct {
	ShippingAddressID string `json:"shippingAddressId"`
	BillingAddressID  string `json:"billingAddressId"`
	UseSameAddress    bool   `json:"useSameAddress"`
}

// SelectAddresses records the address-step selections. Selections must
// reference addresses owned by the session's account.
func (s *Service) SelectAddresses(ctx context.Context, sessionID, accountID string, in AddressSelection) (Session, error) {
	if in.ShippingAddressID != "" {
		if _, err := s.addresses.GetByID(ctx, accountID, in.ShippingAddressID); err != nil {
			return Session{}, fmt.Errorf("shipping address: %w", err)
		}
	}
	if in.BillingAddressID != "" && !in.UseSameAddress {
		if _, err := s.addresses.GetByID(ctx, accountID, in.BillingAddressID); err != nil {
			return Session{}, fmt.Errorf("billing address: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookupLocked(sessionID, accountID)
	if err != nil {
		return Session{}, err
	}
	if sess.Step != StepAddress {
		return Session{}, fmt.Errorf("%w: addresses are selected on the address step", ErrInvalidTransition)
	}
	sess.ShippingAddressID = in.ShippingAddressID
	sess.BillingAddressID = in.BillingAddressID
	sess.UseSameAddress = in.UseSameAddress
	return *sess, nil
}

// Advance moves address -> review when the guard passes.
func (s *Service) Advance(sessionID, accountID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookupLocked(sessionID, accountID)
	if err != nil {
		return Session{}, err
	}
	if sess.Step != StepAddress {
		return Session{}, fmt.Errorf("%w: cannot advance from %s", ErrInvalidTransition, sess.Step)
	}
	if !CanAdvanceFromAddress(sess) {
		return Session{}, ErrAddressIncomplete
	}
	sess.Step = StepReview
	return *sess, nil
}

// Back moves review -> address, the machine's only backward edge.
func (s *Service) Back(sessionID, accountID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookupLocked(sessionID, accountID)
	if err != nil {
		return Session{}, err
	}
	if sess.Step != StepReview {
		return Session{}, fmt.Errorf("%w: cannot go back from %s", ErrInvalidTransition, sess.Step)
	}
	sess.Step = StepAddress
	sess.TermsAccepted = false
	return *sess, nil
}

// AcceptTerms records the review-step terms checkbox.
func (s *Service) AcceptTerms(sessionID, accountID string, accepted bool) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookupLocked(sessionID, accountID)
	if err != nil {
		return Session{}, err
	}
	if sess.Step != StepReview {
		return Session{}, fmt.Errorf("%w: terms are accepted on the review step", ErrInvalidTransition)
	}
	sess.TermsAccepted = accepted
	return *sess, nil
}

// PlaceOrder creates the order from the session's fixed source. Success
// advances to payment; failure leaves the session on review with all local
// state intact.
func (s *Service) PlaceOrder(ctx context.Context, sessionID, accountID string) (Session, error) {
	s.mu.Lock()
	sess, err := s.lookupLocked(sessionID, accountID)
	if err != nil {
		s.mu.Unlock()
		return Session{}, err
	}
	if sess.Step != StepReview {
		s.mu.Unlock()
		return Session{}, fmt.Errorf("%w: orders are placed on the review step", ErrInvalidTransition)
	}
	if !sess.TermsAccepted {
		s.mu.Unlock()
		return Session{}, ErrTermsNotAccepted
	}
	shipping := sess.ShippingAddressID
	billing := sess.EffectiveBillingAddressID()
	items := make([]domain.BasketItem, len(sess.Items))
	copy(items, sess.Items)
	source := sess.Source
	quoteID := sess.QuoteID
	s.mu.Unlock()

	var created *domain.Order
	switch source {
	case SourceQuote:
		q, qerr := s.quotes.Get(ctx, accountID, quoteID)
		if qerr != nil {
			err = fmt.Errorf("load quote: %w", qerr)
		} else {
			created, err = s.orders.CreateFromQuote(ctx, accountID, *q, shipping, billing)
		}
	default:
		created, err = s.orders.CreateFromCart(ctx, accountID, items, shipping, billing)
	}
	if err != nil {
		notify.Error(ctx, s.notify, accountID, "We couldn't place your order. Please review and try again.")
		return Session{}, fmt.Errorf("place order: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, lookupErr := s.lookupLocked(sessionID, accountID)
	if lookupErr != nil {
		return Session{}, lookupErr
	}
	sess.OrderID = created.ID
	sess.Step = StepPayment
	return *sess, nil
}

// PaymentOutcome is the external payment collaborator's callback payload.
type PaymentOutcome struct {
	Succeeded bool   `json:"succeeded"`
	Reference string `json:"reference,omitempty"`
}

// CompletePayment dispatches to the terminal route for the payment outcome
// and discards the session. A successful cart-source payment clears the
// originating basket.
func (s *Service) CompletePayment(ctx context.Context, sessionID, accountID string, outcome PaymentOutcome) (string, error) {
	s.mu.Lock()
	sess, err := s.lookupLocked(sessionID, accountID)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	if sess.Step != StepPayment {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: payment completes on the payment step", ErrInvalidTransition)
	}
	orderID := sess.OrderID
	source := sess.Source
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if err := s.orders.RecordPaymentOutcome(ctx, orderID, outcome.Succeeded); err != nil {
		return "", fmt.Errorf("record payment outcome: %w", err)
	}

	if !outcome.Succeeded {
		notify.Error(ctx, s.notify, accountID, "Your payment was not completed.")
		return "/checkout/failure", nil
	}

	if source == SourceCart {
		if err := s.baskets.Clear(ctx, basketsvc.Owner{AccountID: accountID}); err != nil {
			// The order is placed; a stale basket is an inconvenience, not
			// a failure of the checkout.
			notify.Error(ctx, s.notify, accountID, "Your order was placed, but your basket could not be cleared.")
		}
	}
	notify.Success(ctx, s.notify, accountID, "Payment received. Thank you for your order.")
	return "/checkout/success/" + orderID, nil
}

// Abandon discards a session. Unknown sessions are a no-op.
func (s *Service) Abandon(sessionID, accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok && sess.AccountID == accountID {
		delete(s.sessions, sessionID)
	}
}

func (s *Service) lookupLocked(sessionID, accountID string) (*Session, error) {
	sess, ok := s.sessions[sessionID]
	if !ok || sess.AccountID != accountID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}
