package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	basketsvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/basket"
	checkoutsvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/checkout"
	identitysvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/identity"
	quotesvc "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/service/quote"
	"github.com/gin-gonic/gin"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubIdentity struct {
	account   *domain.Account
	loginErr  error
	lookupErr error
}

func (s *stubIdentity) Signup(_ context.Context, _ identitysvc.SignupInput) (*domain.Account, error) {
	return s.account, nil
}

func (s *stubIdentity) Login(_ context.Context, _, _ string) (*domain.Account, string, string, error) {
	return s.account, "access", "refresh", s.loginErr
}

func (s *stubIdentity) LookupByToken(_ context.Context, _ string) (*domain.Account, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	return s.account, nil
}

func (s *stubIdentity) Verify(_ context.Context, _ string) (*domain.Account, error) {
	return s.account, nil
}

func (s *stubIdentity) AccessTTLSeconds() int { return 3600 }

type stubBasketSvc struct {
	basket domain.Basket
	addErr error
	merged int
}

func (s *stubBasketSvc) Get(_ context.Context, _ basketsvc.Owner) (domain.Basket, error) {
	return s.basket, nil
}

func (s *stubBasketSvc) AddItem(_ context.Context, _ basketsvc.Owner, _ domain.Policy, _ basketsvc.AddItemInput) (domain.Basket, error) {
	if s.addErr != nil {
		return domain.Basket{}, s.addErr
	}
	return s.basket, nil
}

func (s *stubBasketSvc) RemoveItem(_ context.Context, _ basketsvc.Owner, _ string) (domain.Basket, error) {
	return s.basket, nil
}

func (s *stubBasketSvc) UpdateQuantity(_ context.Context, _ basketsvc.Owner, _ string, _ int) (domain.Basket, error) {
	return s.basket, nil
}

func (s *stubBasketSvc) ToggleBulkPricing(_ context.Context, _ basketsvc.Owner, _ string) (domain.Basket, error) {
	return s.basket, nil
}

func (s *stubBasketSvc) Clear(_ context.Context, _ basketsvc.Owner) error { return nil }

func (s *stubBasketSvc) MergeOnSignIn(_ context.Context, _ string, _ domain.Account) (int, error) {
	return s.merged, nil
}

type stubCheckoutSvc struct {
	startErr error
	session  checkoutsvc.Session
}

func (s *stubCheckoutSvc) Start(_ context.Context, _ domain.Account, _ checkoutsvc.Source, _ string) (checkoutsvc.Session, error) {
	return s.session, s.startErr
}

func (s *stubCheckoutSvc) Get(_, _ string) (checkoutsvc.Session, error) { return s.session, nil }

func (s *stubCheckoutSvc) SelectAddresses(_ context.Context, _, _ string, _ checkoutsvc.AddressSelection) (checkoutsvc.Session, error) {
	return s.session, nil
}

func (s *stubCheckoutSvc) Advance(_, _ string) (checkoutsvc.Session, error) { return s.session, nil }

func (s *stubCheckoutSvc) Back(_, _ string) (checkoutsvc.Session, error) { return s.session, nil }

func (s *stubCheckoutSvc) AcceptTerms(_, _ string, _ bool) (checkoutsvc.Session, error) {
	return s.session, nil
}

func (s *stubCheckoutSvc) PlaceOrder(_ context.Context, _, _ string) (checkoutsvc.Session, error) {
	return s.session, nil
}

func (s *stubCheckoutSvc) CompletePayment(_ context.Context, _, _ string, _ checkoutsvc.PaymentOutcome) (string, error) {
	return "/checkout/success/order-1", nil
}

func (s *stubCheckoutSvc) Abandon(_, _ string) {}

type stubQuoteSvc struct {
	quote *domain.Quote
}

func (s *stubQuoteSvc) Submit(_ context.Context, _ domain.Account, _ domain.Basket, _ quotesvc.SubmitInput) (*domain.Quote, error) {
	return s.quote, nil
}

func (s *stubQuoteSvc) Get(_ context.Context, _, _ string) (*domain.Quote, error) {
	return s.quote, nil
}

func (s *stubQuoteSvc) List(_ context.Context, _ string) ([]domain.Quote, error) { return nil, nil }

func (s *stubQuoteSvc) Decide(_ context.Context, _ string, _ bool) (*domain.Quote, error) {
	return s.quote, nil
}

type stubOrderSvc struct{}

func (stubOrderSvc) Get(_ context.Context, _, _ string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}

func (stubOrderSvc) List(_ context.Context, _ string) ([]domain.Order, error) { return nil, nil }

type stubPartSvc struct{}

func (stubPartSvc) List(_ context.Context) ([]domain.Part, error) { return nil, nil }

func (stubPartSvc) Get(_ context.Context, _ string) (*domain.Part, error) {
	return nil, domain.ErrNotFound
}

type stubCategoryRepo struct{}

func (stubCategoryRepo) List(_ context.Context) ([]domain.Category, error) { return nil, nil }

type stubAddressRepo struct{}

func (stubAddressRepo) ListByAccount(_ context.Context, _ string) ([]domain.Address, error) {
	return nil, nil
}

func (stubAddressRepo) Create(_ context.Context, a domain.Address) (*domain.Address, error) {
	a.ID = "addr-1"
	return &a, nil
}

func testDeps() Deps {
	return Deps{
		IdentitySvc:  &stubIdentity{account: &domain.Account{ID: "acc-1", Classification: domain.ClassificationBusiness}},
		BasketSvc:    &stubBasketSvc{},
		CheckoutSvc:  &stubCheckoutSvc{},
		QuoteSvc:     &stubQuoteSvc{quote: &domain.Quote{ID: "q-1"}},
		OrderSvc:     stubOrderSvc{},
		PartSvc:      stubPartSvc{},
		CategoryRepo: stubCategoryRepo{},
		AddressRepo:  stubAddressRepo{},
		AdminToken:   "admin-secret",
	}
}

func testRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func TestHealthz(t *testing.T) {
	router := testRouter(t, testDeps())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBasketRequiresOwner(t *testing.T) {
	router := testRouter(t, testDeps())

	req := httptest.NewRequest(http.MethodGet, "/basket", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without identity, got %d", rec.Code)
	}
}

func TestBasketWithDeviceHeader(t *testing.T) {
	router := testRouter(t, testDeps())

	req := httptest.NewRequest(http.MethodGet, "/basket", nil)
	req.Header.Set(deviceHeader, "dev-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"maxItems":1`) {
		t.Fatalf("expected guest policy in response, got %s", rec.Body.String())
	}
}

func TestAddItemCapacityExceeded(t *testing.T) {
	deps := testDeps()
	deps.BasketSvc = &stubBasketSvc{addErr: basketsvc.ErrBasketLimit}
	router := testRouter(t, deps)

	req := httptest.NewRequest(http.MethodPost, "/basket/items", strings.NewReader(`{"partId":"part-a","quantity":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(deviceHeader, "dev-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCheckoutRequiresAccount(t *testing.T) {
	router := testRouter(t, testDeps())

	req := httptest.NewRequest(http.MethodPost, "/checkout/sessions", strings.NewReader(`{"source":"cart"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestCheckoutStartEmptyCartRedirect(t *testing.T) {
	deps := testDeps()
	deps.CheckoutSvc = &stubCheckoutSvc{startErr: checkoutsvc.ErrNoActiveCart}
	router := testRouter(t, deps)

	req := httptest.NewRequest(http.MethodPost, "/checkout/sessions", strings.NewReader(`{"source":"cart"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"redirectTo":"/cart"`) {
		t.Fatalf("expected redirect hint, got %s", rec.Body.String())
	}
}

func TestLoginMergesGuestBasket(t *testing.T) {
	deps := testDeps()
	deps.BasketSvc = &stubBasketSvc{merged: 2}
	router := testRouter(t, deps)

	body := `{"email":"buyer@example.test","password":"Password1","deviceId":"dev-1"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"mergedItems":2`) {
		t.Fatalf("expected merged count, got %s", rec.Body.String())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	deps := testDeps()
	deps.IdentitySvc = &stubIdentity{loginErr: identitysvc.ErrInvalidCredentials}
	router := testRouter(t, deps)

	body := `{"email":"buyer@example.test","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestInvalidBearerToken(t *testing.T) {
	deps := testDeps()
	deps.IdentitySvc = &stubIdentity{lookupErr: identitysvc.ErrInvalidToken}
	router := testRouter(t, deps)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdminRequiresToken(t *testing.T) {
	router := testRouter(t, testDeps())

	req := httptest.NewRequest(http.MethodPost, "/admin/quotes/q-1/decision", strings.NewReader(`{"approve":true}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without admin token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/quotes/q-1/decision", strings.NewReader(`{"approve":true}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Token", "admin-secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with admin token, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestOrderNotFound(t *testing.T) {
	router := testRouter(t, testDeps())

	req := httptest.NewRequest(http.MethodGet, "/orders/unknown", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
