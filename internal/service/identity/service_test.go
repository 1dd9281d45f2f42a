package identity

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	tokenrepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/token"
)

type stubAccountRepo struct {
	byEmail map[string]domain.Account
	byID    map[string]domain.Account
	nextID  int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byEmail: make(map[string]domain.Account), byID: make(map[string]domain.Account)}
}

func (r *stubAccountRepo) Create(_ context.Context, a domain.Account) (*domain.Account, error) {
	if _, ok := r.byEmail[a.Email]; ok {
		return nil, domain.ErrAlreadyExists
	}
	r.nextID++
	a.ID = "acc-" + strconv.Itoa(r.nextID)
	r.byEmail[a.Email] = a
	r.byID[a.ID] = a
	return &a, nil
}

func (r *stubAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	a, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *stubAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *stubAccountRepo) SetVerified(_ context.Context, id string, verified bool) (*domain.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	a.Verified = verified
	r.byID[id] = a
	r.byEmail[a.Email] = a
	return &a, nil
}

type stubTokenRepo struct {
	tokens map[string]tokenrepo.Token
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{tokens: make(map[string]tokenrepo.Token)}
}

func (r *stubTokenRepo) Create(_ context.Context, t tokenrepo.Token) error {
	if _, ok := r.tokens[t.Token]; ok {
		return domain.ErrAlreadyExists
	}
	r.tokens[t.Token] = t
	return nil
}

func (r *stubTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r *stubTokenRepo) Delete(_ context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

func TestSignupValidation(t *testing.T) {
	svc := New(newStubAccountRepo(), newStubTokenRepo())
	ctx := context.Background()

	cases := []struct {
		name string
		in   SignupInput
	}{
		{"missing email", SignupInput{Password: "Password1"}},
		{"short password", SignupInput{Email: "a@b.test", Password: "Pw1"}},
		{"weak password", SignupInput{Email: "a@b.test", Password: "passwordonly"}},
		{"unknown classification", SignupInput{Email: "a@b.test", Password: "Password1", Classification: "wholesale"}},
		{"business without company", SignupInput{Email: "a@b.test", Password: "Password1", Classification: domain.ClassificationBusiness}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Signup(ctx, tc.in); err == nil {
				t.Fatal("expected signup to fail")
			}
		})
	}
}

func TestSignupDefaultsToIndividual(t *testing.T) {
	svc := New(newStubAccountRepo(), newStubTokenRepo())

	a, err := svc.Signup(context.Background(), SignupInput{Email: "Buyer@Example.test", Password: "Password1"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if a.Classification != domain.ClassificationIndividual {
		t.Fatalf("expected individual classification, got %s", a.Classification)
	}
	if a.Email != "buyer@example.test" {
		t.Fatalf("expected lowercased email, got %s", a.Email)
	}
	if a.Verified {
		t.Fatal("new accounts must start unverified")
	}
}

func TestLoginAndTokenLookup(t *testing.T) {
	svc := New(newStubAccountRepo(), newStubTokenRepo())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "buyer@example.test", Password: "Password1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, _, _, err := svc.Login(ctx, "buyer@example.test", "wrongPassword1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "nobody@example.test", "Password1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	a, access, refresh, err := svc.Login(ctx, "buyer@example.test", "Password1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if access == "" || refresh == "" || access == refresh {
		t.Fatal("expected distinct access and refresh tokens")
	}

	found, err := svc.LookupByToken(ctx, access)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found.ID != a.ID {
		t.Fatalf("expected account %s, got %s", a.ID, found.ID)
	}

	// Refresh tokens do not authenticate requests.
	if _, err := svc.LookupByToken(ctx, refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for refresh token, got %v", err)
	}
}

func TestVerifyBusinessOnly(t *testing.T) {
	svc := New(newStubAccountRepo(), newStubTokenRepo())
	ctx := context.Background()

	individual, err := svc.Signup(ctx, SignupInput{Email: "solo@example.test", Password: "Password1"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Verify(ctx, individual.ID); err == nil {
		t.Fatal("expected verification of an individual account to fail")
	}

	business, err := svc.Signup(ctx, SignupInput{
		Email: "ops@lift.test", Password: "Password1",
		Classification: domain.ClassificationBusiness, CompanyName: "Lift GmbH",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	verified, err := svc.Verify(ctx, business.ID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !verified.Verified {
		t.Fatal("expected verified flag set")
	}
	if verified.Policy().Tier != domain.TierVerifiedBusiness {
		t.Fatalf("expected verifiedBusiness tier, got %s", verified.Policy().Tier)
	}
}
