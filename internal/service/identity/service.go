// Package identity is the storefront's identity provider boundary: signup,
// login, token lookup and the business verification flip. Raw account
// metadata (classification + verified) leaves this package only through
// domain.Account; capacity tiers are derived via domain.ResolveTier at the
// point of use, never stored.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	accountrepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/account"
	tokenrepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/token"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates the provided token could not be validated.
	ErrInvalidToken = errors.New("invalid token")
)

// Service handles account signup/login flows.
type Service struct {
	repo        accountrepo.Repository
	tokens      *tokenManager
	accessTTL   time.Duration
	refreshTTL  time.Duration
	passwordMin int
}

// New creates a Service with sane defaults.
func New(repo accountrepo.Repository, tokens tokenrepo.Repository) *Service {
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens),
		accessTTL:   48 * time.Hour,
		refreshTTL:  30 * 24 * time.Hour,
		passwordMin: 8,
	}
}

// SignupInput captures fields expected by the signup endpoint.
type SignupInput struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	CompanyName    string `json:"companyName"`
	Classification string `json:"classification"`
}

// Signup registers a new account. Classification defaults to individual;
// business verification always starts false and is flipped by an operator.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.Account, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, errors.New("email required")
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, err
	}

	classification := strings.TrimSpace(in.Classification)
	switch classification {
	case "":
		classification = domain.ClassificationIndividual
	case domain.ClassificationIndividual, domain.ClassificationBusiness:
	default:
		return nil, fmt.Errorf("unknown classification %q", classification)
	}
	if classification == domain.ClassificationBusiness && strings.TrimSpace(in.CompanyName) == "" {
		return nil, errors.New("company name required for business accounts")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, domain.Account{
		Email:          email,
		PasswordHash:   string(hashed),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		CompanyName:    strings.TrimSpace(in.CompanyName),
		Classification: classification,
		Verified:       false,
	})
}

// Login validates credentials and returns issued tokens plus the account.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Account, string, string, error) {
	password = strings.TrimSpace(password)
	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	access, err := s.tokens.Issue(ctx, a.ID, "access", s.accessTTL)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := s.tokens.Issue(ctx, a.ID, "refresh", s.refreshTTL)
	if err != nil {
		return nil, "", "", err
	}
	return a, access, refresh, nil
}

// LookupByToken returns the account bound to a valid access token.
func (s *Service) LookupByToken(ctx context.Context, token string) (*domain.Account, error) {
	meta, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, ErrInvalidToken
	}
	a, err := s.repo.GetByID(ctx, meta.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return a, nil
}

// Verify flips the verified flag on a business account.
func (s *Service) Verify(ctx context.Context, accountID string) (*domain.Account, error) {
	a, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if a.Classification != domain.ClassificationBusiness {
		return nil, errors.New("only business accounts can be verified")
	}
	return s.repo.SetVerified(ctx, accountID, true)
}

// AccessTTLSeconds exposes the access token lifetime in seconds.
func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return fmt.Errorf("password must be at least %d characters", min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
