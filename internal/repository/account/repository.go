package account

import (
	"context"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, a domain.Account) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	SetVerified(ctx context.Context, id string, verified bool) (*domain.Account, error)
}
