package address

import (
	"context"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
)

type Repository interface {
	ListByAccount(ctx context.Context, accountID string) ([]domain.Address, error)
	GetByID(ctx context.Context, accountID, id string) (*domain.Address, error)
	Create(ctx context.Context, a domain.Address) (*domain.Address, error)
}
