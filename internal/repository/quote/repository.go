package quote

import (
	"context"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, q domain.Quote) (*domain.Quote, error)
	GetByID(ctx context.Context, id string) (*domain.Quote, error)
	ListByAccount(ctx context.Context, accountID string) ([]domain.Quote, error)
	// SetStatus transitions a quote and stamps the decision time for
	// approved/rejected.
	SetStatus(ctx context.Context, id, status string) (*domain.Quote, error)
}
