package category

import (
	"context"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Category, error)
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}
