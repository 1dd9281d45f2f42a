package part

import (
	"context"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Part, error)
	GetByID(ctx context.Context, id string) (*domain.Part, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Part, error)
	Upsert(ctx context.Context, p domain.Part) (*domain.Part, error)
}
