package part

import (
	"context"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	partrepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/part"
)

type Service struct {
	repo partrepo.Repository
}

func New(repo partrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Part, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Part, error) {
	return s.repo.GetByID(ctx, id)
}
