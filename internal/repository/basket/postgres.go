package basket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres returns the identified-mode backend: one row per account,
// items stored as a JSONB snapshot.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Load(ctx context.Context, accountID string) (*domain.Basket, error) {
	const q = `
SELECT items, updated_at
FROM baskets
WHERE account_id = $1
`
	var itemsJSON []byte
	var b domain.Basket
	if err := r.pool.QueryRow(ctx, q, accountID).Scan(&itemsJSON, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &b.Items); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

func (r *postgresRepo) Save(ctx context.Context, accountID string, b domain.Basket) error {
	items := b.Items
	if items == nil {
		items = []domain.BasketItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO baskets (account_id, items, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (account_id) DO UPDATE
SET items = EXCLUDED.items,
    updated_at = EXCLUDED.updated_at
`
	_, err = r.pool.Exec(ctx, q, accountID, itemsJSON, b.UpdatedAt)
	return err
}

func (r *postgresRepo) Clear(ctx context.Context, accountID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM baskets WHERE account_id = $1`, accountID)
	return err
}
