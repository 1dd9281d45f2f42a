package order

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

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const orderColumns = `id::text, account_id::text, source, quote_id::text, shipping_address_id::text, billing_address_id::text, items, total_cents, currency, status, created_at`

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	items := o.Items
	if items == nil {
		items = []domain.BasketItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO orders (id, account_id, source, quote_id, shipping_address_id, billing_address_id, items, total_cents, currency, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + orderColumns + `
`
	return scanOrder(r.pool.QueryRow(ctx, q,
		o.ID,
		o.AccountID,
		o.Source,
		o.QuoteID,
		o.ShippingAddressID,
		o.BillingAddressID,
		itemsJSON,
		o.TotalCents,
		o.Currency,
		o.Status,
	))
}

func (r *postgresRepo) GetByID(ctx context.Context, accountID, id string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE account_id = $1 AND id = $2
`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, accountID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByAccount(ctx context.Context, accountID string) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE account_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) SetStatus(ctx context.Context, id, status string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var itemsJSON []byte
	var quoteID *string
	if err := row.Scan(
		&o.ID,
		&o.AccountID,
		&o.Source,
		&quoteID,
		&o.ShippingAddressID,
		&o.BillingAddressID,
		&itemsJSON,
		&o.TotalCents,
		&o.Currency,
		&o.Status,
		&o.CreatedAt,
	); err != nil {
		return nil, err
	}
	o.QuoteID = quoteID
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, err
		}
	}
	return &o, nil
}
