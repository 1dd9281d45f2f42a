package quote

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

const quoteColumns = `id::text, account_id::text, status, reference, note, items, total_cents, currency, created_at, decided_at`

func (r *postgresRepo) Create(ctx context.Context, q domain.Quote) (*domain.Quote, error) {
	items := q.Items
	if items == nil {
		items = []domain.BasketItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	const query = `
INSERT INTO quotes (account_id, status, reference, note, items, total_cents, currency)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + quoteColumns + `
`
	return scanQuote(r.pool.QueryRow(ctx, query,
		q.AccountID, domain.QuoteStatusPending, q.Reference, q.Note, itemsJSON, q.TotalCents, q.Currency,
	))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Quote, error) {
	const query = `
SELECT ` + quoteColumns + `
FROM quotes
WHERE id = $1
`
	q, err := scanQuote(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return q, nil
}

func (r *postgresRepo) ListByAccount(ctx context.Context, accountID string) ([]domain.Quote, error) {
	const query = `
SELECT ` + quoteColumns + `
FROM quotes
WHERE account_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) SetStatus(ctx context.Context, id, status string) (*domain.Quote, error) {
	const query = `
UPDATE quotes
SET status = $2,
    decided_at = CASE WHEN $2 IN ('approved', 'rejected') THEN now() ELSE decided_at END
WHERE id = $1
RETURNING ` + quoteColumns + `
`
	q, err := scanQuote(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return q, nil
}

func scanQuote(row pgx.Row) (*domain.Quote, error) {
	var q domain.Quote
	var itemsJSON []byte
	if err := row.Scan(
		&q.ID,
		&q.AccountID,
		&q.Status,
		&q.Reference,
		&q.Note,
		&itemsJSON,
		&q.TotalCents,
		&q.Currency,
		&q.CreatedAt,
		&q.DecidedAt,
	); err != nil {
		return nil, err
	}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &q.Items); err != nil {
			return nil, err
		}
	}
	return &q, nil
}
