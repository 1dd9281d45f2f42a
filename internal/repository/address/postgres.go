package address

import (
	"context"
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

const addressColumns = `id::text, account_id::text, label, first_name, last_name, company, street_name, city, postal_code, country, phone, default_shipping, default_billing, created_at`

func (r *postgresRepo) ListByAccount(ctx context.Context, accountID string) ([]domain.Address, error) {
	const q = `
SELECT ` + addressColumns + `
FROM addresses
WHERE account_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, accountID, id string) (*domain.Address, error) {
	const q = `
SELECT ` + addressColumns + `
FROM addresses
WHERE account_id = $1 AND id = $2
`
	a, err := scanAddress(r.pool.QueryRow(ctx, q, accountID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *postgresRepo) Create(ctx context.Context, a domain.Address) (*domain.Address, error) {
	const q = `
INSERT INTO addresses (account_id, label, first_name, last_name, company, street_name, city, postal_code, country, phone, default_shipping, default_billing)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + addressColumns + `
`
	return scanAddress(r.pool.QueryRow(ctx, q,
		a.AccountID,
		a.Label,
		a.FirstName,
		a.LastName,
		a.Company,
		a.StreetName,
		a.City,
		a.PostalCode,
		a.Country,
		a.Phone,
		a.DefaultShipping,
		a.DefaultBilling,
	))
}

func scanAddress(row pgx.Row) (*domain.Address, error) {
	var a domain.Address
	if err := row.Scan(
		&a.ID,
		&a.AccountID,
		&a.Label,
		&a.FirstName,
		&a.LastName,
		&a.Company,
		&a.StreetName,
		&a.City,
		&a.PostalCode,
		&a.Country,
		&a.Phone,
		&a.DefaultShipping,
		&a.DefaultBilling,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
