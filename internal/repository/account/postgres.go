package account

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const accountColumns = `id::text, email, password_hash, first_name, last_name, company_name, classification, verified, created_at`

func (r *postgresRepo) Create(ctx context.Context, a domain.Account) (*domain.Account, error) {
	const q = `
INSERT INTO accounts (email, password_hash, first_name, last_name, company_name, classification, verified)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + accountColumns + `
`
	return r.scanAccount(r.pool.QueryRow(
		ctx,
		q,
		strings.ToLower(a.Email),
		a.PasswordHash,
		a.FirstName,
		a.LastName,
		a.CompanyName,
		a.Classification,
		a.Verified,
	))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const q = `
SELECT ` + accountColumns + `
FROM accounts
WHERE lower(email) = lower($1)
LIMIT 1
`
	return r.scanAccount(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	const q = `
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1
`
	return r.scanAccount(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) SetVerified(ctx context.Context, id string, verified bool) (*domain.Account, error) {
	const q = `
UPDATE accounts
SET verified = $2
WHERE id = $1
RETURNING ` + accountColumns + `
`
	return r.scanAccount(r.pool.QueryRow(ctx, q, id, verified))
}

func (r *postgresRepo) scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.FirstName,
		&a.LastName,
		&a.CompanyName,
		&a.Classification,
		&a.Verified,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("account repo: scan error=%v", err)
		return nil, err
	}
	return &a, nil
}
