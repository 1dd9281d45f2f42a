package part

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	"github.com/jackc/pgx/v5"
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

const partColumns = `id::text, key, sku, name, COALESCE(description, ''), COALESCE(category_key, ''), thumbnail, price_cents, currency, variants, created_at`

func (r *postgresRepo) List(ctx context.Context) ([]domain.Part, error) {
	const q = `
SELECT ` + partColumns + `
FROM parts
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("part repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Part, error) {
	const q = `
SELECT ` + partColumns + `
FROM parts
WHERE id = $1
`
	p, err := scanPart(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("part repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetBySKU(ctx context.Context, sku string) (*domain.Part, error) {
	const q = `
SELECT ` + partColumns + `
FROM parts
WHERE sku = $1
LIMIT 1
`
	p, err := scanPart(r.pool.QueryRow(ctx, q, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("part repo: get sku=%s error=%v", sku, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Part) (*domain.Part, error) {
	variantsJSON, err := json.Marshal(p.Variants)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO parts (key, sku, name, description, category_key, thumbnail, price_cents, currency, variants)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9)
ON CONFLICT (key) DO UPDATE SET
    sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    category_key = EXCLUDED.category_key,
    thumbnail = EXCLUDED.thumbnail,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    variants = EXCLUDED.variants
RETURNING ` + partColumns + `
`
	out, err := scanPart(r.pool.QueryRow(ctx, q,
		p.Key, p.SKU, p.Name, p.Description, p.CategoryKey, p.Thumbnail, p.PriceCents, p.Currency, variantsJSON,
	))
	if err != nil {
		r.logger.Printf("part repo: upsert key=%s error=%v", p.Key, err)
		return nil, err
	}
	return out, nil
}

func scanPart(row pgx.Row) (*domain.Part, error) {
	var p domain.Part
	var variantsJSON []byte
	if err := row.Scan(
		&p.ID,
		&p.Key,
		&p.SKU,
		&p.Name,
		&p.Description,
		&p.CategoryKey,
		&p.Thumbnail,
		&p.PriceCents,
		&p.Currency,
		&variantsJSON,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(variantsJSON) > 0 {
		if err := json.Unmarshal(variantsJSON, &p.Variants); err != nil {
			return nil, err
		}
	}
	return &p, nil
}
