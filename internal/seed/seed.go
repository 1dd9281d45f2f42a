package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type partSeed struct {
	Key         string
	SKU         string
	Name        string
	Description string
	CategoryKey string
	PriceCents  int64
	Currency    string
	Variants    []domain.PartVariant
}

type accountSeed struct {
	Email          string
	Password       string
	FirstName      string
	LastName       string
	CompanyName    string
	Classification string
	Verified       bool
	Addresses      []addressSeed
}

type addressSeed struct {
	Label           string
	StreetName      string
	City            string
	PostalCode      string
	Country         string
	DefaultShipping bool
	DefaultBilling  bool
}

// Apply inserts demo data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	categories := []domain.Category{
		{Key: "traction", Name: "Traction Components", Slug: "traction"},
		{Key: "cabin", Name: "Cabin Parts", Slug: "cabin"},
		{Key: "safety", Name: "Safety Systems", Slug: "safety"},
	}
	for _, c := range categories {
		if err := upsertCategory(ctx, pool, c); err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Key, err)
		}
	}

	parts := []partSeed{
		{
			Key:         "traction-gearbox-g200",
			SKU:         "GBX-200",
			Name:        "Traction Gearbox G200",
			Description: "Worm gear traction unit for mid-rise installations",
			CategoryKey: "traction",
			PriceCents:  489900,
			Currency:    "EUR",
			Variants: []domain.PartVariant{
				{ID: "left", SKU: "GBX-200-L", Label: "Left mount"},
				{ID: "right", SKU: "GBX-200-R", Label: "Right mount"},
			},
		},
		{
			Key:         "cabin-panel-steel",
			SKU:         "CAB-PNL-01",
			Name:        "Cabin Wall Panel, Brushed Steel",
			CategoryKey: "cabin",
			PriceCents:  32900,
			Currency:    "EUR",
		},
		{
			Key:         "safety-governor-sg5",
			SKU:         "SG-5",
			Name:        "Overspeed Governor SG5",
			Description: "Bidirectional overspeed governor, EN 81-20 rated",
			CategoryKey: "safety",
			PriceCents:  157500,
			Currency:    "EUR",
		},
		{
			Key:         "traction-rope-8mm",
			SKU:         "RP-8",
			Name:        "Steel Wire Rope 8mm",
			CategoryKey: "traction",
			PriceCents:  1250,
			Currency:    "EUR",
		},
	}
	for _, p := range parts {
		if err := upsertPart(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert part %s: %w", p.Key, err)
		}
	}

	accounts := []accountSeed{
		{
			Email:          "buyer@demo.test",
			Password:       "Password1",
			FirstName:      "Dana",
			LastName:       "Keller",
			Classification: domain.ClassificationIndividual,
			Addresses: []addressSeed{
				{Label: "Home", StreetName: "Lindenstr. 12", City: "Berlin", PostalCode: "10115", Country: "DE", DefaultShipping: true, DefaultBilling: true},
			},
		},
		{
			Email:          "ops@liftworks.test",
			Password:       "Password1",
			CompanyName:    "Liftworks GmbH",
			Classification: domain.ClassificationBusiness,
			Addresses: []addressSeed{
				{Label: "Warehouse", StreetName: "Industrieweg 4", City: "Hamburg", PostalCode: "21107", Country: "DE", DefaultShipping: true},
				{Label: "Head office", StreetName: "Alsterufer 1", City: "Hamburg", PostalCode: "20354", Country: "DE", DefaultBilling: true},
			},
		},
		{
			Email:          "purchasing@vertical.test",
			Password:       "Password1",
			CompanyName:    "Vertical Transport AG",
			Classification: domain.ClassificationBusiness,
			Verified:       true,
			Addresses: []addressSeed{
				{Label: "Depot", StreetName: "Bahnhofstrasse 88", City: "Zurich", PostalCode: "8001", Country: "CH", DefaultShipping: true, DefaultBilling: true},
			},
		},
	}
	for _, a := range accounts {
		if err := upsertAccount(ctx, pool, a); err != nil {
			return fmt.Errorf("upsert account %s: %w", a.Email, err)
		}
	}

	return nil
}

func upsertCategory(ctx context.Context, pool *pgxpool.Pool, c domain.Category) error {
	const q = `
INSERT INTO categories (key, name, slug)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name, slug = EXCLUDED.slug
`
	_, err := pool.Exec(ctx, q, c.Key, c.Name, c.Slug)
	return err
}

func upsertPart(ctx context.Context, pool *pgxpool.Pool, p partSeed) error {
	variants := p.Variants
	if variants == nil {
		variants = []domain.PartVariant{}
	}
	variantsJSON, err := json.Marshal(variants)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO parts (key, sku, name, description, category_key, price_cents, currency, variants)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (key) DO UPDATE
SET sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    category_key = EXCLUDED.category_key,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    variants = EXCLUDED.variants
`
	_, err = pool.Exec(ctx, q, p.Key, p.SKU, p.Name, p.Description, p.CategoryKey, p.PriceCents, p.Currency, variantsJSON)
	return err
}

func upsertAccount(ctx context.Context, pool *pgxpool.Pool, a accountSeed) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO accounts (email, password_hash, first_name, last_name, company_name, classification, verified)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (email) DO UPDATE
SET company_name = EXCLUDED.company_name,
    classification = EXCLUDED.classification,
    verified = EXCLUDED.verified
RETURNING id::text
`
	var accountID string
	if err := pool.QueryRow(ctx, q, a.Email, string(hashed), a.FirstName, a.LastName, a.CompanyName, a.Classification, a.Verified).Scan(&accountID); err != nil {
		return err
	}

	for _, addr := range a.Addresses {
		if err := ensureAddress(ctx, pool, accountID, addr); err != nil {
			return fmt.Errorf("ensure address %s: %w", addr.Label, err)
		}
	}
	return nil
}

// ensureAddress is keyed on (account, label) since addresses carry no natural
// unique column.
func ensureAddress(ctx context.Context, pool *pgxpool.Pool, accountID string, a addressSeed) error {
	const existsQ = `SELECT count(*) FROM addresses WHERE account_id = $1 AND label = $2`
	var n int
	if err := pool.QueryRow(ctx, existsQ, accountID, a.Label).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	const insertQ = `
INSERT INTO addresses (account_id, label, street_name, city, postal_code, country, default_shipping, default_billing)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := pool.Exec(ctx, insertQ, accountID, a.Label, a.StreetName, a.City, a.PostalCode, a.Country, a.DefaultShipping, a.DefaultBilling)
	return err
}
