// Package importer loads supplier catalog exports into the parts catalog.
// The export format is a JSON document with categories and parts; parts
// reference categories by key.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
)

type PartWriter interface {
	Upsert(ctx context.Context, p domain.Part) (*domain.Part, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

type catalogFile struct {
	Categories []categoryEntry `json:"categories"`
	Parts      []partEntry     `json:"parts"`
}

type categoryEntry struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type partEntry struct {
	Key         string               `json:"key"`
	SKU         string               `json:"sku"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	CategoryKey string               `json:"categoryKey"`
	Thumbnail   string               `json:"thumbnail"`
	PriceCents  int64                `json:"priceCents"`
	Currency    string               `json:"currency"`
	Variants    []domain.PartVariant `json:"variants"`
}

// JSONImporter reads a supplier catalog export and upserts its contents.
type JSONImporter struct {
	reader     io.Reader
	parts      PartWriter
	categories CategoryWriter
}

func NewJSONImporter(r io.Reader, parts PartWriter, categories CategoryWriter) *JSONImporter {
	return &JSONImporter{reader: r, parts: parts, categories: categories}
}

// Run imports the file and returns the number of parts written.
func (i *JSONImporter) Run(ctx context.Context) (int, error) {
	var file catalogFile
	if err := json.NewDecoder(i.reader).Decode(&file); err != nil {
		return 0, fmt.Errorf("decode catalog: %w", err)
	}

	for _, c := range file.Categories {
		if c.Key == "" || c.Name == "" {
			return 0, fmt.Errorf("invalid category entry (key=%q)", c.Key)
		}
		if _, err := i.categories.Upsert(ctx, domain.Category{Key: c.Key, Name: c.Name, Slug: c.Slug}); err != nil {
			return 0, fmt.Errorf("upsert category %q: %w", c.Key, err)
		}
	}

	imported := 0
	for _, p := range file.Parts {
		if err := validatePart(p); err != nil {
			return imported, err
		}
		_, err := i.parts.Upsert(ctx, domain.Part{
			Key:         p.Key,
			SKU:         p.SKU,
			Name:        p.Name,
			Description: p.Description,
			CategoryKey: p.CategoryKey,
			Thumbnail:   p.Thumbnail,
			PriceCents:  p.PriceCents,
			Currency:    p.Currency,
			Variants:    p.Variants,
		})
		if err != nil {
			return imported, fmt.Errorf("upsert part %q: %w", p.Key, err)
		}
		imported++
	}
	return imported, nil
}

func validatePart(p partEntry) error {
	switch {
	case strings.TrimSpace(p.Key) == "":
		return fmt.Errorf("part entry missing key (sku=%q)", p.SKU)
	case strings.TrimSpace(p.SKU) == "":
		return fmt.Errorf("part %q missing sku", p.Key)
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("part %q missing name", p.Key)
	case p.PriceCents <= 0:
		return fmt.Errorf("part %q has no price", p.Key)
	case strings.TrimSpace(p.Currency) == "":
		return fmt.Errorf("part %q missing currency", p.Key)
	}
	for _, v := range p.Variants {
		if v.ID == "" {
			return fmt.Errorf("part %q has a variant without an id", p.Key)
		}
	}
	return nil
}
