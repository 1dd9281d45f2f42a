package domain

import "time"

// Part is a catalog entry for an elevator component.
type Part struct {
	ID          string        `json:"id"`
	Key         string        `json:"key"`
	SKU         string        `json:"sku"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	CategoryKey string        `json:"categoryKey,omitempty"`
	Thumbnail   string        `json:"thumbnail,omitempty"`
	PriceCents  int64         `json:"priceCents"`
	Currency    string        `json:"currency"`
	Variants    []PartVariant `json:"variants,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// PartVariant is a purchasable variation of a part. A part with no explicit
// variants is sold under the implicit default variant.
type PartVariant struct {
	ID         string `json:"id"`
	SKU        string `json:"sku,omitempty"`
	Label      string `json:"label,omitempty"`
	PriceCents int64  `json:"priceCents,omitempty"`
}

// DefaultVariantID identifies the implicit variant of parts that carry none.
const DefaultVariantID = "default"

// Variant resolves a variant by ID. The default variant mirrors the part's
// own SKU and price.
func (p Part) Variant(variantID string) (PartVariant, bool) {
	if variantID == "" || variantID == DefaultVariantID {
		return PartVariant{ID: DefaultVariantID, SKU: p.SKU, PriceCents: p.PriceCents}, true
	}
	for _, v := range p.Variants {
		if v.ID == variantID {
			if v.PriceCents == 0 {
				v.PriceCents = p.PriceCents
			}
			if v.SKU == "" {
				v.SKU = p.SKU
			}
			return v, true
		}
	}
	return PartVariant{}, false
}
