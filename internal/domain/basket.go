package domain

import "time"

// BasketItem is one row of a basket. Display fields (name, thumbnail, unit
// price) are captured by value at add-time so the basket stays renderable
// even if the catalog entry changes later.
type BasketItem struct {
	ID                   string    `json:"id"`
	PartID               string    `json:"partId"`
	VariantID            string    `json:"variantId"`
	Quantity             int       `json:"quantity"`
	BulkPricingRequested bool      `json:"bulkPricingRequested"`
	Name                 string    `json:"name"`
	SKU                  string    `json:"sku,omitempty"`
	Thumbnail            string    `json:"thumbnail,omitempty"`
	UnitPriceCents       int64     `json:"unitPriceCents"`
	Currency             string    `json:"currency"`
	AddedAt              time.Time `json:"addedAt"`
}

// Basket is the working collection of line items for one owner. Item order
// is insertion order and significant for display. UpdatedAt is rewritten on
// every mutation and acts as a last-write-wins marker, not a strict clock.
type Basket struct {
	Items     []BasketItem `json:"items"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Clone returns a deep copy. BasketItem holds only value fields, so copying
// the slice is sufficient.
func (b Basket) Clone() Basket {
	out := Basket{UpdatedAt: b.UpdatedAt}
	if b.Items != nil {
		out.Items = make([]BasketItem, len(b.Items))
		copy(out.Items, b.Items)
	}
	return out
}

// Rows is the number of distinct line items; tier capacity bounds this.
func (b Basket) Rows() int {
	return len(b.Items)
}

// ItemCount is the sum of quantities across rows, used for display badges.
func (b Basket) ItemCount() int {
	total := 0
	for _, it := range b.Items {
		total += it.Quantity
	}
	return total
}

// SubtotalCents sums unit price times quantity over all rows.
func (b Basket) SubtotalCents() int64 {
	var total int64
	for _, it := range b.Items {
		total += it.UnitPriceCents * int64(it.Quantity)
	}
	return total
}

// FindItem returns the index of the row matching the (partID, variantID)
// dedup key, or -1.
func (b Basket) FindItem(partID, variantID string) int {
	for i, it := range b.Items {
		if it.PartID == partID && it.VariantID == variantID {
			return i
		}
	}
	return -1
}

// FindByID returns the index of the row with the given item ID, or -1.
func (b Basket) FindByID(id string) int {
	for i, it := range b.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
