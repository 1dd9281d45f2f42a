package domain

import "testing"

func TestResolveTierTable(t *testing.T) {
	cases := []struct {
		name           string
		classification string
		verified       bool
		wantTier       AccountTier
		wantMax        int
	}{
		{"unauthenticated", "", false, TierGuest, 1},
		{"individual", "individual", false, TierIndividual, 10},
		{"individual verified flag ignored", "individual", true, TierIndividual, 10},
		{"business unverified", "business", false, TierBusiness, 50},
		{"business verified", "business", true, TierVerifiedBusiness, 1000},
		{"unknown classification defaults to guest", "wholesale", true, TierGuest, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := ResolveTier(tc.classification, tc.verified)
			if p.Tier != tc.wantTier || p.MaxItems != tc.wantMax {
				t.Fatalf("ResolveTier(%q, %v) = %+v, want tier=%s max=%d",
					tc.classification, tc.verified, p, tc.wantTier, tc.wantMax)
			}
		})
	}
}

func TestGuestPolicy(t *testing.T) {
	p := GuestPolicy()
	if p.Tier != TierGuest || p.MaxItems != 1 {
		t.Fatalf("unexpected guest policy %+v", p)
	}
}

func TestBasketDerivations(t *testing.T) {
	b := Basket{Items: []BasketItem{
		{ID: "a", PartID: "p1", VariantID: "v1", Quantity: 3, UnitPriceCents: 100},
		{ID: "b", PartID: "p2", VariantID: "v1", Quantity: 1, UnitPriceCents: 250},
	}}
	if b.Rows() != 2 {
		t.Fatalf("Rows() = %d, want 2", b.Rows())
	}
	if b.ItemCount() != 4 {
		t.Fatalf("ItemCount() = %d, want 4", b.ItemCount())
	}
	if b.SubtotalCents() != 550 {
		t.Fatalf("SubtotalCents() = %d, want 550", b.SubtotalCents())
	}
	if i := b.FindItem("p2", "v1"); i != 1 {
		t.Fatalf("FindItem = %d, want 1", i)
	}
	if i := b.FindItem("p2", "v2"); i != -1 {
		t.Fatalf("FindItem miss = %d, want -1", i)
	}

	clone := b.Clone()
	clone.Items[0].Quantity = 99
	if b.Items[0].Quantity != 3 {
		t.Fatalf("Clone shares backing storage with original")
	}
}
