package basket

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
)

type stubRepo struct {
	baskets  map[string]domain.Basket
	failSave bool
	saves    int
	clears   int
}

func newStubRepo() *stubRepo {
	return &stubRepo{baskets: make(map[string]domain.Basket)}
}

func (r *stubRepo) Load(_ context.Context, ownerID string) (*domain.Basket, error) {
	b, ok := r.baskets[ownerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := b.Clone()
	return &clone, nil
}

func (r *stubRepo) Save(_ context.Context, ownerID string, b domain.Basket) error {
	r.saves++
	if r.failSave {
		return errors.New("backend unavailable")
	}
	r.baskets[ownerID] = b.Clone()
	return nil
}

func (r *stubRepo) Clear(_ context.Context, ownerID string) error {
	r.clears++
	delete(r.baskets, ownerID)
	return nil
}

type stubCatalog struct {
	parts map[string]domain.Part
}

func (c *stubCatalog) GetByID(_ context.Context, id string) (*domain.Part, error) {
	p, ok := c.parts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func testCatalog() *stubCatalog {
	return &stubCatalog{parts: map[string]domain.Part{
		"part-a": {
			ID: "part-a", SKU: "GBX-100", Name: "Gearbox", PriceCents: 129900, Currency: "EUR",
			Variants: []domain.PartVariant{{ID: "v1", SKU: "GBX-100-L", Label: "Left"}},
		},
		"part-b": {ID: "part-b", SKU: "CAB-200", Name: "Cable Set", PriceCents: 4500, Currency: "EUR"},
		"part-c": {ID: "part-c", SKU: "BRK-300", Name: "Brake Pad", PriceCents: 9900, Currency: "EUR"},
	}}
}

func newTestService() (*Service, *stubRepo, *stubRepo) {
	remote := newStubRepo()
	local := newStubRepo()
	return New(remote, local, testCatalog(), nil), remote, local
}

var (
	businessPolicy = domain.ResolveTier(domain.ClassificationBusiness, false)
	guestPolicy    = domain.GuestPolicy()
)

func TestAddItemDeduplicatesByPartAndVariant(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := Owner{AccountID: "acc-1"}

	if _, err := svc.AddItem(ctx, owner, businessPolicy, AddItemInput{PartID: "part-a", VariantID: "v1", Quantity: 3}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := svc.AddItem(ctx, owner, businessPolicy, AddItemInput{PartID: "part-b", Quantity: 1}); err != nil {
		t.Fatalf("second add: %v", err)
	}
	b, err := svc.AddItem(ctx, owner, businessPolicy, AddItemInput{PartID: "part-a", VariantID: "v1", Quantity: 2})
	if err != nil {
		t.Fatalf("duplicate add: %v", err)
	}

	if b.Rows() != 2 {
		t.Fatalf("expected 2 rows, got %d", b.Rows())
	}
	if b.ItemCount() != 6 {
		t.Fatalf("expected item count 6, got %d", b.ItemCount())
	}
	i := b.FindItem("part-a", "v1")
	if i < 0 {
		t.Fatal("merged row not found")
	}
	if b.Items[i].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", b.Items[i].Quantity)
	}
}

func TestAddItemRejectsBeyondRowLimit(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := Owner{AccountID: "acc-1"}
	policy := domain.Policy{Tier: domain.TierIndividual, MaxItems: 2}

	for _, partID := range []string{"part-a", "part-b"} {
		if _, err := svc.AddItem(ctx, owner, policy, AddItemInput{PartID: partID, Quantity: 1}); err != nil {
			t.Fatalf("add %s: %v", partID, err)
		}
	}
	before, _ := svc.Get(ctx, owner)

	_, err := svc.AddItem(ctx, owner, policy, AddItemInput{PartID: "part-c", Quantity: 1})
	if !errors.Is(err, ErrBasketLimit) {
		t.Fatalf("expected ErrBasketLimit, got %v", err)
	}

	after, _ := svc.Get(ctx, owner)
	if !reflect.DeepEqual(before, after) {
		t.Fatal("basket changed by a rejected add")
	}
}

func TestAddItemAtLimitStillIncrementsExistingRow(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := Owner{AccountID: "acc-1"}
	policy := domain.Policy{Tier: domain.TierIndividual, MaxItems: 1}

	if _, err := svc.AddItem(ctx, owner, policy, AddItemInput{PartID: "part-b", Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	b, err := svc.AddItem(ctx, owner, policy, AddItemInput{PartID: "part-b", Quantity: 4})
	if err != nil {
		t.Fatalf("re-add at limit: %v", err)
	}
	if b.Rows() != 1 || b.Items[0].Quantity != 5 {
		t.Fatalf("expected single row with quantity 5, got rows=%d", b.Rows())
	}
}

func TestGuestSecondAddReplacesBasket(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := Owner{DeviceID: "dev-1"}

	if _, err := svc.AddItem(ctx, owner, guestPolicy, AddItemInput{PartID: "part-a", VariantID: "v1", Quantity: 2}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	b, err := svc.AddItem(ctx, owner, guestPolicy, AddItemInput{PartID: "part-b", Quantity: 1})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if b.Rows() != 1 {
		t.Fatalf("expected 1 row after replacement, got %d", b.Rows())
	}
	if b.Items[0].PartID != "part-b" {
		t.Fatalf("expected part-b to survive, got %s", b.Items[0].PartID)
	}
}

func TestUpdateQuantityZeroRemovesRow(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	owner := Owner{AccountID: "acc-1"}

	added, err := svc.AddItem(ctx, owner, businessPolicy, AddItemInput{PartID: "part-a", Quantity: 2})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	itemID := added.Items[0].ID

	for _, qty := range []int{0, -1} {
		b, err := svc.UpdateQuantity(ctx, owner, itemID, qty)
		if err != nil {
			t.Fatalf("update to %d: %v", qty, err)
		}
		if b.Rows() != 0 {
			t.Fatalf("update to %d: expected empty basket, got %d rows", qty, b.Rows())
		}
	}
}

func TestUpdateQuantityUnknownItem(t *testing.T) {
	svc, _, _ := newTestService()
	owner := Owner{AccountID: "acc-1"}

	_, err := svc.UpdateQuantity(context.Background(), owner, "missing", 3)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveUnknownItemIsNoOp(t *testing.T) {
	svc, remote, _ := newTestService()
	ctx := context.Background()
	owner := Owner{AccountID: "acc-1"}

	if _, err := svc.AddItem(ctx, owner, businessPolicy, AddItemInput{PartID: "part-a", Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	savesBefore := remote.saves

	b, err := svc.RemoveItem(ctx, owner, "missing")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if b.Rows() != 1 {
		t.Fatalf("expected basket untouched, got %d rows", b.Rows())
	}
	if remote.saves != savesBefore {
		t.Fatal("no-op removal should not persist")
	}
}

func TestFailedSaveRestoresSnapshot(t *testing.T) {
	svc, remote, _ := newTestService()
	ctx := context.Background()
	owner := Owner{AccountID: "acc-1"}

	if _, err := svc.AddItem(ctx, owner, businessPolicy, AddItemInput{PartID: "part-a", Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	before, _ := svc.Get(ctx, owner)

	remote.failSave = true
	if _, err := svc.AddItem(ctx, owner, businessPolicy, AddItemInput{PartID: "part-b", Quantity: 1}); err == nil {
		t.Fatal("expected save failure to surface")
	}

	after, _ := svc.Get(ctx, owner)
	if !reflect.DeepEqual(before, after) {
		t.Fatal("basket not restored to pre-mutation snapshot")
	}
}

func TestDualModeRouting(t *testing.T) {
	svc, remote, local := newTestService()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, Owner{DeviceID: "dev-1"}, guestPolicy, AddItemInput{PartID: "part-a", Quantity: 1}); err != nil {
		t.Fatalf("device add: %v", err)
	}
	if _, err := svc.AddItem(ctx, Owner{AccountID: "acc-1"}, businessPolicy, AddItemInput{PartID: "part-b", Quantity: 1}); err != nil {
		t.Fatalf("account add: %v", err)
	}

	if _, ok := local.baskets["dev-1"]; !ok {
		t.Fatal("device basket not in local store")
	}
	if _, ok := remote.baskets["dev-1"]; ok {
		t.Fatal("device basket leaked to remote store")
	}
	if _, ok := remote.baskets["acc-1"]; !ok {
		t.Fatal("account basket not in remote store")
	}
	if _, ok := local.baskets["acc-1"]; ok {
		t.Fatal("account basket leaked to local store")
	}
}

func TestMergeOnSignIn(t *testing.T) {
	svc, remote, local := newTestService()
	ctx := context.Background()
	account := domain.Account{ID: "acc-1", Classification: domain.ClassificationBusiness}

	device := Owner{DeviceID: "dev-1"}
	if _, err := svc.AddItem(ctx, device, guestPolicy, AddItemInput{PartID: "part-a", VariantID: "v1", Quantity: 2}); err != nil {
		t.Fatalf("device add: %v", err)
	}
	remote.baskets["acc-1"] = domain.Basket{Items: []domain.BasketItem{
		{ID: "srv-1", PartID: "part-a", VariantID: "v1", Quantity: 3},
		{ID: "srv-2", PartID: "part-b", VariantID: domain.DefaultVariantID, Quantity: 1},
	}}

	carried, err := svc.MergeOnSignIn(ctx, "dev-1", account)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if carried != 1 {
		t.Fatalf("expected 1 carried row, got %d", carried)
	}

	merged := remote.baskets["acc-1"]
	if merged.Rows() != 2 {
		t.Fatalf("expected 2 rows after merge, got %d", merged.Rows())
	}
	i := merged.FindItem("part-a", "v1")
	if merged.Items[i].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", merged.Items[i].Quantity)
	}
	if _, ok := local.baskets["dev-1"]; ok {
		t.Fatal("device basket not cleared after merge")
	}

	// Second invocation finds nothing to carry.
	carried, err = svc.MergeOnSignIn(ctx, "dev-1", account)
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	if carried != 0 {
		t.Fatalf("expected second merge to be a no-op, got carried=%d", carried)
	}
}

func TestMergeDropsRowsBeyondLimit(t *testing.T) {
	svc, remote, local := newTestService()
	ctx := context.Background()
	account := domain.Account{ID: "acc-1", Classification: domain.ClassificationIndividual}

	local.baskets["dev-1"] = domain.Basket{Items: []domain.BasketItem{
		{ID: "d-1", PartID: "part-b", VariantID: domain.DefaultVariantID, Quantity: 1},
		{ID: "d-2", PartID: "part-c", VariantID: domain.DefaultVariantID, Quantity: 1},
	}}
	items := make([]domain.BasketItem, 0, 9)
	for i := 0; i < 9; i++ {
		items = append(items, domain.BasketItem{ID: string(rune('a' + i)), PartID: "part-a", VariantID: string(rune('0' + i)), Quantity: 1})
	}
	remote.baskets["acc-1"] = domain.Basket{Items: items}

	carried, err := svc.MergeOnSignIn(ctx, "dev-1", account)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if carried != 1 {
		t.Fatalf("expected 1 carried row (limit 10), got %d", carried)
	}
	if got := remote.baskets["acc-1"].Rows(); got != 10 {
		t.Fatalf("expected 10 rows after merge, got %d", got)
	}
}

func TestMergeEmptyDeviceBasket(t *testing.T) {
	svc, remote, _ := newTestService()
	account := domain.Account{ID: "acc-1", Classification: domain.ClassificationIndividual}

	carried, err := svc.MergeOnSignIn(context.Background(), "dev-unknown", account)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if carried != 0 {
		t.Fatalf("expected 0 carried, got %d", carried)
	}
	if remote.saves != 0 {
		t.Fatal("empty merge should not write the account basket")
	}
}

func TestClearEmptiesBasket(t *testing.T) {
	svc, remote, _ := newTestService()
	ctx := context.Background()
	owner := Owner{AccountID: "acc-1"}

	if _, err := svc.AddItem(ctx, owner, businessPolicy, AddItemInput{PartID: "part-a", Quantity: 1}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Clear(ctx, owner); err != nil {
		t.Fatalf("clear: %v", err)
	}
	b, _ := svc.Get(ctx, owner)
	if b.Rows() != 0 {
		t.Fatalf("expected empty basket, got %d rows", b.Rows())
	}
	if remote.clears != 1 {
		t.Fatalf("expected one backend clear, got %d", remote.clears)
	}
}

func TestItemSnapshotCapturedAtAddTime(t *testing.T) {
	catalog := testCatalog()
	remote := newStubRepo()
	svc := New(remote, newStubRepo(), catalog, nil)
	ctx := context.Background()
	owner := Owner{AccountID: "acc-1"}

	b, err := svc.AddItem(ctx, owner, businessPolicy, AddItemInput{PartID: "part-b", Quantity: 1})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	priceAtAdd := b.Items[0].UnitPriceCents

	p := catalog.parts["part-b"]
	p.PriceCents = 9999900
	catalog.parts["part-b"] = p

	after, _ := svc.Get(ctx, owner)
	if after.Items[0].UnitPriceCents != priceAtAdd {
		t.Fatal("basket row price changed after catalog update")
	}
}
