// Package basket implements the basket store. Mutations apply to in-process
// state first and are then persisted as a full snapshot through the backend
// matching the owner's identity mode; a failed persist restores the
// pre-mutation snapshot verbatim and surfaces a notification.
package basket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/notify"
	basketrepo "github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/repository/basket"
)

var (
	// ErrBasketLimit is returned when an add would exceed the tier's
	// distinct-row capacity. The wrapped message names the limit.
	ErrBasketLimit = errors.New("basket limit reached")

	// errNoChange signals a mutation that resolved to a no-op; the basket
	// is neither restamped nor persisted.
	errNoChange = errors.New("no change")
)

// Owner identifies whose basket is being operated on. Exactly one of
// AccountID (identified mode) or DeviceID (anonymous mode) is set.
type Owner struct {
	AccountID string
	DeviceID  string
}

func (o Owner) Identified() bool {
	return o.AccountID != ""
}

// ID is the storage key within the owner's mode.
func (o Owner) ID() string {
	if o.Identified() {
		return o.AccountID
	}
	return o.DeviceID
}

func (o Owner) key() string {
	if o.Identified() {
		return "account:" + o.AccountID
	}
	return "device:" + o.DeviceID
}

type partCatalog interface {
	GetByID(ctx context.Context, id string) (*domain.Part, error)
}

// Service is the basket store plus the identity-transition merger.
type Service struct {
	remote basketrepo.Repository
	local  basketrepo.Repository
	parts  partCatalog
	notify notify.Notifier
	now    func() time.Time

	mu      sync.Mutex
	state   map[string]*domain.Basket
	merging map[string]bool
}

func New(remote, local basketrepo.Repository, parts partCatalog, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		remote:  remote,
		local:   local,
		parts:   parts,
		notify:  notifier,
		now:     func() time.Time { return time.Now().UTC() },
		state:   make(map[string]*domain.Basket),
		merging: make(map[string]bool),
	}
}

// repoFor selects the persistence backend from identity presence. Evaluated
// on every call, never cached across the identity transition.
func (s *Service) repoFor(o Owner) basketrepo.Repository {
	if o.Identified() {
		return s.remote
	}
	return s.local
}

// Get returns a copy of the owner's basket, creating an empty one on first
// load.
func (s *Service) Get(ctx context.Context, owner Owner) (domain.Basket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.loadLocked(ctx, owner)
	if err != nil {
		return domain.Basket{}, err
	}
	return cur.Clone(), nil
}

// AddItemInput names the catalog entity and quantity being added.
type AddItemInput struct {
	PartID    string `json:"partId"`
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// AddItem adds a part to the basket. Snapshot fields are captured by value
// from the catalog at add time. A guest basket holding an item is replaced
// by the new item with an informational notice; other tiers reject adds
// beyond their row limit.
func (s *Service) AddItem(ctx context.Context, owner Owner, policy domain.Policy, in AddItemInput) (domain.Basket, error) {
	if in.Quantity <= 0 {
		return domain.Basket{}, errors.New("quantity must be positive")
	}
	if strings.TrimSpace(in.PartID) == "" {
		return domain.Basket{}, errors.New("partId required")
	}

	part, err := s.parts.GetByID(ctx, in.PartID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Basket{}, errors.New("part not found")
		}
		return domain.Basket{}, err
	}
	variantID := in.VariantID
	if variantID == "" {
		variantID = domain.DefaultVariantID
	}
	variant, ok := part.Variant(variantID)
	if !ok {
		return domain.Basket{}, errors.New("variant not found")
	}

	name := part.Name
	if variant.Label != "" {
		name = part.Name + " (" + variant.Label + ")"
	}

	guestReplaced := false
	out, err := s.mutate(ctx, owner, func(b *domain.Basket) error {
		item := domain.BasketItem{
			ID:             newItemID(),
			PartID:         part.ID,
			VariantID:      variant.ID,
			Quantity:       in.Quantity,
			Name:           name,
			SKU:            variant.SKU,
			Thumbnail:      part.Thumbnail,
			UnitPriceCents: variant.PriceCents,
			Currency:       part.Currency,
			AddedAt:        s.now(),
		}
		if policy.Tier == domain.TierGuest && b.Rows() >= 1 {
			// Deliberate product policy: a guest basket holds one item and
			// a second add replaces it. Not an error.
			b.Items = []domain.BasketItem{item}
			guestReplaced = true
			return nil
		}
		if i := b.FindItem(part.ID, variant.ID); i >= 0 {
			b.Items[i].Quantity += in.Quantity
			return nil
		}
		if b.Rows() >= policy.MaxItems {
			return fmt.Errorf("%w: %s accounts hold at most %d items", ErrBasketLimit, policy.Tier, policy.MaxItems)
		}
		b.Items = append(b.Items, item)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrBasketLimit) {
			notify.Error(ctx, s.notify, owner.ID(), err.Error())
		}
		return domain.Basket{}, err
	}
	if guestReplaced {
		notify.Info(ctx, s.notify, owner.ID(), "Guest baskets hold a single item, so your previous item was replaced. Sign in to keep more.")
	}
	return out, nil
}

// RemoveItem drops a row. Removing an unknown id is a no-op.
func (s *Service) RemoveItem(ctx context.Context, owner Owner, itemID string) (domain.Basket, error) {
	return s.mutate(ctx, owner, func(b *domain.Basket) error {
		i := b.FindByID(itemID)
		if i < 0 {
			return errNoChange
		}
		b.Items = append(b.Items[:i], b.Items[i+1:]...)
		return nil
	})
}

// UpdateQuantity replaces a row's quantity in place. A quantity of zero or
// less is defined as removal.
func (s *Service) UpdateQuantity(ctx context.Context, owner Owner, itemID string, quantity int) (domain.Basket, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, owner, itemID)
	}
	return s.mutate(ctx, owner, func(b *domain.Basket) error {
		i := b.FindByID(itemID)
		if i < 0 {
			return domain.ErrNotFound
		}
		b.Items[i].Quantity = quantity
		return nil
	})
}

// ToggleBulkPricing flips the per-item bulk pricing request flag.
func (s *Service) ToggleBulkPricing(ctx context.Context, owner Owner, itemID string) (domain.Basket, error) {
	return s.mutate(ctx, owner, func(b *domain.Basket) error {
		i := b.FindByID(itemID)
		if i < 0 {
			return domain.ErrNotFound
		}
		b.Items[i].BulkPricingRequested = !b.Items[i].BulkPricingRequested
		return nil
	})
}

// Clear empties the basket.
func (s *Service) Clear(ctx context.Context, owner Owner) error {
	repo := s.repoFor(owner)

	s.mu.Lock()
	cur, err := s.loadLocked(ctx, owner)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := cur.Clone()
	cur.Items = nil
	cur.UpdatedAt = s.now()
	s.mu.Unlock()

	if err := repo.Clear(ctx, owner.ID()); err != nil {
		s.mu.Lock()
		restored := snapshot.Clone()
		s.state[owner.key()] = &restored
		s.mu.Unlock()
		notify.Error(ctx, s.notify, owner.ID(), "We couldn't clear your basket. Please try again.")
		return fmt.Errorf("clear basket: %w", err)
	}
	return nil
}

// MergeOnSignIn reconciles the device basket with the account basket after
// sign-in. Device rows merge by (partID, variantID); rows beyond the
// account tier's limit are dropped. The device store is cleared afterwards,
// which makes a second invocation a no-op. Re-entry while a merge for the
// same device is outstanding is blocked by an in-flight guard.
func (s *Service) MergeOnSignIn(ctx context.Context, deviceID string, account domain.Account) (int, error) {
	if deviceID == "" {
		return 0, nil
	}

	s.mu.Lock()
	if s.merging[deviceID] {
		s.mu.Unlock()
		return 0, nil
	}
	s.merging[deviceID] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.merging, deviceID)
		s.mu.Unlock()
	}()

	local, err := s.local.Load(ctx, deviceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("load device basket: %w", err)
	}
	if local.Rows() == 0 {
		return 0, nil
	}

	remote, err := s.remote.Load(ctx, account.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("load account basket: %w", err)
		}
		remote = &domain.Basket{}
	}

	policy := account.Policy()
	merged := remote.Clone()
	carried := 0
	for _, it := range local.Items {
		if i := merged.FindItem(it.PartID, it.VariantID); i >= 0 {
			merged.Items[i].Quantity += it.Quantity
			carried++
			continue
		}
		if merged.Rows() >= policy.MaxItems {
			continue
		}
		it.ID = newItemID()
		merged.Items = append(merged.Items, it)
		carried++
	}
	merged.UpdatedAt = s.now()

	if err := s.remote.Save(ctx, account.ID, merged); err != nil {
		return 0, fmt.Errorf("save merged basket: %w", err)
	}

	s.mu.Lock()
	cached := merged.Clone()
	s.state[Owner{AccountID: account.ID}.key()] = &cached
	delete(s.state, Owner{DeviceID: deviceID}.key())
	s.mu.Unlock()

	if err := s.local.Clear(ctx, deviceID); err != nil {
		return carried, fmt.Errorf("clear device basket: %w", err)
	}

	if carried > 0 {
		notify.Success(ctx, s.notify, account.ID, fmt.Sprintf("%d item(s) from your guest basket were moved to your account.", carried))
	}
	return carried, nil
}

// loadLocked returns the cached working state for the owner, loading it
// from the mode-selected backend on first touch. Callers hold s.mu.
func (s *Service) loadLocked(ctx context.Context, owner Owner) (*domain.Basket, error) {
	key := owner.key()
	if b, ok := s.state[key]; ok {
		return b, nil
	}
	b, err := s.repoFor(owner).Load(ctx, owner.ID())
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		b = &domain.Basket{}
	}
	s.state[key] = b
	return b, nil
}

// mutate is the optimistic mutation wrapper: snapshot, apply to the working
// state, persist the full snapshot, and on persistence failure restore the
// pre-mutation snapshot and raise an error notification. Mutation funcs
// must not modify the basket when they return an error.
func (s *Service) mutate(ctx context.Context, owner Owner, fn func(*domain.Basket) error) (domain.Basket, error) {
	repo := s.repoFor(owner)

	s.mu.Lock()
	cur, err := s.loadLocked(ctx, owner)
	if err != nil {
		s.mu.Unlock()
		return domain.Basket{}, err
	}
	snapshot := cur.Clone()
	if err := fn(cur); err != nil {
		s.mu.Unlock()
		if errors.Is(err, errNoChange) {
			return snapshot, nil
		}
		return domain.Basket{}, err
	}
	cur.UpdatedAt = s.now()
	applied := cur.Clone()
	s.mu.Unlock()

	if err := repo.Save(ctx, owner.ID(), applied); err != nil {
		s.mu.Lock()
		restored := snapshot.Clone()
		s.state[owner.key()] = &restored
		s.mu.Unlock()
		notify.Error(ctx, s.notify, owner.ID(), "We couldn't save your basket change. Please try again.")
		return domain.Basket{}, fmt.Errorf("save basket: %w", err)
	}
	return applied, nil
}
