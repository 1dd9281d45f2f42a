// Package basket provides the basket persistence adapter. Two backends sit
// behind one interface: a Postgres record per account (identified mode) and
// a Redis entry per device (anonymous mode). Saves always write the full
// basket snapshot; last write wins, no conflict detection.
package basket

import (
	"context"

	"github.com/cedarelevatorsindustries/cedarelevators-sub004/internal/domain"
)

type Repository interface {
	// Load returns the stored basket, or domain.ErrNotFound if the owner
	// has never saved one.
	Load(ctx context.Context, ownerID string) (*domain.Basket, error)
	// Save replaces the stored basket with the given snapshot.
	Save(ctx context.Context, ownerID string, b domain.Basket) error
	// Clear removes the stored basket. Clearing an absent basket is a no-op.
	Clear(ctx context.Context, ownerID string) error
}
