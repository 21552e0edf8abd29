package collection

import (
	"context"
	"errors"
	"log"

	"github.com/cardbinder/cardbinder/internal/storage/models"
	"github.com/cardbinder/cardbinder/internal/variant"
)

// MaxBatchSize is the largest card-ID set a single bulk resolution accepts.
// It bounds the IN clause sent to storage.
const MaxBatchSize = 100

var (
	// ErrNoCardIDs is returned when a bulk resolution is requested with an
	// empty card-ID set.
	ErrNoCardIDs = errors.New("at least one card ID is required")

	// ErrTooManyCardIDs is returned when a bulk resolution exceeds MaxBatchSize.
	ErrTooManyCardIDs = errors.New("too many card IDs in one request")
)

// QuantityMap maps card IDs to per-UI-variant owned quantities. Every
// requested card is present as a key, with explicit zeros for unowned
// variants.
type QuantityMap map[string]map[variant.UIVariant]int

// ItemReader is the storage capability the resolver needs.
type ItemReader interface {
	GetQuantities(ctx context.Context, userID string, cardIDs []string) ([]*models.CollectionItem, error)
}

// Resolver answers bulk per-card, per-variant quantity lookups with a single
// batched storage read.
type Resolver struct {
	items ItemReader
}

// NewResolver creates a new Resolver backed by the given item reader.
func NewResolver(items ItemReader) *Resolver {
	return &Resolver{items: items}
}

// Resolve returns the user's owned quantities for every requested card.
//
// The result is seeded with an all-zero row per requested card before any
// storage row is merged, so callers never have to distinguish "unowned"
// from "not requested". Stored variant codes without a UI mapping are
// dropped. A storage failure degrades to an empty successful result: a
// dashboard showing zero owned is less harmful than a broken page. That
// fail-open policy is specific to this read path.
func (r *Resolver) Resolve(ctx context.Context, userID string, cardIDs []string) (QuantityMap, error) {
	if len(cardIDs) == 0 {
		return nil, ErrNoCardIDs
	}
	if len(cardIDs) > MaxBatchSize {
		return nil, ErrTooManyCardIDs
	}

	result := make(QuantityMap, len(cardIDs))
	for _, cardID := range cardIDs {
		result[cardID] = emptyVariantRow()
	}

	items, err := r.items.GetQuantities(ctx, userID, cardIDs)
	if err != nil {
		log.Printf("bulk quantity read failed for user %s: %v", userID, err)
		return QuantityMap{}, nil
	}

	for _, item := range items {
		v, ok := variant.ToUIVariant(item.Variant)
		if !ok {
			continue
		}
		row, requested := result[item.CardID]
		if !requested {
			continue
		}
		// Each cell is the current on-hand quantity for its exact key, so a
		// duplicate storage row overwrites rather than sums.
		row[v] = item.Quantity
	}

	return result, nil
}

func emptyVariantRow() map[variant.UIVariant]int {
	row := make(map[variant.UIVariant]int, len(variant.All()))
	for _, v := range variant.All() {
		row[v] = 0
	}
	return row
}
