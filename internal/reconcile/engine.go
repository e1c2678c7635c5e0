package reconcile

import (
	"math"

	"github.com/cafedesk/cafedesk/internal/domain"
)

// Direction is the sign a batch of sale items applies to inventory.
type Direction int

const (
	// Consume depletes stock (a committed sale).
	Consume Direction = iota
	// Restore puts stock back (an accepted return).
	Restore
)

func (d Direction) factor() float64 {
	if d == Consume {
		return -1
	}
	return 1
}

// Round3 rounds an inventory quantity to 3 decimal places. Applied after
// every delta so repeated fractional consumption cannot accumulate
// floating-point drift.
func Round3(q float64) float64 {
	return math.Round(q*1000) / 1000
}

// Apply translates sale items into signed inventory deltas and returns a new
// inventory slice; the input collections are never mutated. Item references
// that resolve to nothing are dropped silently — a line pointing at a deleted
// product must not block checkout or shift close.
func Apply(inv []domain.InventoryItem, catalog []domain.Product, items []domain.SaleItem, dir Direction) []domain.InventoryItem {
	return apply(inv, catalog, items, dir.factor())
}

// Reverse undoes Apply with the same arguments: reversing a Consume adds the
// consumed quantities back, reversing a Restore subtracts the restored ones.
// The shift resolver uses it to back-compute start-of-shift stock from the
// current stock without touching stored state.
func Reverse(inv []domain.InventoryItem, catalog []domain.Product, items []domain.SaleItem, dir Direction) []domain.InventoryItem {
	return apply(inv, catalog, items, -dir.factor())
}

func apply(inv []domain.InventoryItem, catalog []domain.Product, items []domain.SaleItem, factor float64) []domain.InventoryItem {
	out := make([]domain.InventoryItem, len(inv))
	copy(out, inv)

	index := make(map[string]int, len(out))
	for i := range out {
		index[out[i].ID] = i
	}
	products := make(map[string]*domain.Product, len(catalog))
	for i := range catalog {
		products[catalog[i].ID] = &catalog[i]
	}

	addDelta := func(itemID string, delta float64) {
		i, ok := index[itemID]
		if !ok {
			return
		}
		out[i].Quantity = Round3(out[i].Quantity + delta)
	}

	for _, item := range items {
		if item.Ref.IsZero() || item.Quantity == 0 {
			continue
		}
		switch item.Ref.Kind {
		case domain.RefInventory:
			addDelta(item.Ref.ID, factor*item.Quantity)
		case domain.RefProduct:
			p, ok := products[item.Ref.ID]
			if !ok {
				continue
			}
			for _, ing := range p.Ingredients {
				if ing.InventoryItemID == "" || ing.QuantityUsed == 0 {
					continue
				}
				addDelta(ing.InventoryItemID, factor*ing.QuantityUsed*item.Quantity)
			}
		}
	}
	return out
}
