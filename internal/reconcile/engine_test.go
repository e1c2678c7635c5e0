package reconcile

import (
	"math"
	"testing"

	"github.com/cafedesk/cafedesk/internal/domain"
)

func inventory() []domain.InventoryItem {
	return []domain.InventoryItem{
		{ID: "milk", Name: "حليب", Unit: "لتر", Quantity: 10, CostPerUnit: 20},
		{ID: "beans", Name: "بن", Unit: "kg", Quantity: 2.5, CostPerUnit: 120},
	}
}

func catalog() []domain.Product {
	return []domain.Product{
		{
			ID: "latte", Name: "لاتيه", SellPrice: 15,
			Ingredients: []domain.Ingredient{
				{Name: "milk", Cost: 4, InventoryItemID: "milk", QuantityUsed: 0.2},
				{Name: "beans", Cost: 2, InventoryItemID: "beans", QuantityUsed: 0.018},
				{Name: "cup", Cost: 0.5}, // no inventory link, must not consume
			},
		},
	}
}

func qty(t *testing.T, inv []domain.InventoryItem, id string) float64 {
	t.Helper()
	for _, it := range inv {
		if it.ID == id {
			return it.Quantity
		}
	}
	t.Fatalf("inventory item %s missing", id)
	return 0
}

func TestDirectInventorySale(t *testing.T) {
	items := []domain.SaleItem{{Ref: domain.ItemRef{Kind: domain.RefInventory, ID: "milk"}, Quantity: 3}}
	got := Apply(inventory(), catalog(), items, Consume)
	if q := qty(t, got, "milk"); q != 7 {
		t.Fatalf("milk quantity = %v, want 7", q)
	}
}

func TestRecipeConsumption(t *testing.T) {
	items := []domain.SaleItem{{Ref: domain.ItemRef{Kind: domain.RefProduct, ID: "latte"}, Quantity: 2}}
	got := Apply(inventory(), catalog(), items, Consume)
	if q := qty(t, got, "milk"); q != 9.6 {
		t.Fatalf("milk quantity = %v, want 9.6", q)
	}
	if q := qty(t, got, "beans"); q != 2.464 {
		t.Fatalf("beans quantity = %v, want 2.464", q)
	}
}

func TestSaleThenReturnRoundTrips(t *testing.T) {
	items := []domain.SaleItem{
		{Ref: domain.ItemRef{Kind: domain.RefProduct, ID: "latte"}, Quantity: 3},
		{Ref: domain.ItemRef{Kind: domain.RefInventory, ID: "milk"}, Quantity: 1.5},
	}
	before := inventory()
	after := Apply(before, catalog(), items, Consume)
	restored := Apply(after, catalog(), items, Restore)
	for i := range before {
		if diff := math.Abs(restored[i].Quantity - before[i].Quantity); diff > 0.001 {
			t.Fatalf("item %s drifted by %v after round trip", before[i].ID, diff)
		}
	}
}

func TestReverseUndoesApply(t *testing.T) {
	items := []domain.SaleItem{{Ref: domain.ItemRef{Kind: domain.RefProduct, ID: "latte"}, Quantity: 4}}
	after := Apply(inventory(), catalog(), items, Consume)
	back := Reverse(after, catalog(), items, Consume)
	if q := qty(t, back, "milk"); q != 10 {
		t.Fatalf("milk quantity = %v, want 10", q)
	}
}

func TestUnresolvableRefsAreDropped(t *testing.T) {
	items := []domain.SaleItem{
		{Ref: domain.ItemRef{Kind: domain.RefProduct, ID: "no-such-product"}, Quantity: 5},
		{Ref: domain.ItemRef{Kind: domain.RefInventory, ID: "no-such-item"}, Quantity: 5},
	}
	got := Apply(inventory(), catalog(), items, Consume)
	if q := qty(t, got, "milk"); q != 10 {
		t.Fatalf("milk quantity changed to %v for unresolvable refs", q)
	}
}

func TestInputsAreNotMutated(t *testing.T) {
	inv := inventory()
	items := []domain.SaleItem{{Ref: domain.ItemRef{Kind: domain.RefInventory, ID: "milk"}, Quantity: 2}}
	_ = Apply(inv, catalog(), items, Consume)
	if q := qty(t, inv, "milk"); q != 10 {
		t.Fatalf("Apply mutated its input, milk = %v", q)
	}
}

func TestQuantityMayGoNegative(t *testing.T) {
	items := []domain.SaleItem{{Ref: domain.ItemRef{Kind: domain.RefInventory, ID: "milk"}, Quantity: 12}}
	got := Apply(inventory(), catalog(), items, Consume)
	if q := qty(t, got, "milk"); q != -2 {
		t.Fatalf("milk quantity = %v, want -2 (negative stock allowed)", q)
	}
}

func TestRoundingAfterEachDelta(t *testing.T) {
	inv := []domain.InventoryItem{{ID: "syrup", Quantity: 1}}
	cat := []domain.Product{{
		ID: "mocha",
		Ingredients: []domain.Ingredient{
			{Name: "syrup", Cost: 1, InventoryItemID: "syrup", QuantityUsed: 0.1},
		},
	}}
	got := inv
	items := []domain.SaleItem{{Ref: domain.ItemRef{Kind: domain.RefProduct, ID: "mocha"}, Quantity: 1}}
	for i := 0; i < 7; i++ {
		got = Apply(got, cat, items, Consume)
	}
	if q := got[0].Quantity; q != 0.3 {
		t.Fatalf("syrup quantity = %v, want exactly 0.3", q)
	}
}

func TestLegacyRefParsing(t *testing.T) {
	cases := []struct {
		in   string
		want domain.ItemRef
	}{
		{"inv_milk", domain.ItemRef{Kind: domain.RefInventory, ID: "milk"}},
		{"product_latte", domain.ItemRef{Kind: domain.RefProduct, ID: "latte"}},
		{"latte", domain.ItemRef{Kind: domain.RefProduct, ID: "latte"}},
	}
	for _, c := range cases {
		if got := domain.ParseItemRef(c.in); got != c.want {
			t.Errorf("ParseItemRef(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}
