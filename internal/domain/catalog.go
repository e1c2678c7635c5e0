package domain

import "time"

// Ingredient is one recipe line of a Product. InventoryItemID and
// QuantityUsed are both optional; stock is only consumed when both are set.
type Ingredient struct {
	Name            string  `json:"name"`
	Cost            float64 `json:"cost"`
	InventoryItemID string  `json:"inventory_item_id,omitempty"`
	QuantityUsed    float64 `json:"quantity_used,omitempty"`
}

// Product is a catalog item. When ingredients are present, CostPrice is the
// sum of the ingredient costs.
type Product struct {
	ID          string       `gorm:"primaryKey;size:32" json:"id"`
	Name        string       `gorm:"index" json:"name"`
	SellPrice   float64      `json:"sell_price"`
	CostPrice   float64      `json:"cost_price"`
	Category    string       `gorm:"size:64" json:"category"`
	Ingredients []Ingredient `gorm:"serializer:json" json:"ingredients,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// IngredientCost recomputes CostPrice from the recipe. Returns the stored
// CostPrice when there is no recipe.
func (p *Product) IngredientCost() float64 {
	if len(p.Ingredients) == 0 {
		return p.CostPrice
	}
	var sum float64
	for _, ing := range p.Ingredients {
		sum += ing.Cost
	}
	return sum
}

// InventoryItem is a stock entry. Quantity may legitimately go negative when
// consumption outruns stocktaking. A non-zero SellPrice marks the item as
// directly sellable.
type InventoryItem struct {
	ID          string    `gorm:"primaryKey;size:32" json:"id"`
	Name        string    `gorm:"index" json:"name"`
	Unit        string    `gorm:"size:32" json:"unit"`
	Quantity    float64   `json:"quantity"`
	CostPerUnit float64   `json:"cost_per_unit"`
	SellPrice   float64   `json:"sell_price,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (InventoryItem) TableName() string {
	return "inventory"
}
