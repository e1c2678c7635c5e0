package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// RefKind discriminates what a sale line points at.
type RefKind string

const (
	RefInventory RefKind = "inventory" // direct inventory sale
	RefProduct   RefKind = "product"   // catalog product (recipe consumption)
)

// ItemRef is the tagged reference a SaleItem carries. Older exports encoded
// the reference as a string prefix ("inv_<id>", "product_<id>" or a bare id);
// UnmarshalJSON still accepts that form so imported snapshots keep working.
type ItemRef struct {
	Kind RefKind `json:"kind"`
	ID   string  `json:"id"`
}

// ParseItemRef decodes the legacy prefix encoding.
func ParseItemRef(s string) ItemRef {
	switch {
	case strings.HasPrefix(s, "inv_"):
		return ItemRef{Kind: RefInventory, ID: strings.TrimPrefix(s, "inv_")}
	case strings.HasPrefix(s, "product_"):
		return ItemRef{Kind: RefProduct, ID: strings.TrimPrefix(s, "product_")}
	default:
		return ItemRef{Kind: RefProduct, ID: s}
	}
}

// Legacy renders the prefix encoding for exports that still expect it.
func (r ItemRef) Legacy() string {
	if r.Kind == RefInventory {
		return "inv_" + r.ID
	}
	return "product_" + r.ID
}

func (r ItemRef) IsZero() bool {
	return r.ID == ""
}

func (r *ItemRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = ParseItemRef(s)
		return nil
	}
	type plain ItemRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = ItemRef(p)
	return nil
}

// SaleItem is one line of a sale or of a return.
type SaleItem struct {
	Ref         ItemRef `json:"ref"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

type Discount struct {
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
}

// Sale is a committed checkout. Worker identity is denormalized on purpose:
// deleting a worker must not rewrite their sales history.
type Sale struct {
	ID         string     `gorm:"primaryKey;size:32" json:"id"`
	Items      []SaleItem `gorm:"serializer:json" json:"items"`
	Total      float64    `json:"total"`
	Discount   *Discount  `gorm:"serializer:json" json:"discount,omitempty"`
	WorkerID   int64      `gorm:"index" json:"worker_id,string"`
	WorkerName string     `json:"worker_name"`
	Date       string     `gorm:"index;size:10" json:"date"`
	Time       string     `gorm:"size:8" json:"time"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (Sale) TableName() string {
	return "sales"
}
