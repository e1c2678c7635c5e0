package domain

import "time"

const (
	ReturnTypeReturn   = "return"
	ReturnTypeExchange = "exchange"
)

const (
	ReturnActionCreated = "created"
	ReturnActionDeleted = "deleted"
)

// ReturnRecord captures a return or an exchange against a sale. SaleID is a
// soft reference; the sale may have been purged by a shift reset.
type ReturnRecord struct {
	ID            string     `gorm:"primaryKey;size:32" json:"id"`
	SaleID        string     `gorm:"index;size:32" json:"sale_id"`
	Type          string     `gorm:"size:16" json:"type"`
	Items         []SaleItem `gorm:"serializer:json" json:"items"`
	ExchangeItems []SaleItem `gorm:"serializer:json" json:"exchange_items,omitempty"`
	RefundAmount  float64    `json:"refund_amount"`
	Reason        string     `json:"reason"`
	WorkerID      int64      `gorm:"index" json:"worker_id,string"`
	WorkerName    string     `json:"worker_name"`
	Date          string     `gorm:"index;size:10" json:"date"`
	Time          string     `gorm:"size:8" json:"time"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (ReturnRecord) TableName() string {
	return "returns"
}

// ItemsValue is the value of the returned goods.
func (r *ReturnRecord) ItemsValue() float64 {
	var sum float64
	for _, it := range r.Items {
		sum += it.Total
	}
	return sum
}

// ExchangeValue is the value of the replacement goods issued.
func (r *ReturnRecord) ExchangeValue() float64 {
	var sum float64
	for _, it := range r.ExchangeItems {
		sum += it.Total
	}
	return sum
}

// NetRefund is the amount actually handed back. The recorded RefundAmount
// wins when set; otherwise it is derived from the item values. Floored at
// zero: when the replacement is worth more than the returned goods the
// customer pays the difference, the shop never refunds a negative amount.
func (r *ReturnRecord) NetRefund() float64 {
	refund := r.RefundAmount
	if refund == 0 {
		refund = r.ItemsValue() - r.ExchangeValue()
	}
	if refund < 0 {
		return 0
	}
	return refund
}

// ReturnLogEntry is the append-only audit trail of return actions. Deleting
// a return appends a "deleted" entry; the "created" entry is never removed,
// consumers reconcile the two by ReturnID.
type ReturnLogEntry struct {
	ID         string       `gorm:"primaryKey;size:32" json:"id"`
	ReturnID   string       `gorm:"index;size:32" json:"return_id"`
	Action     string       `gorm:"size:16" json:"action"`
	Record     ReturnRecord `gorm:"serializer:json" json:"record"`
	ActionBy   string       `json:"action_by"`
	ActionDate string       `gorm:"index;size:10" json:"action_date"`
	ActionTime string       `gorm:"size:8" json:"action_time"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (ReturnLogEntry) TableName() string {
	return "returns_log"
}
