package domain

import "time"

// WorkerExpense is cash drawn by a worker during a shift. Distinct from the
// business Expense below and purged by shift resets.
type WorkerExpense struct {
	ID         string    `gorm:"primaryKey;size:32" json:"id"`
	WorkerID   int64     `gorm:"index" json:"worker_id,string"`
	WorkerName string    `json:"worker_name"`
	Amount     float64   `json:"amount"`
	Reason     string    `json:"reason"`
	Date       string    `gorm:"index;size:10" json:"date"`
	Time       string    `gorm:"size:8" json:"time"`
	CreatedAt  time.Time `json:"created_at"`
}

func (WorkerExpense) TableName() string {
	return "worker_expenses"
}

const (
	TransactionAdvance = "advance"
	TransactionBonus   = "bonus"
)

// WorkerTransaction is a payroll adjustment. Not touched by shift resets.
type WorkerTransaction struct {
	ID         string    `gorm:"primaryKey;size:32" json:"id"`
	WorkerID   int64     `gorm:"index" json:"worker_id,string"`
	WorkerName string    `json:"worker_name"`
	Type       string    `gorm:"size:16" json:"type"`
	Amount     float64   `json:"amount"`
	Note       string    `json:"note"`
	Date       string    `gorm:"index;size:10" json:"date"`
	CreatedAt  time.Time `json:"created_at"`
}

func (WorkerTransaction) TableName() string {
	return "transactions"
}

// Expense is a business expense (supplies, rent, maintenance).
type Expense struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason"`
	Category  string    `gorm:"size:64" json:"category"`
	Date      string    `gorm:"index;size:10" json:"date"`
	Time      string    `gorm:"size:8" json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

func (Expense) TableName() string {
	return "expenses"
}
