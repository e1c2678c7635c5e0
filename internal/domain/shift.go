package domain

import "time"

// ShiftResetRecord is the append-only log of shift resets. Rows are never
// updated or deleted, not even by a system reset.
type ShiftResetRecord struct {
	ID            string    `gorm:"primaryKey;size:32" json:"id"`
	WorkerID      int64     `gorm:"index" json:"worker_id,string"`
	WorkerName    string    `json:"worker_name"`
	ResetDate     string    `gorm:"index;size:10" json:"reset_date"`
	ResetTime     string    `gorm:"size:8" json:"reset_time"`
	ReportSummary string    `gorm:"type:text" json:"report_summary"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ShiftResetRecord) TableName() string {
	return "shift_resets"
}

// ResetSentinel marks that a reset happened on Date at Timestamp. The mirror
// importer consults it to avoid re-importing purged same-day records.
type ResetSentinel struct {
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}
