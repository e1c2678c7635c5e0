package domain

import "time"

// SnapshotLatestID is the id of the always-current snapshot row, kept
// separate from the timestamped history.
const SnapshotLatestID = "latest"

// BackupSnapshot stores one full dump of the local collections as a single
// opaque JSON blob per row.
type BackupSnapshot struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Data      string    `gorm:"type:text" json:"data"`
	Hash      uint64    `json:"hash,string"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (BackupSnapshot) TableName() string {
	return "backups"
}
