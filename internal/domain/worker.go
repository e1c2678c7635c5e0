package domain

import "time"

const (
	RoleAdmin  = "admin"
	RoleWorker = "worker"
)

// Worker is a staff account. Passwords are stored as bcrypt hashes and
// re-verified on destructive operations.
type Worker struct {
	ID           int64     `json:"id,string" form:"id"`
	Username     string    `gorm:"uniqueIndex;size:64" json:"username" form:"username"`
	Name         string    `gorm:"index" json:"name" form:"name"`
	Role         string    `gorm:"size:16" json:"role" form:"role"`
	PasswordHash string    `json:"-"`
	Salary       float64   `json:"salary" form:"salary"`
	Status       string    `gorm:"size:16" json:"status" form:"status"`
	LastLogin    time.Time `json:"last_login"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Worker) TableName() string {
	return "workers"
}

func (w *Worker) IsAdmin() bool {
	return w.Role == RoleAdmin
}

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLeave   = "leave"
)

const (
	ShiftMorning = "morning"
	ShiftEvening = "evening"
)

// AttendanceRecord is one worker-day. CheckIn/CheckOut are clock strings;
// legacy rows may carry Arabic-Indic digits or AM/PM markers, normalized by
// the shift resolver before comparison.
type AttendanceRecord struct {
	ID          string    `gorm:"primaryKey;size:32" json:"id"`
	WorkerID    int64     `gorm:"index" json:"worker_id,string"`
	WorkerName  string    `json:"worker_name"`
	Date        string    `gorm:"index;size:10" json:"date"`
	CheckIn     string    `gorm:"size:16" json:"check_in,omitempty"`
	CheckOut    string    `gorm:"size:16" json:"check_out,omitempty"`
	Type        string    `gorm:"size:16" json:"type"`
	Shift       string    `gorm:"size:16" json:"shift,omitempty"`
	HoursWorked float64   `json:"hours_worked,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (AttendanceRecord) TableName() string {
	return "attendance"
}

// Open reports whether this row is an open shift: present, checked in and
// not yet checked out.
func (a *AttendanceRecord) Open() bool {
	return a.Type == AttendancePresent && a.CheckIn != "" && a.CheckOut == ""
}
