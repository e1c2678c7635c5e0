package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&Worker{},
	// Catalog
	&Product{},
	&InventoryItem{},
	// Trade
	&Sale{},
	&ReturnRecord{},
	&ReturnLogEntry{},
	// Staff
	&AttendanceRecord{},
	&WorkerExpense{},
	&WorkerTransaction{},
	&Expense{},
	// Audit
	&ShiftResetRecord{},
	&BackupSnapshot{},
}
