package localdb

import "github.com/cafedesk/cafedesk/internal/domain"

func (s *Store) Products() ([]domain.Product, error) {
	var out []domain.Product
	return out, s.Get(ColProducts, &out)
}

func (s *Store) SaveProducts(v []domain.Product) error {
	return s.Put(ColProducts, v)
}

func (s *Store) Inventory() ([]domain.InventoryItem, error) {
	var out []domain.InventoryItem
	return out, s.Get(ColInventory, &out)
}

func (s *Store) SaveInventory(v []domain.InventoryItem) error {
	return s.Put(ColInventory, v)
}

func (s *Store) Sales() ([]domain.Sale, error) {
	var out []domain.Sale
	return out, s.Get(ColSales, &out)
}

func (s *Store) SaveSales(v []domain.Sale) error {
	return s.Put(ColSales, v)
}

func (s *Store) Workers() ([]domain.Worker, error) {
	var out []domain.Worker
	return out, s.Get(ColWorkers, &out)
}

func (s *Store) SaveWorkers(v []domain.Worker) error {
	return s.Put(ColWorkers, v)
}

func (s *Store) Attendance() ([]domain.AttendanceRecord, error) {
	var out []domain.AttendanceRecord
	return out, s.Get(ColAttendance, &out)
}

func (s *Store) SaveAttendance(v []domain.AttendanceRecord) error {
	return s.Put(ColAttendance, v)
}

func (s *Store) Returns() ([]domain.ReturnRecord, error) {
	var out []domain.ReturnRecord
	return out, s.Get(ColReturns, &out)
}

func (s *Store) SaveReturns(v []domain.ReturnRecord) error {
	return s.Put(ColReturns, v)
}

func (s *Store) ReturnsLog() ([]domain.ReturnLogEntry, error) {
	var out []domain.ReturnLogEntry
	return out, s.Get(ColReturnsLog, &out)
}

func (s *Store) SaveReturnsLog(v []domain.ReturnLogEntry) error {
	return s.Put(ColReturnsLog, v)
}

func (s *Store) WorkerExpenses() ([]domain.WorkerExpense, error) {
	var out []domain.WorkerExpense
	return out, s.Get(ColWorkerExpenses, &out)
}

func (s *Store) SaveWorkerExpenses(v []domain.WorkerExpense) error {
	return s.Put(ColWorkerExpenses, v)
}

func (s *Store) Transactions() ([]domain.WorkerTransaction, error) {
	var out []domain.WorkerTransaction
	return out, s.Get(ColTransactions, &out)
}

func (s *Store) SaveTransactions(v []domain.WorkerTransaction) error {
	return s.Put(ColTransactions, v)
}

func (s *Store) Expenses() ([]domain.Expense, error) {
	var out []domain.Expense
	return out, s.Get(ColExpenses, &out)
}

func (s *Store) SaveExpenses(v []domain.Expense) error {
	return s.Put(ColExpenses, v)
}

func (s *Store) ShiftResets() ([]domain.ShiftResetRecord, error) {
	var out []domain.ShiftResetRecord
	return out, s.Get(ColShiftResets, &out)
}

func (s *Store) SaveShiftResets(v []domain.ShiftResetRecord) error {
	return s.Put(ColShiftResets, v)
}
