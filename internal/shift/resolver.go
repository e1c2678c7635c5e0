package shift

import (
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/reconcile"
)

// Window is the time boundary of a worker's current shift. An empty CheckIn
// means the whole day counts as the shift (no open attendance row, or an
// unreadable check-in time — financial reporting prefers over-inclusion).
type Window struct {
	WorkerID int64
	Date     string
	CheckIn  string
}

// ResolveWindow derives the shift window from today's attendance rows: the
// first open row (present, checked in, not checked out) bounds the shift at
// its check-in time.
func ResolveWindow(workerID int64, date string, attendance []domain.AttendanceRecord) Window {
	w := Window{WorkerID: workerID, Date: date}
	for i := range attendance {
		rec := &attendance[i]
		if rec.WorkerID != workerID || rec.Date != date {
			continue
		}
		if rec.Open() {
			w.CheckIn = NormalizeClock(rec.CheckIn)
			break
		}
	}
	return w
}

// Includes reports whether a record timestamped clock falls inside the
// window. Unreadable clocks on either side fail open.
func (w Window) Includes(clock string) bool {
	if w.CheckIn == "" {
		return true
	}
	norm := NormalizeClock(clock)
	if norm == "" {
		return true
	}
	return norm >= w.CheckIn
}

// View is everything a shift report needs: the in-window records plus the
// inventory bracket around them.
type View struct {
	Window         Window
	Sales          []domain.Sale
	ReturnsLog     []domain.ReturnLogEntry // created and deleted entries, for audit display
	WorkerExpenses []domain.WorkerExpense
	InventoryStart []domain.InventoryItem
	InventoryEnd   []domain.InventoryItem
}

// DeletedReturnIDs collects the ids of returns that carry a deleted log entry.
func DeletedReturnIDs(log []domain.ReturnLogEntry) map[string]bool {
	deleted := make(map[string]bool)
	for i := range log {
		if log[i].Action == domain.ReturnActionDeleted {
			deleted[log[i].ReturnID] = true
		}
	}
	return deleted
}

// ActiveReturns resolves the audit log to the set of returns still in force:
// created entries whose id never shows up in a deleted entry.
func ActiveReturns(log []domain.ReturnLogEntry) []domain.ReturnRecord {
	deleted := DeletedReturnIDs(log)
	var active []domain.ReturnRecord
	for i := range log {
		if log[i].Action == domain.ReturnActionCreated && !deleted[log[i].ReturnID] {
			active = append(active, log[i].Record)
		}
	}
	return active
}

// Scope limits a view to one worker; zero means every worker (admin reset).
type Scope struct {
	WorkerID int64
}

func (s Scope) covers(workerID int64) bool {
	return s.WorkerID == 0 || s.WorkerID == workerID
}

// BuildView filters the day's records to the window and scope, then
// back-computes the start-of-shift inventory by running the reconciliation
// engine in reverse over every in-window sale and every active return.
// Nothing is mutated; InventoryEnd is the current inventory as given.
func BuildView(
	w Window,
	scope Scope,
	sales []domain.Sale,
	returnsLog []domain.ReturnLogEntry,
	workerExpenses []domain.WorkerExpense,
	inventory []domain.InventoryItem,
	catalog []domain.Product,
) View {
	view := View{Window: w, InventoryEnd: inventory}

	for i := range sales {
		s := &sales[i]
		if s.Date == w.Date && scope.covers(s.WorkerID) && w.Includes(s.Time) {
			view.Sales = append(view.Sales, *s)
		}
	}
	for i := range returnsLog {
		e := &returnsLog[i]
		if e.ActionDate == w.Date && scope.covers(e.Record.WorkerID) && w.Includes(e.ActionTime) {
			view.ReturnsLog = append(view.ReturnsLog, *e)
		}
	}
	for i := range workerExpenses {
		e := &workerExpenses[i]
		if e.Date == w.Date && scope.covers(e.WorkerID) && w.Includes(e.Time) {
			view.WorkerExpenses = append(view.WorkerExpenses, *e)
		}
	}

	start := inventory
	for i := range view.Sales {
		start = reconcile.Reverse(start, catalog, view.Sales[i].Items, reconcile.Consume)
	}
	for _, ret := range ActiveReturns(view.ReturnsLog) {
		start = reconcile.Reverse(start, catalog, ret.Items, reconcile.Restore)
		// An exchange also consumed its replacement items when created.
		if len(ret.ExchangeItems) > 0 {
			start = reconcile.Reverse(start, catalog, ret.ExchangeItems, reconcile.Consume)
		}
	}
	view.InventoryStart = start
	return view
}
