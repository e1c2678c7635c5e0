package shift

import (
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/localdb"
	"github.com/cafedesk/cafedesk/pkg/common"
)

// TopicResetCompleted is published after a successful reset; the mirror
// subscriber pushes the purge and the new audit row remotely.
const TopicResetCompleted = "shift.reset.completed"

// Notifier delivers the rendered report to the outside world. Failures are
// logged and never abort the reset.
type Notifier interface {
	SendShiftReport(workerName, date, report string) error
}

// RenderFunc turns a shift view into the immutable report text stored in the
// reset log.
type RenderFunc func(view View, worker domain.Worker, date, clock string) string

// Orchestrator closes out a shift: report snapshot first, audit row second,
// purge last. Ordered so that an interruption mid-reset can lose transactional
// rows but never the audit trail.
type Orchestrator struct {
	Store    *localdb.Store
	Notifier Notifier     // optional
	Bus      EventBus.Bus // optional
	Render   RenderFunc
	Now      func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Reset performs the shift close for the requesting worker. Admins purge
// every worker's records for today; regular workers only their own. The
// caller must already have re-verified the worker's password.
func (o *Orchestrator) Reset(requester domain.Worker) (*domain.ShiftResetRecord, error) {
	now := o.now()
	date := common.DateStr(now)
	clock := common.ClockStr(now)

	scope := Scope{WorkerID: requester.ID}
	if requester.IsAdmin() {
		scope = Scope{}
	}

	attendance, err := o.Store.Attendance()
	if err != nil {
		return nil, err
	}
	sales, err := o.Store.Sales()
	if err != nil {
		return nil, err
	}
	returns, err := o.Store.Returns()
	if err != nil {
		return nil, err
	}
	returnsLog, err := o.Store.ReturnsLog()
	if err != nil {
		return nil, err
	}
	workerExpenses, err := o.Store.WorkerExpenses()
	if err != nil {
		return nil, err
	}
	inventory, err := o.Store.Inventory()
	if err != nil {
		return nil, err
	}
	catalog, err := o.Store.Products()
	if err != nil {
		return nil, err
	}

	// The window must come from the untouched attendance rows: closing the
	// open row first would drop the shift bound and widen the snapshot to the
	// whole day.
	window := ResolveWindow(requester.ID, date, attendance)
	view := BuildView(window, scope, sales, returnsLog, workerExpenses, inventory, catalog)

	report := ""
	if o.Render != nil {
		report = o.Render(view, requester, date, clock)
	}

	// Audit row goes in before anything is purged.
	record := domain.ShiftResetRecord{
		ID:            common.UUID(),
		WorkerID:      requester.ID,
		WorkerName:    requester.Name,
		ResetDate:     date,
		ResetTime:     clock,
		ReportSummary: report,
		CreatedAt:     now,
	}
	resets, err := o.Store.ShiftResets()
	if err != nil {
		return nil, err
	}
	if err := o.Store.SaveShiftResets(append(resets, record)); err != nil {
		return nil, errors.Wrap(err, "append shift reset record")
	}

	if o.Notifier != nil && report != "" {
		if err := o.Notifier.SendShiftReport(requester.Name, date, report); err != nil {
			zap.L().Warn("shift report delivery failed",
				zap.String("worker", requester.Name), zap.Error(err))
		}
	}

	// Close the requester's open row ahead of the purge that removes it; the
	// computed hours survive in the completion log below.
	var hoursWorked float64
	for i := range attendance {
		rec := &attendance[i]
		if rec.WorkerID == requester.ID && rec.Date == date && rec.Open() {
			rec.CheckOut = clock
			rec.HoursWorked = hoursBetween(rec.CheckIn, clock)
			hoursWorked = rec.HoursWorked
			break
		}
	}

	o.purge(scope, date, attendance, sales, returns, returnsLog, workerExpenses)

	if err := o.Store.SaveResetSentinel(domain.ResetSentinel{Date: date, Timestamp: now}); err != nil {
		zap.L().Error("failed to persist reset sentinel", zap.Error(err))
	}

	if o.Bus != nil {
		o.Bus.Publish(TopicResetCompleted, record)
	}
	zap.L().Info("shift reset completed",
		zap.String("worker", requester.Name),
		zap.String("date", date),
		zap.Float64("hours_worked", hoursWorked),
		zap.Bool("all_workers", requester.IsAdmin()))
	return &record, nil
}

// purge removes today's in-scope transactional rows. Each collection is
// written independently; a failure is logged and the remaining collections
// are still attempted, matching the no-cross-step-transaction contract.
func (o *Orchestrator) purge(
	scope Scope,
	date string,
	attendance []domain.AttendanceRecord,
	sales []domain.Sale,
	returns []domain.ReturnRecord,
	returnsLog []domain.ReturnLogEntry,
	workerExpenses []domain.WorkerExpense,
) {
	keptAttendance := attendance[:0]
	for _, rec := range attendance {
		if rec.Date == date && scope.covers(rec.WorkerID) {
			continue
		}
		keptAttendance = append(keptAttendance, rec)
	}
	if err := o.Store.SaveAttendance(keptAttendance); err != nil {
		zap.L().Error("reset: attendance purge failed", zap.Error(err))
	}

	keptSales := sales[:0]
	for _, s := range sales {
		if s.Date == date && scope.covers(s.WorkerID) {
			continue
		}
		keptSales = append(keptSales, s)
	}
	if err := o.Store.SaveSales(keptSales); err != nil {
		zap.L().Error("reset: sales purge failed", zap.Error(err))
	}

	keptReturns := returns[:0]
	for _, r := range returns {
		if r.Date == date && scope.covers(r.WorkerID) {
			continue
		}
		keptReturns = append(keptReturns, r)
	}
	if err := o.Store.SaveReturns(keptReturns); err != nil {
		zap.L().Error("reset: returns purge failed", zap.Error(err))
	}

	keptLog := returnsLog[:0]
	for _, e := range returnsLog {
		if e.ActionDate == date && scope.covers(e.Record.WorkerID) {
			continue
		}
		keptLog = append(keptLog, e)
	}
	if err := o.Store.SaveReturnsLog(keptLog); err != nil {
		zap.L().Error("reset: returns log purge failed", zap.Error(err))
	}

	keptExpenses := workerExpenses[:0]
	for _, e := range workerExpenses {
		if e.Date == date && scope.covers(e.WorkerID) {
			continue
		}
		keptExpenses = append(keptExpenses, e)
	}
	if err := o.Store.SaveWorkerExpenses(keptExpenses); err != nil {
		zap.L().Error("reset: worker expense purge failed", zap.Error(err))
	}
}

// hoursBetween computes worked hours from check-in to check-out, wrapping
// past midnight when the difference is negative.
func hoursBetween(checkIn, checkOut string) float64 {
	in, okIn := ClockHours(checkIn)
	out, okOut := ClockHours(checkOut)
	if !okIn || !okOut {
		return 0
	}
	h := out - in
	if h < 0 {
		h += 24
	}
	return h
}
