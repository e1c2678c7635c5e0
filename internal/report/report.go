package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/montanaflynn/stats"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/shift"
)

// deletedMark is the one canonical rendering for returns whose log carries a
// deleted entry. Every view uses it; nothing is hard-deleted.
const deletedMark = "[deleted]"

// NetSales is total sales minus the refunds of returns still in force.
// A return that was later tagged deleted does not reduce net sales.
func NetSales(sales []domain.Sale, returnsLog []domain.ReturnLogEntry) float64 {
	var total float64
	for i := range sales {
		total += sales[i].Total
	}
	for _, ret := range shift.ActiveReturns(returnsLog) {
		total -= ret.NetRefund()
	}
	return total
}

// RenderShiftReport produces the plain-text snapshot stored in the reset log
// and mailed out on shift close.
func RenderShiftReport(view shift.View, worker domain.Worker, date, clock string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shift report — %s — %s %s\n", worker.Name, date, clock)
	if view.Window.CheckIn != "" {
		fmt.Fprintf(&b, "Shift start: %s\n", view.Window.CheckIn)
		in, okIn := shift.ClockHours(view.Window.CheckIn)
		out, okOut := shift.ClockHours(clock)
		if okIn && okOut {
			hours := out - in
			if hours < 0 {
				hours += 24
			}
			fmt.Fprintf(&b, "Hours worked: %.2f\n", hours)
		}
	} else {
		b.WriteString("Shift start: full day\n")
	}

	var salesTotal float64
	for i := range view.Sales {
		salesTotal += view.Sales[i].Total
	}
	fmt.Fprintf(&b, "\nSales: %d receipts, total %.2f\n", len(view.Sales), salesTotal)
	for i := range view.Sales {
		s := &view.Sales[i]
		fmt.Fprintf(&b, "  %s  %-12s %8.2f", s.Time, s.WorkerName, s.Total)
		if s.Discount != nil && s.Discount.Amount > 0 {
			fmt.Fprintf(&b, "  (discount %.2f)", s.Discount.Amount)
		}
		b.WriteByte('\n')
	}

	deleted := shift.DeletedReturnIDs(view.ReturnsLog)
	var refunds float64
	var returnLines []string
	for i := range view.ReturnsLog {
		e := &view.ReturnsLog[i]
		if e.Action != domain.ReturnActionCreated {
			continue
		}
		mark := ""
		if deleted[e.ReturnID] {
			mark = " " + deletedMark
		} else {
			refunds += e.Record.NetRefund()
		}
		returnLines = append(returnLines, fmt.Sprintf("  %s  %-8s refund %.2f%s",
			e.ActionTime, e.Record.Type, e.Record.NetRefund(), mark))
	}
	fmt.Fprintf(&b, "\nReturns: %d, refunds %.2f\n", len(returnLines), refunds)
	for _, line := range returnLines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	var drawn float64
	for i := range view.WorkerExpenses {
		drawn += view.WorkerExpenses[i].Amount
	}
	fmt.Fprintf(&b, "\nWorker expenses: %d, total %.2f\n", len(view.WorkerExpenses), drawn)
	for i := range view.WorkerExpenses {
		e := &view.WorkerExpenses[i]
		fmt.Fprintf(&b, "  %s  %-12s %8.2f  %s\n", e.Time, e.WorkerName, e.Amount, e.Reason)
	}

	fmt.Fprintf(&b, "\nNet cash: %.2f\n", salesTotal-refunds-drawn)

	b.WriteString("\nInventory movement:\n")
	end := make(map[string]domain.InventoryItem, len(view.InventoryEnd))
	for _, it := range view.InventoryEnd {
		end[it.ID] = it
	}
	for _, start := range view.InventoryStart {
		cur, ok := end[start.ID]
		if !ok || cur.Quantity == start.Quantity {
			continue
		}
		fmt.Fprintf(&b, "  %-16s %10.3f -> %10.3f %s\n",
			start.Name, start.Quantity, cur.Quantity, cur.Unit)
	}
	return b.String()
}

// PeriodSummary aggregates a date range for the reports screen.
type PeriodSummary struct {
	From           string             `json:"from"`
	To             string             `json:"to"`
	SalesCount     int                `json:"sales_count"`
	SalesTotal     float64            `json:"sales_total"`
	DiscountTotal  float64            `json:"discount_total"`
	RefundTotal    float64            `json:"refund_total"`
	NetSales       float64            `json:"net_sales"`
	ExpenseTotal   float64            `json:"expense_total"`
	WorkerDrawn    float64            `json:"worker_drawn"`
	MeanBasket     float64            `json:"mean_basket"`
	MaxBasket      float64            `json:"max_basket"`
	ByWorker       map[string]float64 `json:"by_worker"`
	DeletedReturns int                `json:"deleted_returns"`
}

// BuildPeriod summarizes every record whose day falls inside [from, to]
// (inclusive, day-string comparison).
func BuildPeriod(
	from, to string,
	sales []domain.Sale,
	returnsLog []domain.ReturnLogEntry,
	expenses []domain.Expense,
	workerExpenses []domain.WorkerExpense,
) PeriodSummary {
	inRange := func(day string) bool {
		return day >= from && day <= to
	}

	sum := PeriodSummary{From: from, To: to, ByWorker: map[string]float64{}}
	var baskets []float64
	var rangedLog []domain.ReturnLogEntry
	var rangedSales []domain.Sale

	for i := range sales {
		s := &sales[i]
		if !inRange(s.Date) {
			continue
		}
		rangedSales = append(rangedSales, *s)
		sum.SalesCount++
		sum.SalesTotal += s.Total
		sum.ByWorker[s.WorkerName] += s.Total
		if s.Discount != nil {
			sum.DiscountTotal += s.Discount.Amount
		}
		baskets = append(baskets, s.Total)
	}
	for i := range returnsLog {
		if inRange(returnsLog[i].ActionDate) {
			rangedLog = append(rangedLog, returnsLog[i])
		}
	}
	deleted := shift.DeletedReturnIDs(rangedLog)
	for _, ret := range shift.ActiveReturns(rangedLog) {
		sum.RefundTotal += ret.NetRefund()
	}
	sum.DeletedReturns = len(deleted)
	sum.NetSales = NetSales(rangedSales, rangedLog)

	for i := range expenses {
		if inRange(expenses[i].Date) {
			sum.ExpenseTotal += expenses[i].Amount
		}
	}
	for i := range workerExpenses {
		if inRange(workerExpenses[i].Date) {
			sum.WorkerDrawn += workerExpenses[i].Amount
		}
	}

	if len(baskets) > 0 {
		sum.MeanBasket, _ = stats.Mean(baskets)
		sum.MaxBasket, _ = stats.Max(baskets)
	}
	return sum
}

// ParsePeriod turns loosely formatted from/to query values into canonical day
// strings. Empty values default to today.
func ParsePeriod(fromStr, toStr string, now time.Time) (string, string, error) {
	today := now.Format("2006-01-02")
	from, to := today, today
	if fromStr != "" {
		t, err := dateparse.ParseAny(fromStr)
		if err != nil {
			return "", "", err
		}
		from = t.Format("2006-01-02")
	}
	if toStr != "" {
		t, err := dateparse.ParseAny(toStr)
		if err != nil {
			return "", "", err
		}
		to = t.Format("2006-01-02")
	}
	if to < from {
		from, to = to, from
	}
	return from, to, nil
}

// LowStock lists inventory at or below the threshold.
func LowStock(inventory []domain.InventoryItem, threshold float64) []domain.InventoryItem {
	var out []domain.InventoryItem
	for _, it := range inventory {
		if it.Quantity <= threshold {
			out = append(out, it)
		}
	}
	return out
}

// RenderLowStockReport renders the low-stock email body.
func RenderLowStockReport(items []domain.InventoryItem, threshold float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Low stock report (threshold %.3f)\n\n", threshold)
	if len(items) == 0 {
		b.WriteString("All inventory above threshold.\n")
		return b.String()
	}
	for _, it := range items {
		fmt.Fprintf(&b, "  %-16s %10.3f %s\n", it.Name, it.Quantity, it.Unit)
	}
	return b.String()
}
