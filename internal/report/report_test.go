package report

import (
	"strings"
	"testing"
	"time"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/shift"
)

func TestNetSalesIgnoresDeletedReturns(t *testing.T) {
	sales := []domain.Sale{{ID: "s1", Date: "2026-08-29", Total: 100}}
	log := []domain.ReturnLogEntry{
		{ID: "l1", ReturnID: "r1", Action: domain.ReturnActionCreated,
			Record: domain.ReturnRecord{ID: "r1", RefundAmount: 30}},
		{ID: "l2", ReturnID: "r1", Action: domain.ReturnActionDeleted,
			Record: domain.ReturnRecord{ID: "r1", RefundAmount: 30}},
	}
	if net := NetSales(sales, log); net != 100 {
		t.Fatalf("net sales = %v, want 100 (deleted return must not reduce net)", net)
	}
	// Without the deleted entry the refund does count.
	if net := NetSales(sales, log[:1]); net != 70 {
		t.Fatalf("net sales = %v, want 70", net)
	}
}

func TestExchangeRefundFlooredAtZero(t *testing.T) {
	// Exchange where the replacement is worth more than the returned items:
	// refund never goes negative.
	rec := domain.ReturnRecord{
		ID:   "r1",
		Type: domain.ReturnTypeExchange,
		Items: []domain.SaleItem{
			{Quantity: 1, UnitPrice: 10, Total: 10},
		},
		ExchangeItems: []domain.SaleItem{
			{Quantity: 1, UnitPrice: 25, Total: 25},
		},
	}
	if r := rec.NetRefund(); r != 0 {
		t.Fatalf("exchange net refund = %v, want 0", r)
	}
	log := []domain.ReturnLogEntry{
		{ID: "l1", ReturnID: "r1", Action: domain.ReturnActionCreated, Record: rec},
	}
	sales := []domain.Sale{{ID: "s1", Total: 50}}
	if net := NetSales(sales, log); net != 50 {
		t.Fatalf("net sales = %v, want 50", net)
	}
}

func TestBuildPeriodAggregates(t *testing.T) {
	sales := []domain.Sale{
		{ID: "s1", Date: "2026-08-28", Time: "10:00", WorkerName: "sara", Total: 60,
			Discount: &domain.Discount{Percent: 10, Amount: 6}},
		{ID: "s2", Date: "2026-08-29", Time: "11:00", WorkerName: "omar", Total: 40},
		{ID: "s3", Date: "2026-09-01", Time: "09:00", WorkerName: "sara", Total: 999},
	}
	log := []domain.ReturnLogEntry{
		{ID: "l1", ReturnID: "r1", Action: domain.ReturnActionCreated, ActionDate: "2026-08-29",
			Record: domain.ReturnRecord{ID: "r1", RefundAmount: 15}},
	}
	expenses := []domain.Expense{
		{ID: "e1", Date: "2026-08-29", Amount: 20},
		{ID: "e2", Date: "2026-09-02", Amount: 500},
	}
	workerExpenses := []domain.WorkerExpense{
		{ID: "we1", Date: "2026-08-28", Amount: 10},
	}

	sum := BuildPeriod("2026-08-28", "2026-08-29", sales, log, expenses, workerExpenses)
	if sum.SalesCount != 2 || sum.SalesTotal != 100 {
		t.Fatalf("sales count=%d total=%v, want 2/100", sum.SalesCount, sum.SalesTotal)
	}
	if sum.RefundTotal != 15 || sum.NetSales != 85 {
		t.Fatalf("refund=%v net=%v, want 15/85", sum.RefundTotal, sum.NetSales)
	}
	if sum.DiscountTotal != 6 || sum.ExpenseTotal != 20 || sum.WorkerDrawn != 10 {
		t.Fatalf("discount=%v expense=%v drawn=%v", sum.DiscountTotal, sum.ExpenseTotal, sum.WorkerDrawn)
	}
	if sum.MeanBasket != 50 || sum.MaxBasket != 60 {
		t.Fatalf("mean=%v max=%v, want 50/60", sum.MeanBasket, sum.MaxBasket)
	}
	if sum.ByWorker["sara"] != 60 || sum.ByWorker["omar"] != 40 {
		t.Fatalf("by worker = %v", sum.ByWorker)
	}
}

func TestParsePeriod(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	from, to, err := ParsePeriod("", "", now)
	if err != nil || from != "2026-08-29" || to != "2026-08-29" {
		t.Fatalf("defaults = %s..%s (%v)", from, to, err)
	}
	from, to, err = ParsePeriod("08/01/2026", "2026-08-15", now)
	if err != nil || from != "2026-08-01" || to != "2026-08-15" {
		t.Fatalf("parsed = %s..%s (%v)", from, to, err)
	}
	// Swapped bounds are normalized rather than rejected.
	from, to, err = ParsePeriod("2026-08-20", "2026-08-10", now)
	if err != nil || from != "2026-08-10" || to != "2026-08-20" {
		t.Fatalf("swapped = %s..%s (%v)", from, to, err)
	}
	if _, _, err = ParsePeriod("not a date", "", now); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRenderShiftReportMarksDeletedReturns(t *testing.T) {
	ret := domain.ReturnRecord{ID: "r1", Type: domain.ReturnTypeReturn, RefundAmount: 30,
		WorkerID: 7, Date: "2026-08-29", Time: "10:30"}
	view := shift.View{
		Window: shift.Window{WorkerID: 7, Date: "2026-08-29", CheckIn: "09:00"},
		Sales:  []domain.Sale{{ID: "s1", Time: "10:00", WorkerName: "sara", Total: 100}},
		ReturnsLog: []domain.ReturnLogEntry{
			{ID: "l1", ReturnID: "r1", Action: domain.ReturnActionCreated, Record: ret,
				ActionDate: "2026-08-29", ActionTime: "10:30"},
			{ID: "l2", ReturnID: "r1", Action: domain.ReturnActionDeleted, Record: ret,
				ActionDate: "2026-08-29", ActionTime: "11:00"},
		},
	}
	worker := domain.Worker{ID: 7, Name: "sara"}
	out := RenderShiftReport(view, worker, "2026-08-29", "18:00")

	if !strings.Contains(out, deletedMark) {
		t.Fatalf("deleted return not marked:\n%s", out)
	}
	if !strings.Contains(out, "Hours worked: 9.00") {
		t.Fatalf("worked hours missing from snapshot:\n%s", out)
	}
	// The deleted return stays visible but its refund is excluded from cash.
	if !strings.Contains(out, "refunds 0.00") {
		t.Fatalf("deleted refund counted in totals:\n%s", out)
	}
	if !strings.Contains(out, "Net cash: 100.00") {
		t.Fatalf("net cash wrong:\n%s", out)
	}
}

func TestLowStock(t *testing.T) {
	inv := []domain.InventoryItem{
		{ID: "milk", Name: "Milk", Quantity: 2, Unit: "L"},
		{ID: "beans", Name: "Beans", Quantity: 50, Unit: "kg"},
		{ID: "cups", Name: "Cups", Quantity: 5, Unit: "pc"},
	}
	low := LowStock(inv, 5)
	if len(low) != 2 {
		t.Fatalf("low stock items = %d, want 2", len(low))
	}
	body := RenderLowStockReport(low, 5)
	if !strings.Contains(body, "Milk") || !strings.Contains(body, "Cups") {
		t.Fatalf("report body missing items:\n%s", body)
	}
}
