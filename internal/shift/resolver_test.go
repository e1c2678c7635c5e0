package shift

import (
	"testing"

	"github.com/cafedesk/cafedesk/internal/domain"
)

func TestNormalizeClock(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"09:00", "09:00"},
		{"9:05", "09:05"},
		{"09:00:33", "09:00"},
		{"٠٩:١٥", "09:15"},
		{"۲۱:۳۰", "21:30"},
		{"9:30 PM", "21:30"},
		{"12:00 AM", "00:00"},
		{"12:30 PM", "12:30"},
		{"٩:١٥ م", "21:15"},
		{"٩:١٥ ص", "09:15"},
		{"", ""},
		{"garbage", ""},
		{"25:00", ""},
	}
	for _, c := range cases {
		if got := NormalizeClock(c.in); got != c.want {
			t.Errorf("NormalizeClock(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWindowMonotonicity(t *testing.T) {
	attendance := []domain.AttendanceRecord{
		{ID: "a1", WorkerID: 7, Date: "2026-08-29", CheckIn: "09:00", Type: domain.AttendancePresent},
	}
	w := ResolveWindow(7, "2026-08-29", attendance)
	if w.CheckIn != "09:00" {
		t.Fatalf("window check-in = %q, want 09:00", w.CheckIn)
	}
	sales := []domain.Sale{
		{ID: "s1", WorkerID: 7, Date: "2026-08-29", Time: "08:30"},
		{ID: "s2", WorkerID: 7, Date: "2026-08-29", Time: "09:15"},
		{ID: "s3", WorkerID: 7, Date: "2026-08-29", Time: "10:00"},
	}
	view := BuildView(w, Scope{WorkerID: 7}, sales, nil, nil, nil, nil)
	if len(view.Sales) != 2 {
		t.Fatalf("in-window sales = %d, want 2", len(view.Sales))
	}
	for _, s := range view.Sales {
		if s.ID == "s1" {
			t.Fatal("pre-check-in sale included in shift")
		}
	}
}

func TestWindowFailsOpen(t *testing.T) {
	// No open attendance row: whole day counts.
	w := ResolveWindow(7, "2026-08-29", nil)
	if !w.Includes("00:01") {
		t.Fatal("window without check-in must include everything")
	}

	// Closed row (checked out) does not bound the window either.
	attendance := []domain.AttendanceRecord{
		{WorkerID: 7, Date: "2026-08-29", CheckIn: "09:00", CheckOut: "17:00", Type: domain.AttendancePresent},
	}
	w = ResolveWindow(7, "2026-08-29", attendance)
	if w.CheckIn != "" {
		t.Fatalf("closed attendance produced a bound %q", w.CheckIn)
	}

	// Malformed check-in: filter fails open rather than excluding records.
	attendance = []domain.AttendanceRecord{
		{WorkerID: 7, Date: "2026-08-29", CheckIn: "bogus", Type: domain.AttendancePresent},
	}
	w = ResolveWindow(7, "2026-08-29", attendance)
	if !w.Includes("00:01") {
		t.Fatal("malformed check-in must fail open")
	}
}

func TestActiveReturnsSetDifference(t *testing.T) {
	log := []domain.ReturnLogEntry{
		{ID: "l1", ReturnID: "r1", Action: domain.ReturnActionCreated, Record: domain.ReturnRecord{ID: "r1"}},
		{ID: "l2", ReturnID: "r2", Action: domain.ReturnActionCreated, Record: domain.ReturnRecord{ID: "r2"}},
		{ID: "l3", ReturnID: "r1", Action: domain.ReturnActionDeleted, Record: domain.ReturnRecord{ID: "r1"}},
	}
	active := ActiveReturns(log)
	if len(active) != 1 || active[0].ID != "r2" {
		t.Fatalf("active returns = %+v, want only r2", active)
	}
}

func TestStartOfShiftInventory(t *testing.T) {
	inventory := []domain.InventoryItem{{ID: "milk", Quantity: 7}}
	catalog := []domain.Product{}
	sales := []domain.Sale{{
		ID: "s1", WorkerID: 7, Date: "2026-08-29", Time: "10:00",
		Items: []domain.SaleItem{{Ref: domain.ItemRef{Kind: domain.RefInventory, ID: "milk"}, Quantity: 3}},
	}}
	w := Window{WorkerID: 7, Date: "2026-08-29", CheckIn: "09:00"}
	view := BuildView(w, Scope{WorkerID: 7}, sales, nil, nil, inventory, catalog)

	if view.InventoryEnd[0].Quantity != 7 {
		t.Fatalf("end inventory = %v, want 7", view.InventoryEnd[0].Quantity)
	}
	if view.InventoryStart[0].Quantity != 10 {
		t.Fatalf("start inventory = %v, want 10 (sale reversed)", view.InventoryStart[0].Quantity)
	}
}

func TestStartOfShiftReversesExchangeConsumption(t *testing.T) {
	// Pre-shift stock 10; an in-window exchange restored 2 and consumed 5
	// replacements, leaving 7. Back-computing the start must undo both sides.
	inventory := []domain.InventoryItem{{ID: "milk", Quantity: 7}}
	ret := domain.ReturnRecord{
		ID: "r1", WorkerID: 7, Type: domain.ReturnTypeExchange,
		Date: "2026-08-29", Time: "10:30",
		Items: []domain.SaleItem{
			{Ref: domain.ItemRef{Kind: domain.RefInventory, ID: "milk"}, Quantity: 2},
		},
		ExchangeItems: []domain.SaleItem{
			{Ref: domain.ItemRef{Kind: domain.RefInventory, ID: "milk"}, Quantity: 5},
		},
	}
	log := []domain.ReturnLogEntry{
		{ID: "l1", ReturnID: "r1", Action: domain.ReturnActionCreated, Record: ret,
			ActionDate: "2026-08-29", ActionTime: "10:30"},
	}
	w := Window{WorkerID: 7, Date: "2026-08-29", CheckIn: "09:00"}
	view := BuildView(w, Scope{WorkerID: 7}, nil, log, nil, inventory, nil)

	if view.InventoryStart[0].Quantity != 10 {
		t.Fatalf("start inventory = %v, want 10 (restore and exchange both reversed)",
			view.InventoryStart[0].Quantity)
	}
}

func TestStartOfShiftIgnoresDeletedReturns(t *testing.T) {
	inventory := []domain.InventoryItem{{ID: "milk", Quantity: 10}}
	ret := domain.ReturnRecord{
		ID: "r1", WorkerID: 7, Date: "2026-08-29", Time: "10:30",
		Items: []domain.SaleItem{{Ref: domain.ItemRef{Kind: domain.RefInventory, ID: "milk"}, Quantity: 2}},
	}
	log := []domain.ReturnLogEntry{
		{ID: "l1", ReturnID: "r1", Action: domain.ReturnActionCreated, Record: ret,
			ActionDate: "2026-08-29", ActionTime: "10:30"},
		{ID: "l2", ReturnID: "r1", Action: domain.ReturnActionDeleted, Record: ret,
			ActionDate: "2026-08-29", ActionTime: "11:00"},
	}
	w := Window{WorkerID: 7, Date: "2026-08-29", CheckIn: "09:00"}
	view := BuildView(w, Scope{WorkerID: 7}, nil, log, nil, inventory, nil)

	// Both entries stay visible for audit, but the deleted return must not
	// affect the start-of-shift computation.
	if len(view.ReturnsLog) != 2 {
		t.Fatalf("returns log entries = %d, want 2", len(view.ReturnsLog))
	}
	if view.InventoryStart[0].Quantity != 10 {
		t.Fatalf("start inventory = %v, want 10", view.InventoryStart[0].Quantity)
	}
}

func TestScopeAllWorkers(t *testing.T) {
	sales := []domain.Sale{
		{ID: "s1", WorkerID: 7, Date: "2026-08-29", Time: "10:00"},
		{ID: "s2", WorkerID: 8, Date: "2026-08-29", Time: "10:00"},
	}
	w := Window{WorkerID: 7, Date: "2026-08-29"}
	all := BuildView(w, Scope{}, sales, nil, nil, nil, nil)
	if len(all.Sales) != 2 {
		t.Fatalf("admin scope sales = %d, want 2", len(all.Sales))
	}
	own := BuildView(w, Scope{WorkerID: 7}, sales, nil, nil, nil, nil)
	if len(own.Sales) != 1 || own.Sales[0].ID != "s1" {
		t.Fatalf("worker scope sales = %+v, want only s1", own.Sales)
	}
}
