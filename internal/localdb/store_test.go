package localdb

import (
	"path/filepath"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/cafedesk/cafedesk/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cafedesk.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCollectionRoundTrip(t *testing.T) {
	store := openTestStore(t)

	sales := []domain.Sale{
		{ID: "s1", Total: 42.5, WorkerID: 7, WorkerName: "sara", Date: "2026-08-29", Time: "10:15"},
		{ID: "s2", Total: 12, WorkerID: 7, WorkerName: "sara", Date: "2026-08-29", Time: "11:00"},
	}
	if err := store.SaveSales(sales); err != nil {
		t.Fatalf("save sales: %v", err)
	}
	got, err := store.Sales()
	if err != nil {
		t.Fatalf("load sales: %v", err)
	}
	if len(got) != 2 || got[0].ID != "s1" || got[1].Total != 12 {
		t.Fatalf("unexpected sales after round trip: %+v", got)
	}
}

func TestGetMissingCollectionYieldsEmpty(t *testing.T) {
	store := openTestStore(t)

	products, err := store.Products()
	if err != nil {
		t.Fatalf("load products: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("expected empty products, got %d", len(products))
	}
}

func TestLegacyItemRefDecoding(t *testing.T) {
	store := openTestStore(t)

	// Rows written by old exports carry string refs, not objects.
	raw := []byte(`[{"id":"s1","items":[{"ref":"inv_milk","quantity":2},{"ref":"product_latte","quantity":1}],"total":30}]`)
	if err := store.PutRaw(ColSales, raw); err != nil {
		t.Fatalf("put raw: %v", err)
	}
	sales, err := store.Sales()
	if err != nil {
		t.Fatalf("load sales: %v", err)
	}
	if len(sales) != 1 || len(sales[0].Items) != 2 {
		t.Fatalf("unexpected sales: %+v", sales)
	}
	if ref := sales[0].Items[0].Ref; ref.Kind != domain.RefInventory || ref.ID != "milk" {
		t.Fatalf("legacy inventory ref not decoded: %+v", ref)
	}
	if ref := sales[0].Items[1].Ref; ref.Kind != domain.RefProduct || ref.ID != "latte" {
		t.Fatalf("legacy product ref not decoded: %+v", ref)
	}
}

func TestExportAllCoversEveryCollection(t *testing.T) {
	store := openTestStore(t)
	if err := store.SaveWorkers([]domain.Worker{{ID: 1, Username: "admin"}}); err != nil {
		t.Fatalf("save workers: %v", err)
	}

	payload, err := store.ExportAll()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, name := range Collections() {
		raw, ok := payload[name]
		if !ok {
			t.Fatalf("collection %s missing from export", name)
		}
		if len(raw) == 0 {
			t.Fatalf("collection %s exported empty payload", name)
		}
	}
	if string(payload[ColProducts]) != "[]" {
		t.Fatalf("empty collection should export as [], got %s", payload[ColProducts])
	}
}

func TestImportAllIgnoresUnknownKeys(t *testing.T) {
	store := openTestStore(t)

	payload := map[string]jsoniter.RawMessage{
		ColInventory: []byte(`[{"id":"milk","name":"Milk","quantity":3}]`),
		"gadgets":    []byte(`[{"id":"x"}]`),
	}
	if err := store.ImportAll(payload); err != nil {
		t.Fatalf("import: %v", err)
	}
	inventory, err := store.Inventory()
	if err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	if len(inventory) != 1 || inventory[0].ID != "milk" {
		t.Fatalf("imported inventory wrong: %+v", inventory)
	}
}

func TestSystemResetSparesWorkersAndResetLog(t *testing.T) {
	store := openTestStore(t)
	if err := store.SaveWorkers([]domain.Worker{{ID: 1, Username: "admin"}}); err != nil {
		t.Fatalf("save workers: %v", err)
	}
	if err := store.SaveShiftResets([]domain.ShiftResetRecord{{ID: "r1", ResetDate: "2026-08-28"}}); err != nil {
		t.Fatalf("save resets: %v", err)
	}
	if err := store.SaveSales([]domain.Sale{{ID: "s1", Total: 10}}); err != nil {
		t.Fatalf("save sales: %v", err)
	}
	if err := store.SaveInventory([]domain.InventoryItem{{ID: "milk", Quantity: 2}}); err != nil {
		t.Fatalf("save inventory: %v", err)
	}

	if err := store.SystemReset(); err != nil {
		t.Fatalf("system reset: %v", err)
	}

	if sales, _ := store.Sales(); len(sales) != 0 {
		t.Fatalf("sales survived reset: %+v", sales)
	}
	if inventory, _ := store.Inventory(); len(inventory) != 0 {
		t.Fatalf("inventory survived reset: %+v", inventory)
	}
	if workers, _ := store.Workers(); len(workers) != 1 {
		t.Fatal("workers must survive a system reset")
	}
	if resets, _ := store.ShiftResets(); len(resets) != 1 {
		t.Fatal("shift reset log must survive a system reset")
	}
}

func TestMetaRoundTrip(t *testing.T) {
	store := openTestStore(t)

	if _, found, err := store.LastDataHash(); err != nil || found {
		t.Fatalf("fresh store should have no data hash (found=%v err=%v)", found, err)
	}
	if err := store.SaveLastDataHash(12345); err != nil {
		t.Fatalf("save hash: %v", err)
	}
	h, found, err := store.LastDataHash()
	if err != nil || !found || h != 12345 {
		t.Fatalf("hash round trip failed: h=%d found=%v err=%v", h, found, err)
	}

	at := time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)
	if err := store.SaveLastBackupAt(at); err != nil {
		t.Fatalf("save backup time: %v", err)
	}
	got, found, err := store.LastBackupAt()
	if err != nil || !found || !got.Equal(at) {
		t.Fatalf("backup time round trip failed: got=%v found=%v err=%v", got, found, err)
	}

	sen := domain.ResetSentinel{Date: "2026-08-29", Timestamp: at}
	if err := store.SaveResetSentinel(sen); err != nil {
		t.Fatalf("save sentinel: %v", err)
	}
	loaded, found, err := store.ResetSentinel()
	if err != nil || !found || loaded.Date != sen.Date {
		t.Fatalf("sentinel round trip failed: %+v found=%v err=%v", loaded, found, err)
	}

	if err := store.PutMeta(MetaCurrentUser, "sara"); err != nil {
		t.Fatalf("save current user: %v", err)
	}
	var user string
	if found, err := store.GetMeta(MetaCurrentUser, &user); err != nil || !found || user != "sara" {
		t.Fatalf("current user round trip failed: %q found=%v err=%v", user, found, err)
	}

	if err := store.DeleteMeta(MetaResetSentinel); err != nil {
		t.Fatalf("delete meta: %v", err)
	}
	if _, found, _ := store.ResetSentinel(); found {
		t.Fatal("sentinel still present after delete")
	}
}
