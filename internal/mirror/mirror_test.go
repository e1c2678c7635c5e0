package mirror

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/localdb"
)

func newTestMirror(t *testing.T) (*Mirror, *localdb.Store) {
	t.Helper()
	store, err := localdb.Open(filepath.Join(t.TempDir(), "cafedesk.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "mirror.sqlite")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open mirror db: %v", err)
	}
	if err := db.AutoMigrate(domain.Tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db, store), store
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestPushReplacesAndPropagatesPurges(t *testing.T) {
	m, store := newTestMirror(t)

	sales := []domain.Sale{
		{ID: "s1", Total: 10, Date: "2026-08-29"},
		{ID: "s2", Total: 20, Date: "2026-08-29"},
	}
	if err := store.SaveSales(sales); err != nil {
		t.Fatalf("save sales: %v", err)
	}
	if err := m.PushSales(); err != nil {
		t.Fatalf("push: %v", err)
	}
	if n := countRows(t, m.db, &domain.Sale{}); n != 2 {
		t.Fatalf("expected 2 mirrored sales, got %d", n)
	}

	// Purging locally must shrink the mirror on the next push.
	if err := store.SaveSales(sales[:1]); err != nil {
		t.Fatalf("save sales: %v", err)
	}
	if err := m.PushSales(); err != nil {
		t.Fatalf("push: %v", err)
	}
	if n := countRows(t, m.db, &domain.Sale{}); n != 1 {
		t.Fatalf("purge not propagated, got %d rows", n)
	}
}

func TestPushShiftResetsIsAppendOnly(t *testing.T) {
	m, store := newTestMirror(t)

	// A row from another terminal already lives in the mirror.
	remote := domain.ShiftResetRecord{ID: "remote1", WorkerName: "other", ResetDate: "2026-08-28"}
	if err := m.db.Create(&remote).Error; err != nil {
		t.Fatalf("seed remote row: %v", err)
	}

	local := domain.ShiftResetRecord{ID: "local1", WorkerName: "sara", ResetDate: "2026-08-29"}
	if err := store.SaveShiftResets([]domain.ShiftResetRecord{local}); err != nil {
		t.Fatalf("save resets: %v", err)
	}
	if err := m.PushShiftResets(); err != nil {
		t.Fatalf("push resets: %v", err)
	}
	if n := countRows(t, m.db, &domain.ShiftResetRecord{}); n != 2 {
		t.Fatalf("expected remote row to survive, got %d rows", n)
	}

	// A second push of the same log must not duplicate rows.
	if err := m.PushShiftResets(); err != nil {
		t.Fatalf("push resets: %v", err)
	}
	if n := countRows(t, m.db, &domain.ShiftResetRecord{}); n != 2 {
		t.Fatalf("duplicate rows after repeated push, got %d", n)
	}
}

func TestImportAllHonorsResetSentinel(t *testing.T) {
	m, store := newTestMirror(t)
	today := "2026-08-29"

	mirrorSales := []domain.Sale{
		{ID: "s1", Total: 10, Date: today},
		{ID: "s2", Total: 20, Date: "2026-08-28"},
	}
	if err := m.db.Create(&mirrorSales).Error; err != nil {
		t.Fatalf("seed mirror sales: %v", err)
	}
	if err := store.SaveResetSentinel(domain.ResetSentinel{Date: today}); err != nil {
		t.Fatalf("save sentinel: %v", err)
	}

	if err := m.ImportAll(func() string { return today }); err != nil {
		t.Fatalf("import: %v", err)
	}
	sales, err := store.Sales()
	if err != nil {
		t.Fatalf("load sales: %v", err)
	}
	if len(sales) != 1 || sales[0].ID != "s2" {
		t.Fatalf("today's purged rows re-imported: %+v", sales)
	}
}

func TestSnapshotsExcludeLatestAndPrune(t *testing.T) {
	m, _ := newTestMirror(t)

	for _, snap := range []domain.BackupSnapshot{
		{ID: domain.SnapshotLatestID, Data: "{}"},
		{ID: "bk20260829T100000", Data: "{}"},
		{ID: "bk20260829T110000", Data: "{}"},
		{ID: "bk20260829T120000", Data: "{}"},
	} {
		if err := m.db.Create(&snap).Error; err != nil {
			t.Fatalf("seed snapshot: %v", err)
		}
	}

	snaps, err := m.Snapshots()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("latest row must be hidden from history, got %d", len(snaps))
	}

	if err := m.PruneSnapshots(2); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n := countRows(t, m.db, &domain.BackupSnapshot{}); n != 3 {
		t.Fatalf("expected latest + 2 kept snapshots, got %d rows", n)
	}
	if _, err := m.LoadSnapshot(domain.SnapshotLatestID); err != nil {
		t.Fatal("latest snapshot must never be pruned")
	}
}
