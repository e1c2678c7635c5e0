package backup

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/localdb"
	"github.com/cafedesk/cafedesk/internal/mirror"
)

func testStore(t *testing.T) *localdb.Store {
	t.Helper()
	store, err := localdb.Open(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testMirror(t *testing.T, store *localdb.Store) *mirror.Mirror {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "mirror.db")),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(domain.Tables...); err != nil {
		t.Fatal(err)
	}
	return mirror.New(db, store)
}

func at(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 29, hour, 0, 0, 0, time.UTC)
	}
}

func TestRunSkipsWhenUnchanged(t *testing.T) {
	store := testStore(t)
	if err := store.SaveProducts([]domain.Product{{ID: "p1", Name: "Latte", SellPrice: 4}}); err != nil {
		t.Fatal(err)
	}
	s := &Scheduler{Store: store, Mirror: testMirror(t, store), Retention: 24, Now: at(10)}

	took, err := s.Run()
	if err != nil || !took {
		t.Fatalf("first run took=%v err=%v, want snapshot", took, err)
	}
	s.Now = at(11)
	took, err = s.Run()
	if err != nil || took {
		t.Fatalf("second run took=%v err=%v, want skip on identical data", took, err)
	}

	snaps, err := s.Mirror.Snapshots()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 1 {
		t.Fatalf("snapshot history = %d rows, want 1", len(snaps))
	}
	if _, err := s.Mirror.LoadSnapshot(domain.SnapshotLatestID); err != nil {
		t.Fatalf("latest row missing: %v", err)
	}
}

func TestRunAfterChangeTakesNewSnapshot(t *testing.T) {
	store := testStore(t)
	s := &Scheduler{Store: store, Mirror: testMirror(t, store), Retention: 24, Now: at(10)}

	if err := store.SaveSales([]domain.Sale{{ID: "s1", Total: 10}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveSales([]domain.Sale{{ID: "s1", Total: 10}, {ID: "s2", Total: 5}}); err != nil {
		t.Fatal(err)
	}
	s.Now = at(11)
	took, err := s.Run()
	if err != nil || !took {
		t.Fatalf("run after change took=%v err=%v", took, err)
	}
	snaps, _ := s.Mirror.Snapshots()
	if len(snaps) != 2 {
		t.Fatalf("snapshot history = %d rows, want 2", len(snaps))
	}
}

func TestOfflineCachesPendingThenFlushes(t *testing.T) {
	store := testStore(t)
	if err := store.SaveProducts([]domain.Product{{ID: "p1", Name: "Latte"}}); err != nil {
		t.Fatal(err)
	}

	offline := &Scheduler{Store: store, Mirror: mirror.New(nil, store), Retention: 24, Now: at(10)}
	took, err := offline.Run()
	if err != nil || !took {
		t.Fatalf("offline run took=%v err=%v, want cached snapshot", took, err)
	}
	var pending domain.BackupSnapshot
	ok, err := store.GetMeta(localdb.MetaPendingBackup, &pending)
	if err != nil || !ok {
		t.Fatalf("pending snapshot not cached (ok=%v err=%v)", ok, err)
	}

	// Mirror comes back; the unchanged-data skip path still ships the
	// stranded snapshot.
	online := &Scheduler{Store: store, Mirror: testMirror(t, store), Retention: 24, Now: at(11)}
	took, err = online.Run()
	if err != nil || took {
		t.Fatalf("online run took=%v err=%v, want flush without new snapshot", took, err)
	}
	snaps, _ := online.Mirror.Snapshots()
	if len(snaps) != 1 || snaps[0].ID != pending.ID {
		t.Fatalf("flushed snapshots = %+v, want cached %s", snaps, pending.ID)
	}
	if ok, _ := store.GetMeta(localdb.MetaPendingBackup, &pending); ok {
		t.Fatal("pending snapshot not cleared after flush")
	}
}

func TestRetentionPrunesOldest(t *testing.T) {
	store := testStore(t)
	s := &Scheduler{Store: store, Mirror: testMirror(t, store), Retention: 2}

	for i := 0; i < 3; i++ {
		s.Now = at(10 + i)
		if err := store.SaveSales([]domain.Sale{{ID: "s", Total: float64(i)}}); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Run(); err != nil {
			t.Fatal(err)
		}
	}
	snaps, err := s.Mirror.Snapshots()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 2 {
		t.Fatalf("snapshot history = %d rows, want 2 after prune", len(snaps))
	}
	// Newest first; the 10:00 snapshot is gone.
	if snaps[0].CreatedAt.Hour() != 12 || snaps[1].CreatedAt.Hour() != 11 {
		t.Fatalf("kept snapshots at %v and %v, want 12:00 and 11:00",
			snaps[0].CreatedAt, snaps[1].CreatedAt)
	}
	if _, err := s.Mirror.LoadSnapshot(domain.SnapshotLatestID); err != nil {
		t.Fatalf("latest row pruned: %v", err)
	}
}

func TestRestoreOverwritesLocal(t *testing.T) {
	store := testStore(t)
	s := &Scheduler{Store: store, Mirror: testMirror(t, store), Retention: 24, Now: at(10)}

	if err := store.SaveProducts([]domain.Product{{ID: "p1", Name: "Latte", SellPrice: 4}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Run(); err != nil {
		t.Fatal(err)
	}

	if err := store.SaveProducts(nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Restore(domain.SnapshotLatestID); err != nil {
		t.Fatal(err)
	}
	products, err := store.Products()
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].Name != "Latte" {
		t.Fatalf("restored products = %+v", products)
	}
}
