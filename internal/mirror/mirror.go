package mirror

import (
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/localdb"
)

// Mirror replicates the local record store into the shared SQL database.
// The local store is the source of truth; every push is best effort and a
// failed push leaves the local data untouched.
type Mirror struct {
	db    *gorm.DB
	store *localdb.Store
	mu    sync.Mutex // serializes replace-all pushes per process
}

func New(db *gorm.DB, store *localdb.Store) *Mirror {
	return &Mirror{db: db, store: store}
}

// Available reports whether the shared database answers a ping right now.
func (m *Mirror) Available() bool {
	if m == nil || m.db == nil {
		return false
	}
	sqlDB, err := m.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}

// replaceAll swaps a mirrored table wholesale inside one transaction. The
// mirror carries no rows of its own, so delete-then-insert is the simplest
// way to propagate purges as well as additions.
func replaceAll[T any](db *gorm.DB, rows []T) error {
	var model T
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
}

func push[T any](m *Mirror, table string, load func() ([]T, error)) error {
	if !m.Available() {
		return errors.Errorf("mirror unavailable, %s not pushed", table)
	}
	rows, err := load()
	if err != nil {
		return errors.Wrapf(err, "load %s for mirror", table)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := replaceAll(m.db, rows); err != nil {
		return errors.Wrapf(err, "mirror push %s", table)
	}
	return nil
}

func (m *Mirror) PushProducts() error { return push(m, localdb.ColProducts, m.store.Products) }
func (m *Mirror) PushInventory() error {
	return push(m, localdb.ColInventory, m.store.Inventory)
}
func (m *Mirror) PushSales() error   { return push(m, localdb.ColSales, m.store.Sales) }
func (m *Mirror) PushWorkers() error { return push(m, localdb.ColWorkers, m.store.Workers) }
func (m *Mirror) PushAttendance() error {
	return push(m, localdb.ColAttendance, m.store.Attendance)
}
func (m *Mirror) PushReturns() error { return push(m, localdb.ColReturns, m.store.Returns) }
func (m *Mirror) PushReturnsLog() error {
	return push(m, localdb.ColReturnsLog, m.store.ReturnsLog)
}
func (m *Mirror) PushWorkerExpenses() error {
	return push(m, localdb.ColWorkerExpenses, m.store.WorkerExpenses)
}
func (m *Mirror) PushTransactions() error {
	return push(m, localdb.ColTransactions, m.store.Transactions)
}
func (m *Mirror) PushExpenses() error { return push(m, localdb.ColExpenses, m.store.Expenses) }

// PushShiftResets appends rather than replaces: the reset log is immutable
// and remote rows from other terminals must survive.
func (m *Mirror) PushShiftResets() error {
	if !m.Available() {
		return errors.New("mirror unavailable, shift resets not pushed")
	}
	rows, err := m.store.ShiftResets()
	if err != nil {
		return errors.Wrap(err, "load shift resets for mirror")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range rows {
		err := m.db.Where("id = ?", rows[i].ID).
			FirstOrCreate(&domain.ShiftResetRecord{}, rows[i]).Error
		if err != nil {
			return errors.Wrap(err, "mirror push shift reset")
		}
	}
	return nil
}

// FullSync pushes every collection concurrently over a small worker pool and
// returns the first error, after all pushes have been attempted.
func (m *Mirror) FullSync() error {
	if !m.Available() {
		return errors.New("mirror unavailable")
	}
	pushes := []struct {
		name string
		fn   func() error
	}{
		{localdb.ColProducts, m.PushProducts},
		{localdb.ColInventory, m.PushInventory},
		{localdb.ColSales, m.PushSales},
		{localdb.ColWorkers, m.PushWorkers},
		{localdb.ColAttendance, m.PushAttendance},
		{localdb.ColReturns, m.PushReturns},
		{localdb.ColReturnsLog, m.PushReturnsLog},
		{localdb.ColWorkerExpenses, m.PushWorkerExpenses},
		{localdb.ColTransactions, m.PushTransactions},
		{localdb.ColExpenses, m.PushExpenses},
		{localdb.ColShiftResets, m.PushShiftResets},
	}

	pool, err := ants.NewPool(4)
	if err != nil {
		return errors.Wrap(err, "mirror sync pool")
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error
	for _, p := range pushes {
		p := p
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := p.fn(); err != nil {
				zap.L().Warn("mirror sync push failed",
					zap.String("collection", p.name), zap.Error(err))
				once.Do(func() { firstErr = err })
			}
		})
		if submitErr != nil {
			wg.Done()
			once.Do(func() { firstErr = submitErr })
		}
	}
	wg.Wait()
	return firstErr
}

func importInto[T any](m *Mirror, save func([]T) error, filter func(*T) bool) error {
	var rows []T
	if err := m.db.Find(&rows).Error; err != nil {
		return err
	}
	if filter != nil {
		kept := rows[:0]
		for i := range rows {
			if filter(&rows[i]) {
				kept = append(kept, rows[i])
			}
		}
		rows = kept
	}
	return save(rows)
}

// ImportAll overwrites the local collections with the mirror's content,
// used on first boot of a fresh terminal. When a reset sentinel exists for
// today, today's transactional rows are skipped so a purge is not undone by
// a restart.
func (m *Mirror) ImportAll(now func() string) error {
	if !m.Available() {
		return errors.New("mirror unavailable")
	}
	sen, hasSentinel, err := m.store.ResetSentinel()
	if err != nil {
		return errors.Wrap(err, "read reset sentinel")
	}
	skipDay := ""
	if hasSentinel && now != nil && sen.Date == now() {
		skipDay = sen.Date
		zap.L().Info("mirror import honoring reset sentinel",
			zap.String("date", skipDay))
	}

	if err := importInto(m, m.store.SaveProducts, nil); err != nil {
		return errors.Wrap(err, "import products")
	}
	if err := importInto(m, m.store.SaveInventory, nil); err != nil {
		return errors.Wrap(err, "import inventory")
	}
	if err := importInto(m, m.store.SaveWorkers, nil); err != nil {
		return errors.Wrap(err, "import workers")
	}
	if err := importInto(m, m.store.SaveSales, func(s *domain.Sale) bool {
		return s.Date != skipDay
	}); err != nil {
		return errors.Wrap(err, "import sales")
	}
	if err := importInto(m, m.store.SaveAttendance, func(a *domain.AttendanceRecord) bool {
		return a.Date != skipDay
	}); err != nil {
		return errors.Wrap(err, "import attendance")
	}
	if err := importInto(m, m.store.SaveReturns, func(r *domain.ReturnRecord) bool {
		return r.Date != skipDay
	}); err != nil {
		return errors.Wrap(err, "import returns")
	}
	if err := importInto(m, m.store.SaveReturnsLog, func(e *domain.ReturnLogEntry) bool {
		return e.ActionDate != skipDay
	}); err != nil {
		return errors.Wrap(err, "import returns log")
	}
	if err := importInto(m, m.store.SaveWorkerExpenses, func(e *domain.WorkerExpense) bool {
		return e.Date != skipDay
	}); err != nil {
		return errors.Wrap(err, "import worker expenses")
	}
	if err := importInto(m, m.store.SaveTransactions, nil); err != nil {
		return errors.Wrap(err, "import transactions")
	}
	if err := importInto(m, m.store.SaveExpenses, nil); err != nil {
		return errors.Wrap(err, "import expenses")
	}
	if err := importInto(m, m.store.SaveShiftResets, nil); err != nil {
		return errors.Wrap(err, "import shift resets")
	}
	return nil
}

// SaveSnapshot upserts a backup snapshot row.
func (m *Mirror) SaveSnapshot(snap domain.BackupSnapshot) error {
	if !m.Available() {
		return errors.New("mirror unavailable")
	}
	err := m.db.Where("id = ?", snap.ID).
		Assign(map[string]interface{}{
			"data":       snap.Data,
			"hash":       snap.Hash,
			"created_at": snap.CreatedAt,
		}).
		FirstOrCreate(&domain.BackupSnapshot{ID: snap.ID}).Error
	return errors.Wrap(err, "save backup snapshot")
}

// Snapshots lists the timestamped history newest first, without blobs.
func (m *Mirror) Snapshots() ([]domain.BackupSnapshot, error) {
	if !m.Available() {
		return nil, errors.New("mirror unavailable")
	}
	var rows []domain.BackupSnapshot
	err := m.db.Select("id", "hash", "created_at").
		Where("id <> ?", domain.SnapshotLatestID).
		Order("created_at desc").
		Find(&rows).Error
	return rows, errors.Wrap(err, "list backup snapshots")
}

// LoadSnapshot fetches one snapshot including its data blob.
func (m *Mirror) LoadSnapshot(id string) (*domain.BackupSnapshot, error) {
	if !m.Available() {
		return nil, errors.New("mirror unavailable")
	}
	var snap domain.BackupSnapshot
	if err := m.db.Where("id = ?", id).Take(&snap).Error; err != nil {
		return nil, errors.Wrapf(err, "load backup snapshot %s", id)
	}
	return &snap, nil
}

// PruneSnapshots trims the timestamped history to keep rows; the "latest"
// row is never pruned.
func (m *Mirror) PruneSnapshots(keep int) error {
	if keep <= 0 || !m.Available() {
		return nil
	}
	var stale []domain.BackupSnapshot
	err := m.db.Select("id").
		Where("id <> ?", domain.SnapshotLatestID).
		Order("created_at desc").
		Offset(keep).
		Find(&stale).Error
	if err != nil {
		return errors.Wrap(err, "list stale snapshots")
	}
	for i := range stale {
		if err := m.db.Where("id = ?", stale[i].ID).
			Delete(&domain.BackupSnapshot{}).Error; err != nil {
			return errors.Wrapf(err, "prune snapshot %s", stale[i].ID)
		}
	}
	return nil
}

// SeedWorkers pushes the initial worker set when the mirror table is empty,
// so a brand-new shared database picks up the seeded admin.
func (m *Mirror) SeedWorkers() error {
	if !m.Available() {
		return nil
	}
	var count int64
	if err := m.db.Model(&domain.Worker{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return m.PushWorkers()
}
