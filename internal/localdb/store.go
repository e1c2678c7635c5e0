package localdb

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// Collection names. These match the remote mirror table names one to one so
// snapshots can be moved between the two without renaming.
const (
	ColProducts       = "products"
	ColSales          = "sales"
	ColInventory      = "inventory"
	ColWorkers        = "workers"
	ColAttendance     = "attendance"
	ColTransactions   = "transactions"
	ColExpenses       = "expenses"
	ColReturns        = "returns"
	ColReturnsLog     = "returns_log"
	ColWorkerExpenses = "worker_expenses"
	ColShiftResets    = "shift_resets"
)

const (
	metaBucket = "meta"
	recordsKey = "_all"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Collections lists every collection in snapshot order.
func Collections() []string {
	return []string{
		ColProducts, ColSales, ColInventory, ColWorkers, ColAttendance,
		ColTransactions, ColExpenses, ColReturns, ColReturnsLog,
		ColWorkerExpenses, ColShiftResets,
	}
}

// Store is the offline-first local record store. Each collection is a bbolt
// bucket holding the whole entity list as one JSON value; every mutation is
// read-collection, modify, write-collection. That makes writes last-write-wins
// at collection granularity, which is fine for a single active till.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the store file and its buckets.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "localdb open")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range Collections() {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "localdb init buckets")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get reads a whole collection into out (a pointer to a slice). A missing
// collection yields an empty slice, not an error.
func (s *Store) Get(collection string, out interface{}) error {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(recordsKey)); v != nil {
			raw = append(raw, v...)
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "localdb get %s", collection)
	}
	if raw == nil {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(raw, out), "localdb decode %s", collection)
}

// Put replaces a whole collection.
func (s *Store) Put(collection string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "localdb encode %s", collection)
	}
	return s.PutRaw(collection, raw)
}

// GetRaw returns the stored JSON payload of a collection, nil when empty.
func (s *Store) GetRaw(collection string) ([]byte, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(recordsKey)); v != nil {
			raw = append(raw, v...)
		}
		return nil
	})
	return raw, errors.Wrapf(err, "localdb raw %s", collection)
}

// PutRaw writes a pre-encoded JSON payload for a collection.
func (s *Store) PutRaw(collection string, raw []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return err
		}
		return b.Put([]byte(recordsKey), raw)
	})
	return errors.Wrapf(err, "localdb put %s", collection)
}

// ExportAll dumps every collection payload, keyed by collection name.
func (s *Store) ExportAll() (map[string]jsoniter.RawMessage, error) {
	out := make(map[string]jsoniter.RawMessage, len(Collections()))
	for _, name := range Collections() {
		raw, err := s.GetRaw(name)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			raw = []byte("[]")
		}
		out[name] = raw
	}
	return out, nil
}

// ImportAll overwrites the collections present in the payload map. Unknown
// keys are ignored so newer snapshots stay loadable by older builds.
func (s *Store) ImportAll(payload map[string]jsoniter.RawMessage) error {
	known := make(map[string]bool, len(Collections()))
	for _, name := range Collections() {
		known[name] = true
	}
	for name, raw := range payload {
		if !known[name] {
			continue
		}
		if err := s.PutRaw(name, raw); err != nil {
			return err
		}
	}
	return nil
}

// SystemReset wipes every collection except workers and the shift-reset log.
func (s *Store) SystemReset() error {
	empty := []byte("[]")
	for _, name := range Collections() {
		if name == ColWorkers || name == ColShiftResets {
			continue
		}
		if err := s.PutRaw(name, empty); err != nil {
			return err
		}
	}
	return nil
}
