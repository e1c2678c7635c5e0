package localdb

import (
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/cafedesk/cafedesk/internal/domain"
)

// Singleton meta keys.
const (
	MetaCurrentUser   = "current_user"
	MetaLastBackupAt  = "last_backup_at"
	MetaLastDataHash  = "last_data_hash"
	MetaResetSentinel = "reset_sentinel"
	MetaPendingBackup = "pending_backup"
)

// GetMeta reads a singleton meta value into out. The second return reports
// whether the key was present.
func (s *Store) GetMeta(key string, out interface{}) (bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(metaBucket)).Get([]byte(key)); v != nil {
			raw = append(raw, v...)
		}
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "localdb meta %s", key)
	}
	if raw == nil {
		return false, nil
	}
	return true, errors.Wrapf(json.Unmarshal(raw, out), "localdb meta decode %s", key)
}

// PutMeta writes a singleton meta value.
func (s *Store) PutMeta(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "localdb meta encode %s", key)
	}
	return errors.Wrapf(s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(metaBucket)).Put([]byte(key), raw)
	}), "localdb meta put %s", key)
}

// DeleteMeta removes a singleton meta value.
func (s *Store) DeleteMeta(key string) error {
	return errors.Wrapf(s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(metaBucket)).Delete([]byte(key))
	}), "localdb meta delete %s", key)
}

// ResetSentinel returns the shift-reset marker for the mirror importer.
func (s *Store) ResetSentinel() (domain.ResetSentinel, bool, error) {
	var sen domain.ResetSentinel
	ok, err := s.GetMeta(MetaResetSentinel, &sen)
	return sen, ok, err
}

func (s *Store) SaveResetSentinel(sen domain.ResetSentinel) error {
	return s.PutMeta(MetaResetSentinel, sen)
}

func (s *Store) LastDataHash() (uint64, bool, error) {
	var h uint64
	ok, err := s.GetMeta(MetaLastDataHash, &h)
	return h, ok, err
}

func (s *Store) SaveLastDataHash(h uint64) error {
	return s.PutMeta(MetaLastDataHash, h)
}

func (s *Store) LastBackupAt() (time.Time, bool, error) {
	var t time.Time
	ok, err := s.GetMeta(MetaLastBackupAt, &t)
	return t, ok, err
}

func (s *Store) SaveLastBackupAt(t time.Time) error {
	return s.PutMeta(MetaLastBackupAt, t)
}
