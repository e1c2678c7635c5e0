package backup

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/localdb"
	"github.com/cafedesk/cafedesk/internal/mirror"
	"github.com/cafedesk/cafedesk/pkg/common"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DataHash is a polynomial hash over every collection payload in canonical
// order, collection names included. Used to skip backups when nothing
// changed since the last run.
func DataHash(payload map[string]jsoniter.RawMessage) uint64 {
	var h uint64 = 17
	for _, name := range localdb.Collections() {
		for _, b := range []byte(name) {
			h = h*31 + uint64(b)
		}
		for _, b := range payload[name] {
			h = h*31 + uint64(b)
		}
	}
	return h
}

// Scheduler takes periodic snapshots of the local store and ships them to
// the mirror. One scheduler instance owns all backup activity; manual runs
// go through the same Run method as the cron tick.
type Scheduler struct {
	Store     *localdb.Store
	Mirror    *mirror.Mirror
	Retention int
	Now       func() time.Time
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Run takes one snapshot if the data changed since the last one. When the
// mirror is unreachable the snapshot is cached locally and shipped by the
// next successful run. Returns whether a new snapshot was taken.
func (s *Scheduler) Run() (bool, error) {
	payload, err := s.Store.ExportAll()
	if err != nil {
		return false, errors.Wrap(err, "backup export")
	}
	h := DataHash(payload)

	last, hasLast, err := s.Store.LastDataHash()
	if err != nil {
		return false, errors.Wrap(err, "backup last hash")
	}
	if hasLast && last == h {
		zap.L().Debug("backup skipped, data unchanged",
			zap.Uint64("hash", h))
		// Still try to ship a snapshot stranded by an earlier outage.
		return false, s.FlushPending()
	}

	data, err := json.MarshalToString(payload)
	if err != nil {
		return false, errors.Wrap(err, "backup encode")
	}
	now := s.now()
	snap := domain.BackupSnapshot{
		ID:        common.TimestampID(now),
		Data:      data,
		Hash:      h,
		CreatedAt: now,
	}

	if !s.Mirror.Available() {
		if err := s.Store.PutMeta(localdb.MetaPendingBackup, snap); err != nil {
			return false, errors.Wrap(err, "cache pending backup")
		}
		if err := s.Store.SaveLastDataHash(h); err != nil {
			return false, errors.Wrap(err, "save data hash")
		}
		zap.L().Warn("mirror offline, backup cached locally",
			zap.String("id", snap.ID))
		return true, nil
	}

	if err := s.FlushPending(); err != nil {
		zap.L().Warn("pending backup flush failed", zap.Error(err))
	}
	if err := s.ship(snap); err != nil {
		// Shipping failed after the availability check passed; keep the
		// snapshot for the next run instead of losing it.
		if cacheErr := s.Store.PutMeta(localdb.MetaPendingBackup, snap); cacheErr != nil {
			zap.L().Error("pending backup cache failed", zap.Error(cacheErr))
		}
		return false, err
	}
	if err := s.Store.SaveLastDataHash(h); err != nil {
		return true, errors.Wrap(err, "save data hash")
	}
	if err := s.Store.SaveLastBackupAt(now); err != nil {
		return true, errors.Wrap(err, "save backup time")
	}
	zap.L().Info("backup snapshot shipped",
		zap.String("id", snap.ID), zap.Uint64("hash", h))
	return true, nil
}

// ship saves the timestamped row, refreshes the "latest" row and trims the
// history.
func (s *Scheduler) ship(snap domain.BackupSnapshot) error {
	if err := s.Mirror.SaveSnapshot(snap); err != nil {
		return err
	}
	latest := snap
	latest.ID = domain.SnapshotLatestID
	if err := s.Mirror.SaveSnapshot(latest); err != nil {
		return err
	}
	return s.Mirror.PruneSnapshots(s.Retention)
}

// FlushPending ships a snapshot stranded by an earlier mirror outage.
func (s *Scheduler) FlushPending() error {
	var pending domain.BackupSnapshot
	ok, err := s.Store.GetMeta(localdb.MetaPendingBackup, &pending)
	if err != nil || !ok {
		return err
	}
	if !s.Mirror.Available() {
		return nil
	}
	if err := s.ship(pending); err != nil {
		return errors.Wrap(err, "flush pending backup")
	}
	if err := s.Store.DeleteMeta(localdb.MetaPendingBackup); err != nil {
		return errors.Wrap(err, "clear pending backup")
	}
	zap.L().Info("pending backup shipped", zap.String("id", pending.ID))
	return nil
}

// Restore overwrites the local collections from a stored snapshot, then
// pushes the restored state back out so mirror and local agree again.
func (s *Scheduler) Restore(id string) error {
	snap, err := s.Mirror.LoadSnapshot(id)
	if err != nil {
		return err
	}
	var payload map[string]jsoniter.RawMessage
	if err := json.UnmarshalFromString(snap.Data, &payload); err != nil {
		return errors.Wrapf(err, "decode snapshot %s", id)
	}
	if err := s.Store.ImportAll(payload); err != nil {
		return errors.Wrapf(err, "restore snapshot %s", id)
	}
	if err := s.Store.SaveLastDataHash(snap.Hash); err != nil {
		return errors.Wrap(err, "save data hash")
	}
	zap.L().Info("snapshot restored", zap.String("id", id))
	if err := s.Mirror.FullSync(); err != nil {
		zap.L().Warn("post-restore mirror sync failed", zap.Error(err))
	}
	return nil
}
