package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/shift"
)

// Event bus topics published by the API layer. Handlers run asynchronously
// and only touch the mirror; local-store writes happen inline in the
// handlers that own them.
const (
	TopicSaleCreated      = "sale.created"
	TopicReturnCreated    = "return.created"
	TopicReturnDeleted    = "return.deleted"
	TopicInventoryChanged = "inventory.changed"
	TopicWorkersChanged   = "workers.changed"
)

func (a *Application) initEventHandlers() {
	sub := func(topic string, fn interface{}) {
		if err := a.bus.SubscribeAsync(topic, fn, false); err != nil {
			zap.S().Errorf("subscribe %s error %s", topic, err.Error())
		}
	}

	sub(TopicSaleCreated, func(sale domain.Sale) {
		a.pushMirror("sales", a.mirrorSvc.PushSales)
		a.pushMirror("inventory", a.mirrorSvc.PushInventory)
	})
	sub(TopicReturnCreated, func(ret domain.ReturnRecord) {
		a.pushMirror("returns", a.mirrorSvc.PushReturns)
		a.pushMirror("returns_log", a.mirrorSvc.PushReturnsLog)
		a.pushMirror("inventory", a.mirrorSvc.PushInventory)
	})
	sub(TopicReturnDeleted, func(returnID string) {
		a.pushMirror("returns", a.mirrorSvc.PushReturns)
		a.pushMirror("returns_log", a.mirrorSvc.PushReturnsLog)
		a.pushMirror("inventory", a.mirrorSvc.PushInventory)
	})
	sub(TopicInventoryChanged, func() {
		a.pushMirror("inventory", a.mirrorSvc.PushInventory)
	})
	sub(TopicWorkersChanged, func() {
		a.pushMirror("workers", a.mirrorSvc.PushWorkers)
	})
	sub(shift.TopicResetCompleted, func(rec domain.ShiftResetRecord) {
		if err := a.mirrorSvc.FullSync(); err != nil {
			zap.L().Warn("post-reset mirror sync failed", zap.Error(err))
		}
	})
}

func (a *Application) pushMirror(name string, fn func() error) {
	if !a.appConfig.Mirror.Enabled {
		return
	}
	if err := fn(); err != nil {
		zap.L().Warn("mirror push failed",
			zap.String("collection", name), zap.Error(err))
	}
}

// StartMirrorSyncService reconciles the mirror with the local store
// periodically, catching up after offline stretches that the per-event
// pushes missed.
func (a *Application) StartMirrorSyncService(ctx context.Context) {
	if !a.appConfig.Mirror.Enabled {
		return
	}
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !a.mirrorSvc.Available() {
					continue
				}
				if err := a.mirrorSvc.FullSync(); err != nil {
					zap.L().Warn("periodic mirror sync failed", zap.Error(err))
				}
				if err := a.backupSched.FlushPending(); err != nil {
					zap.L().Warn("pending backup flush failed", zap.Error(err))
				}
			}
		}
	}()
}
