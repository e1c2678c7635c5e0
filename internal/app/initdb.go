package app

import (
	"time"

	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/pkg/common"
)

func (a *Application) checkAdmin() {
	const adminUsername = "admin"
	const defaultPassword = "cafedesk"

	workers, err := a.localStore.Workers()
	if err != nil {
		zap.L().Error("failed to load workers", zap.Error(err))
		return
	}
	for i := range workers {
		if workers[i].Username == adminUsername {
			if workers[i].PasswordHash == "" {
				hash, herr := common.HashPassword(defaultPassword)
				if herr != nil {
					zap.L().Error("failed to hash default password", zap.Error(herr))
					return
				}
				workers[i].PasswordHash = hash
				if err := a.localStore.SaveWorkers(workers); err != nil {
					zap.L().Error("failed to repair admin account", zap.Error(err))
					return
				}
				zap.L().Warn("repaired default admin account",
					zap.String("username", adminUsername))
			}
			return
		}
	}

	hash, err := common.HashPassword(defaultPassword)
	if err != nil {
		zap.L().Error("failed to hash default password", zap.Error(err))
		return
	}
	workers = append(workers, domain.Worker{
		ID:           common.UUIDint64(),
		Username:     adminUsername,
		Name:         "administrator",
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
		Status:       common.ENABLED,
		LastLogin:    time.Now(),
	})
	if err := a.localStore.SaveWorkers(workers); err != nil {
		zap.L().Error("failed to create default admin", zap.Error(err))
		return
	}
	zap.L().Info("initialized default admin account",
		zap.String("username", adminUsername))

	if err := a.mirrorSvc.SeedWorkers(); err != nil {
		zap.L().Warn("worker seed not mirrored", zap.Error(err))
	}
}

func (a *Application) checkSettings() {
	if a.gormDB == nil {
		return
	}
	defaults := []domain.SysConfig{
		{Sort: 1, Type: "inventory", Name: "LowStockThreshold", Value: "5", Remark: "Items at or below this quantity appear in the low stock report"},
		{Sort: 2, Type: "report", Name: "LowStockDaily", Value: "true", Remark: "Send the low stock report with the daily job"},
		{Sort: 3, Type: "shift", Name: "AutoCheckout", Value: "true", Remark: "Close open attendance rows during a shift reset"},
	}

	for _, def := range defaults {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", def.Type, def.Name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&def)
			zap.L().Info("initialized config",
				zap.String("key", def.Type+"."+def.Name),
				zap.String("default", def.Value))
		}
	}
}
