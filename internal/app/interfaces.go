package app

import (
	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/cafedesk/cafedesk/config"
	"github.com/cafedesk/cafedesk/internal/backup"
	"github.com/cafedesk/cafedesk/internal/localdb"
	"github.com/cafedesk/cafedesk/internal/mirror"
	"github.com/cafedesk/cafedesk/internal/shift"
)

// DBProvider provides mirror database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// StoreProvider provides the local record store
type StoreProvider interface {
	Store() *localdb.Store
}

// SettingsProvider provides system settings access
type SettingsProvider interface {
	GetSettingsStringValue(category, key string) string
	GetSettingsInt64Value(category, key string) int64
	GetSettingsBoolValue(category, key string) bool
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// BusProvider provides the in-process event bus
type BusProvider interface {
	Bus() EventBus.Bus
}

// MirrorProvider provides the remote mirror
type MirrorProvider interface {
	Mirror() *mirror.Mirror
}

// AppContext combines all provider interfaces for full application context.
// Handlers should depend on specific providers or this combined interface.
type AppContext interface {
	DBProvider
	ConfigProvider
	StoreProvider
	SettingsProvider
	SchedulerProvider
	BusProvider
	MirrorProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// Backup returns the backup scheduler for manual runs and restores
	Backup() *backup.Scheduler
	// ShiftOrchestrator returns the shift reset orchestrator
	ShiftOrchestrator() *shift.Orchestrator
}
