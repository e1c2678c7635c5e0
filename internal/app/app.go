package app

import (
	"context"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/cafedesk/cafedesk/config"
	"github.com/cafedesk/cafedesk/internal/backup"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/localdb"
	"github.com/cafedesk/cafedesk/internal/mirror"
	"github.com/cafedesk/cafedesk/internal/notify"
	"github.com/cafedesk/cafedesk/internal/report"
	"github.com/cafedesk/cafedesk/internal/shift"
	"github.com/cafedesk/cafedesk/pkg/common"
	"github.com/cafedesk/cafedesk/pkg/metrics"
)

type Application struct {
	appConfig     *config.AppConfig
	gormDB        *gorm.DB
	localStore    *localdb.Store
	sched         *cron.Cron
	bus           EventBus.Bus
	mirrorSvc     *mirror.Mirror
	backupSched   *backup.Scheduler
	notifier      *notify.Sender
	shiftOrch     *shift.Orchestrator
	configManager *ConfigManager
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ StoreProvider     = (*Application)(nil)
	_ SettingsProvider  = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ BusProvider       = (*Application)(nil)
	_ MirrorProvider    = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
	a.mirrorSvc = mirror.New(db, a.localStore)
}

func (a *Application) Store() *localdb.Store {
	return a.localStore
}

func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

func (a *Application) Mirror() *mirror.Mirror {
	return a.mirrorSvc
}

func (a *Application) Backup() *backup.Scheduler {
	return a.backupSched
}

func (a *Application) ShiftOrchestrator() *shift.Orchestrator {
	return a.shiftOrch
}

func (a *Application) Notifier() *notify.Sender {
	return a.notifier
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Configure output paths
	zapConfig.OutputPaths = []string{"stdout"}
	if cfg.Logger.FileEnable {
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, cfg.Logger.Filename)
	}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	// Initialize metrics with workdir convention
	err = metrics.InitMetrics(cfg.System.Workdir)
	if err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	// Local record store is the source of truth and must open before
	// anything else touches data.
	a.localStore, err = localdb.Open(cfg.LocalStorePath())
	if err != nil {
		panic(err)
	}

	// Shared mirror database connection
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database, cfg.System.Workdir)
	if a.gormDB != nil {
		zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)
		if err := a.MigrateDB(false); err != nil {
			zap.S().Errorf("database migration failed: %v", err)
		}
	}

	a.bus = EventBus.New()
	a.mirrorSvc = mirror.New(a.gormDB, a.localStore)
	a.notifier = notify.NewSender(cfg)
	a.shiftOrch = &shift.Orchestrator{
		Store:    a.localStore,
		Notifier: a.notifier,
		Bus:      a.bus,
		Render:   report.RenderShiftReport,
	}
	a.backupSched = &backup.Scheduler{
		Store:     a.localStore,
		Mirror:    a.mirrorSvc,
		Retention: cfg.Backup.Retention,
	}

	// Initialize the configuration manager
	a.configManager = NewConfigManager(a)

	// wait for database initialization to complete
	go func() {
		time.Sleep(3 * time.Second)
		a.checkAdmin()
		a.checkSettings()
		if cfg.Mirror.Enabled && cfg.Mirror.ImportOnStart {
			a.importOnStart()
		}
	}()

	a.initEventHandlers()
	a.initJob()
}

// importOnStart pulls the mirror into an empty local store so a reinstalled
// terminal comes back with its data.
func (a *Application) importOnStart() {
	workers, err := a.localStore.Workers()
	if err == nil && len(workers) > 1 {
		// Local store already populated; the mirror follows local, not the
		// other way round.
		return
	}
	now := func() string { return common.DateStr(time.Now()) }
	if err := a.mirrorSvc.ImportAll(now); err != nil {
		zap.L().Warn("mirror import skipped", zap.Error(err))
		return
	}
	zap.L().Info("local store imported from mirror")
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// ConfigMgr returns the configuration manager
func (a *Application) ConfigMgr() *ConfigManager {
	return a.configManager
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// GetSettingsStringValue retrieves a string configuration value
func (a *Application) GetSettingsStringValue(category, key string) string {
	return a.configManager.GetString(category, key)
}

// GetSettingsInt64Value retrieves an int64 configuration value
func (a *Application) GetSettingsInt64Value(category, key string) int64 {
	return a.configManager.GetInt64(category, key)
}

// GetSettingsBoolValue retrieves a boolean configuration value
func (a *Application) GetSettingsBoolValue(category, key string) bool {
	return a.configManager.GetBool(category, key)
}

// Start scheduler job runner
func (a *Application) StartBackgroundJobs(ctx context.Context) {
	a.StartMirrorSyncService(ctx)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}

	if a.localStore != nil {
		_ = a.localStore.Close()
	}

	_ = metrics.Close()
	_ = zap.L().Sync()
}
