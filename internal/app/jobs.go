package app

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/report"
	"github.com/cafedesk/cafedesk/pkg/common"
	"github.com/cafedesk/cafedesk/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	interval := a.appConfig.Backup.IntervalMinutes
	if interval <= 0 {
		interval = 60
	}
	_, err = a.sched.AddFunc(fmt.Sprintf("@every %dm", interval), func() {
		a.SchedBackupTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedLowStockTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	if a.appConfig.Backup.RunOnStart {
		go a.SchedBackupTask()
	}

	a.sched.Start()
}

// SchedBackupTask runs one backup cycle, the same path the manual trigger
// uses.
func (a *Application) SchedBackupTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	took, err := a.backupSched.Run()
	if err != nil {
		zap.L().Error("scheduled backup failed", zap.Error(err))
		return
	}
	if took {
		metrics.SetGauge("cafedesk_backup_runs", 1)
	}
}

// SchedLowStockTask mails the daily low-stock report when enabled.
func (a *Application) SchedLowStockTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	if a.gormDB != nil && !a.GetSettingsBoolValue("report", "LowStockDaily") {
		return
	}
	threshold := a.configManager.GetFloat64("inventory", "LowStockThreshold")
	if threshold <= 0 {
		threshold = 5
	}
	inventory, err := a.localStore.Inventory()
	if err != nil {
		zap.L().Error("low stock job: inventory load failed", zap.Error(err))
		return
	}
	low := report.LowStock(inventory, threshold)
	metrics.SetGauge("cafedesk_low_stock_items", int64(len(low)))
	if len(low) == 0 {
		return
	}
	body := report.RenderLowStockReport(low, threshold)
	if err := a.notifier.SendLowStockReport(common.DateStr(time.Now()), body); err != nil {
		zap.L().Warn("low stock report delivery failed", zap.Error(err))
	}
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	// Collect CPU usage
	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.SetGauge("system_cpuuse", int64(_cpuuse[0]*100)) // Store as percentage * 100
	}

	// Collect memory usage
	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge("system_memuse", int64(_meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	// Collect process CPU usage
	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge("cafedesk_cpuuse", int64(cpuuse*100)) // Store as percentage * 100
	}

	// Collect process memory usage
	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("cafedesk_memuse", int64(meminfo.RSS/1024/1024))
	}
}
