package adminapi

import (
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/localdb"
	"github.com/cafedesk/cafedesk/internal/webserver"
	"github.com/cafedesk/cafedesk/pkg/common"
	"github.com/cafedesk/cafedesk/pkg/metrics"
)

func registerSystemRoutes() {
	webserver.ApiGET("/system/status", getSystemStatus)
	webserver.ApiPOST("/system/reset", postSystemReset)
}

func getSystemStatus(c echo.Context) error {
	appCtx := GetApp(c)
	status := map[string]interface{}{
		"appname": appCtx.Config().System.Appname,
		"mirror":  appCtx.Mirror().Available(),
		"cpu_use": metrics.LatestValue("cafedesk_cpuuse") / 100,
		"mem_mb":  metrics.LatestValue("cafedesk_memuse"),
	}
	if info, err := host.Info(); err == nil {
		status["hostname"] = info.Hostname
		status["os"] = info.Platform
		status["uptime"] = info.Uptime
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if created, err := p.CreateTime(); err == nil {
			status["started_at"] = time.UnixMilli(created)
		}
	}
	if lastBackup, ok, err := GetStore(c).LastBackupAt(); err == nil && ok {
		status["last_backup_at"] = lastBackup
	}
	var currentUser string
	if found, err := GetStore(c).GetMeta(localdb.MetaCurrentUser, &currentUser); err == nil && found {
		status["current_user"] = currentUser
	}
	return ok(c, status)
}

type systemResetPayload struct {
	Password string `json:"password" validate:"required"`
}

// postSystemReset wipes every transactional collection. Worker accounts and
// the shift-reset audit log survive; everything else starts over.
func postSystemReset(c echo.Context) error {
	admin, err := requireAdmin(c)
	if err != nil {
		return err
	}
	var payload systemResetPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse reset request", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Password is required", nil)
	}
	if !common.CheckPassword(admin.PasswordHash, payload.Password) {
		return fail(c, http.StatusForbidden, "BAD_CREDENTIALS", "Password verification failed", nil)
	}

	if err := GetStore(c).SystemReset(); err != nil {
		return fail(c, http.StatusInternalServerError, "RESET_ERROR", "System reset failed", err.Error())
	}
	zap.L().Warn("system reset executed", zap.String("by", admin.Username))

	if err := GetApp(c).Mirror().FullSync(); err != nil {
		zap.L().Warn("post-reset mirror sync failed", zap.Error(err))
	}
	return ok(c, map[string]interface{}{"reset": true})
}
