package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cafedesk/cafedesk/internal/webserver"
)

func registerBackupRoutes() {
	webserver.ApiGET("/system/backups", listBackups)
	webserver.ApiPOST("/system/backups/run", runBackup)
	webserver.ApiPOST("/system/backups/:id/restore", restoreBackup)
	webserver.ApiPOST("/system/backups/flush", flushPendingBackup)
}

func listBackups(c echo.Context) error {
	snaps, err := GetApp(c).Mirror().Snapshots()
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "MIRROR_OFFLINE", "Backup history unavailable", err.Error())
	}
	return ok(c, snaps)
}

func runBackup(c echo.Context) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}
	took, err := GetApp(c).Backup().Run()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "BACKUP_ERROR", "Backup run failed", err.Error())
	}
	return ok(c, map[string]interface{}{"snapshot_taken": took})
}

func restoreBackup(c echo.Context) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}
	id := c.Param("id")
	if err := GetApp(c).Backup().Restore(id); err != nil {
		return fail(c, http.StatusInternalServerError, "RESTORE_ERROR", "Snapshot restore failed", err.Error())
	}
	return ok(c, map[string]interface{}{"restored": id})
}

func flushPendingBackup(c echo.Context) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}
	if err := GetApp(c).Backup().FlushPending(); err != nil {
		return fail(c, http.StatusInternalServerError, "BACKUP_ERROR", "Pending backup flush failed", err.Error())
	}
	return ok(c, map[string]interface{}{"flushed": true})
}
