package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/cafedesk/cafedesk/internal/app"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/localdb"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

// InitRouter registers every admin api route. Call after webserver.Init.
func InitRouter() {
	registerAuthRoutes()
	registerWorkerRoutes()
	registerCatalogRoutes()
	registerSaleRoutes()
	registerReturnRoutes()
	registerAttendanceRoutes()
	registerExpenseRoutes()
	registerShiftRoutes()
	registerBackupRoutes()
	registerReportRoutes()
	registerExportRoutes()
	registerSystemRoutes()
}

// GetApp returns the application context injected by the web server.
func GetApp(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

// GetStore returns the local record store.
func GetStore(c echo.Context) *localdb.Store {
	return GetApp(c).Store()
}

// GetDB returns the mirror database handle, nil when offline.
func GetDB(c echo.Context) *gorm.DB {
	return GetApp(c).DB()
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": 0,
		"data": data,
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"detail":  detail,
	})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":      0,
		"data":      rows,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func parsePagination(c echo.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := 20
	if ps, err := strconv.Atoi(c.QueryParam("perPage")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

// pageSlice applies in-memory pagination to an already filtered collection.
func pageSlice[T any](rows []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(rows) {
		return []T{}
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// currentWorker resolves the session claims to the live worker record.
func currentWorker(c echo.Context) (*domain.Worker, error) {
	claims, err := webserver.CurrentClaims(c)
	if err != nil {
		return nil, err
	}
	workers, err := GetStore(c).Workers()
	if err != nil {
		return nil, err
	}
	for i := range workers {
		if workers[i].ID == claims.WorkerID {
			return &workers[i], nil
		}
	}
	return nil, echo.NewHTTPError(http.StatusUnauthorized, "unknown worker")
}

// requireAdmin returns the current worker only when it holds the admin role.
func requireAdmin(c echo.Context) (*domain.Worker, error) {
	worker, err := currentWorker(c)
	if err != nil {
		return nil, err
	}
	if !worker.IsAdmin() {
		return nil, echo.NewHTTPError(http.StatusForbidden, "admin role required")
	}
	return worker, nil
}
