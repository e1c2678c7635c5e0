package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cafedesk/cafedesk/internal/report"
	"github.com/cafedesk/cafedesk/internal/webserver"
)

func registerReportRoutes() {
	webserver.ApiGET("/reports/period", getPeriodReport)
	webserver.ApiGET("/reports/lowstock", getLowStockReport)
}

func getPeriodReport(c echo.Context) error {
	from, to, err := report.ParsePeriod(c.QueryParam("from"), c.QueryParam("to"), time.Now())
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_PERIOD", "Unable to parse period bounds", err.Error())
	}

	store := GetStore(c)
	sales, err := store.Sales()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load sales", err.Error())
	}
	returnsLog, err := store.ReturnsLog()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load returns log", err.Error())
	}
	expenses, err := store.Expenses()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load expenses", err.Error())
	}
	workerExpenses, err := store.WorkerExpenses()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load worker expenses", err.Error())
	}

	summary := report.BuildPeriod(from, to, sales, returnsLog, expenses, workerExpenses)
	return ok(c, summary)
}

func getLowStockReport(c echo.Context) error {
	threshold := GetApp(c).GetSettingsInt64Value("inventory", "LowStockThreshold")
	if threshold <= 0 {
		threshold = 5
	}
	inventory, err := GetStore(c).Inventory()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load inventory", err.Error())
	}
	low := report.LowStock(inventory, float64(threshold))
	return ok(c, map[string]interface{}{
		"threshold": threshold,
		"items":     low,
	})
}
