package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cafedesk/cafedesk/internal/shift"
	"github.com/cafedesk/cafedesk/internal/webserver"
	"github.com/cafedesk/cafedesk/pkg/common"
)

func registerShiftRoutes() {
	webserver.ApiGET("/shift/view", getShiftView)
	webserver.ApiPOST("/shift/reset", postShiftReset)
	webserver.ApiGET("/shift/resets", listShiftResets)
}

// getShiftView returns the current shift's records and inventory bracket for
// the logged-in worker (whole day across all workers for admins).
func getShiftView(c echo.Context) error {
	worker, err := currentWorker(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session invalid", nil)
	}
	store := GetStore(c)
	attendance, err := store.Attendance()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load attendance", err.Error())
	}
	sales, err := store.Sales()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load sales", err.Error())
	}
	returnsLog, err := store.ReturnsLog()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load returns log", err.Error())
	}
	workerExpenses, err := store.WorkerExpenses()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load worker expenses", err.Error())
	}
	inventory, err := store.Inventory()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load inventory", err.Error())
	}
	products, err := store.Products()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load products", err.Error())
	}

	date := common.DateStr(time.Now())
	scope := shift.Scope{WorkerID: worker.ID}
	if worker.IsAdmin() {
		scope = shift.Scope{}
	}
	window := shift.ResolveWindow(worker.ID, date, attendance)
	view := shift.BuildView(window, scope, sales, returnsLog, workerExpenses, inventory, products)
	return ok(c, view)
}

type resetPayload struct {
	Password string `json:"password" validate:"required"`
}

// postShiftReset closes the current shift. The caller re-enters their
// password; a stolen session token alone cannot purge the day.
func postShiftReset(c echo.Context) error {
	worker, err := currentWorker(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session invalid", nil)
	}
	var payload resetPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse reset request", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Password is required", nil)
	}
	if !common.CheckPassword(worker.PasswordHash, payload.Password) {
		return fail(c, http.StatusForbidden, "BAD_CREDENTIALS", "Password verification failed", nil)
	}

	record, err := GetApp(c).ShiftOrchestrator().Reset(*worker)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "RESET_ERROR", "Shift reset failed", err.Error())
	}
	return ok(c, record)
}

func listShiftResets(c echo.Context) error {
	resets, err := GetStore(c).ShiftResets()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load shift resets", err.Error())
	}
	page, pageSize := parsePagination(c)
	return paged(c, pageSlice(resets, page, pageSize), int64(len(resets)), page, pageSize)
}
