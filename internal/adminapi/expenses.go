package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/webserver"
	"github.com/cafedesk/cafedesk/pkg/common"
)

func registerExpenseRoutes() {
	webserver.ApiGET("/finance/expenses", listExpenses)
	webserver.ApiPOST("/finance/expenses", createExpense)
	webserver.ApiDELETE("/finance/expenses/:id", deleteExpense)

	webserver.ApiGET("/finance/worker-expenses", listWorkerExpenses)
	webserver.ApiPOST("/finance/worker-expenses", createWorkerExpense)
}

type expensePayload struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Reason   string  `json:"reason" validate:"required"`
	Category string  `json:"category"`
}

func listExpenses(c echo.Context) error {
	expenses, err := GetStore(c).Expenses()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load expenses", err.Error())
	}
	page, pageSize := parsePagination(c)
	return paged(c, pageSlice(expenses, page, pageSize), int64(len(expenses)), page, pageSize)
}

func createExpense(c echo.Context) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}
	var payload expensePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse expense", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Amount must be positive and reason is required", nil)
	}

	now := time.Now()
	exp := domain.Expense{
		ID:        common.UUID(),
		Amount:    payload.Amount,
		Reason:    payload.Reason,
		Category:  payload.Category,
		Date:      common.DateStr(now),
		Time:      common.ClockStr(now),
		CreatedAt: now,
	}
	store := GetStore(c)
	expenses, err := store.Expenses()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load expenses", err.Error())
	}
	if err := store.SaveExpenses(append(expenses, exp)); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to save expense", err.Error())
	}
	return ok(c, exp)
}

func deleteExpense(c echo.Context) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}
	store := GetStore(c)
	expenses, err := store.Expenses()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load expenses", err.Error())
	}
	id := c.Param("id")
	kept := expenses[:0]
	found := false
	for _, e := range expenses {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Expense not found", nil)
	}
	if err := store.SaveExpenses(kept); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to delete expense", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

type workerExpensePayload struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Reason string  `json:"reason" validate:"required"`
}

func listWorkerExpenses(c echo.Context) error {
	worker, err := currentWorker(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session invalid", nil)
	}
	expenses, err := GetStore(c).WorkerExpenses()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load worker expenses", err.Error())
	}
	// Workers see their own draws; admins see everyone's.
	if !worker.IsAdmin() {
		filtered := expenses[:0]
		for _, e := range expenses {
			if e.WorkerID == worker.ID {
				filtered = append(filtered, e)
			}
		}
		expenses = filtered
	}
	page, pageSize := parsePagination(c)
	return paged(c, pageSlice(expenses, page, pageSize), int64(len(expenses)), page, pageSize)
}

func createWorkerExpense(c echo.Context) error {
	worker, err := currentWorker(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session invalid", nil)
	}
	var payload workerExpensePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse worker expense", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Amount must be positive and reason is required", nil)
	}

	now := time.Now()
	exp := domain.WorkerExpense{
		ID:         common.UUID(),
		WorkerID:   worker.ID,
		WorkerName: worker.Name,
		Amount:     payload.Amount,
		Reason:     payload.Reason,
		Date:       common.DateStr(now),
		Time:       common.ClockStr(now),
		CreatedAt:  now,
	}
	store := GetStore(c)
	expenses, err := store.WorkerExpenses()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load worker expenses", err.Error())
	}
	if err := store.SaveWorkerExpenses(append(expenses, exp)); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to save worker expense", err.Error())
	}
	return ok(c, exp)
}
