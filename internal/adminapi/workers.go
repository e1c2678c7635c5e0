package adminapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cafedesk/cafedesk/internal/app"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/webserver"
	"github.com/cafedesk/cafedesk/pkg/common"
)

type workerPayload struct {
	Username string  `json:"username" validate:"required,min=1,max=64"`
	Name     string  `json:"name" validate:"required,min=1,max=200"`
	Role     string  `json:"role"`
	Password string  `json:"password"`
	Salary   float64 `json:"salary"`
	Status   string  `json:"status"`
}

func registerWorkerRoutes() {
	webserver.ApiGET("/staff/workers", listWorkers)
	webserver.ApiGET("/staff/workers/:id", getWorker)
	webserver.ApiPOST("/staff/workers", createWorker)
	webserver.ApiPUT("/staff/workers/:id", updateWorker)
	webserver.ApiDELETE("/staff/workers/:id", deleteWorker)
	webserver.ApiGET("/staff/transactions", listTransactions)
	webserver.ApiPOST("/staff/transactions", createTransaction)
}

func parseWorkerID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func listWorkers(c echo.Context) error {
	workers, err := GetStore(c).Workers()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load workers", err.Error())
	}
	q := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	if q != "" {
		filtered := workers[:0]
		for _, w := range workers {
			if strings.Contains(strings.ToLower(w.Name), q) ||
				strings.Contains(strings.ToLower(w.Username), q) {
				filtered = append(filtered, w)
			}
		}
		workers = filtered
	}
	page, pageSize := parsePagination(c)
	return paged(c, pageSlice(workers, page, pageSize), int64(len(workers)), page, pageSize)
}

func getWorker(c echo.Context) error {
	id, err := parseWorkerID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid worker ID", nil)
	}
	workers, err := GetStore(c).Workers()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load workers", err.Error())
	}
	for i := range workers {
		if workers[i].ID == id {
			return ok(c, workers[i])
		}
	}
	return fail(c, http.StatusNotFound, "NOT_FOUND", "Worker not found", nil)
}

func createWorker(c echo.Context) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}
	var payload workerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse worker", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username and name are required", nil)
	}
	if payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Password is required", nil)
	}
	if payload.Role != domain.RoleAdmin {
		payload.Role = domain.RoleWorker
	}

	store := GetStore(c)
	workers, err := store.Workers()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load workers", err.Error())
	}
	for i := range workers {
		if workers[i].Username == payload.Username {
			return fail(c, http.StatusConflict, "DUPLICATE", "Username already exists", nil)
		}
	}
	hash, err := common.HashPassword(payload.Password)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password", err.Error())
	}
	worker := domain.Worker{
		ID:           common.UUIDint64(),
		Username:     strings.TrimSpace(payload.Username),
		Name:         strings.TrimSpace(payload.Name),
		Role:         payload.Role,
		PasswordHash: hash,
		Salary:       payload.Salary,
		Status:       common.ENABLED,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := store.SaveWorkers(append(workers, worker)); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to create worker", err.Error())
	}
	GetApp(c).Bus().Publish(app.TopicWorkersChanged)
	return ok(c, worker)
}

func updateWorker(c echo.Context) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}
	id, err := parseWorkerID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid worker ID", nil)
	}
	var payload workerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse worker", err.Error())
	}

	store := GetStore(c)
	workers, err := store.Workers()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load workers", err.Error())
	}
	for i := range workers {
		if workers[i].ID != id {
			continue
		}
		w := &workers[i]
		if payload.Name != "" {
			w.Name = strings.TrimSpace(payload.Name)
		}
		if payload.Role == domain.RoleAdmin || payload.Role == domain.RoleWorker {
			w.Role = payload.Role
		}
		if payload.Status == common.ENABLED || payload.Status == common.DISABLED {
			w.Status = payload.Status
		}
		if payload.Salary > 0 {
			w.Salary = payload.Salary
		}
		if payload.Password != "" {
			hash, herr := common.HashPassword(payload.Password)
			if herr != nil {
				return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password", herr.Error())
			}
			w.PasswordHash = hash
		}
		w.UpdatedAt = time.Now()
		if err := store.SaveWorkers(workers); err != nil {
			return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to update worker", err.Error())
		}
		GetApp(c).Bus().Publish(app.TopicWorkersChanged)
		return ok(c, *w)
	}
	return fail(c, http.StatusNotFound, "NOT_FOUND", "Worker not found", nil)
}

func deleteWorker(c echo.Context) error {
	admin, err := requireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseWorkerID(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid worker ID", nil)
	}
	if admin.ID == id {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Cannot delete the active account", nil)
	}

	store := GetStore(c)
	workers, err := store.Workers()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load workers", err.Error())
	}
	kept := workers[:0]
	found := false
	for _, w := range workers {
		if w.ID == id {
			found = true
			continue
		}
		kept = append(kept, w)
	}
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Worker not found", nil)
	}
	// Sales, returns and attendance keep the denormalized worker name; only
	// the account goes away.
	if err := store.SaveWorkers(kept); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to delete worker", err.Error())
	}
	GetApp(c).Bus().Publish(app.TopicWorkersChanged)
	return ok(c, map[string]interface{}{"id": id})
}

type transactionPayload struct {
	WorkerID int64   `json:"worker_id,string" validate:"required"`
	Type     string  `json:"type" validate:"required,oneof=advance bonus"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Note     string  `json:"note"`
}

func listTransactions(c echo.Context) error {
	txs, err := GetStore(c).Transactions()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load transactions", err.Error())
	}
	if widStr := c.QueryParam("worker_id"); widStr != "" {
		wid, perr := strconv.ParseInt(widStr, 10, 64)
		if perr != nil {
			return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid worker ID", nil)
		}
		filtered := txs[:0]
		for _, t := range txs {
			if t.WorkerID == wid {
				filtered = append(filtered, t)
			}
		}
		txs = filtered
	}
	page, pageSize := parsePagination(c)
	return paged(c, pageSlice(txs, page, pageSize), int64(len(txs)), page, pageSize)
}

func createTransaction(c echo.Context) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}
	var payload transactionPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse transaction", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Type must be advance or bonus and amount positive", nil)
	}

	store := GetStore(c)
	workers, err := store.Workers()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load workers", err.Error())
	}
	workerName := ""
	for i := range workers {
		if workers[i].ID == payload.WorkerID {
			workerName = workers[i].Name
			break
		}
	}
	if workerName == "" {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Worker not found", nil)
	}

	now := time.Now()
	tx := domain.WorkerTransaction{
		ID:         common.UUID(),
		WorkerID:   payload.WorkerID,
		WorkerName: workerName,
		Type:       payload.Type,
		Amount:     payload.Amount,
		Note:       payload.Note,
		Date:       common.DateStr(now),
		CreatedAt:  now,
	}
	txs, err := store.Transactions()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load transactions", err.Error())
	}
	if err := store.SaveTransactions(append(txs, tx)); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to save transaction", err.Error())
	}
	return ok(c, tx)
}
