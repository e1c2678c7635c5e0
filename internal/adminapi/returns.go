package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/app"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/reconcile"
	"github.com/cafedesk/cafedesk/internal/shift"
	"github.com/cafedesk/cafedesk/internal/webserver"
	"github.com/cafedesk/cafedesk/pkg/common"
)

type returnPayload struct {
	SaleID        string            `json:"sale_id"`
	Type          string            `json:"type" validate:"required,oneof=return exchange"`
	Items         []domain.SaleItem `json:"items" validate:"required,min=1"`
	ExchangeItems []domain.SaleItem `json:"exchange_items"`
	RefundAmount  float64           `json:"refund_amount" validate:"gte=0"`
	Reason        string            `json:"reason"`
}

func registerReturnRoutes() {
	webserver.ApiGET("/pos/returns", listReturns)
	webserver.ApiPOST("/pos/returns", createReturn)
	webserver.ApiDELETE("/pos/returns/:id", deleteReturn)
	webserver.ApiGET("/pos/returns/log", listReturnsLog)
}

type returnView struct {
	domain.ReturnRecord
	Deleted bool `json:"deleted"`
}

// listReturns renders every return ever logged, flagging the ones whose log
// carries a deleted entry instead of hiding them.
func listReturns(c echo.Context) error {
	log, err := GetStore(c).ReturnsLog()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load returns log", err.Error())
	}
	deleted := shift.DeletedReturnIDs(log)
	var views []returnView
	for i := range log {
		if log[i].Action != domain.ReturnActionCreated {
			continue
		}
		views = append(views, returnView{
			ReturnRecord: log[i].Record,
			Deleted:      deleted[log[i].ReturnID],
		})
	}
	page, pageSize := parsePagination(c)
	return paged(c, pageSlice(views, page, pageSize), int64(len(views)), page, pageSize)
}

func listReturnsLog(c echo.Context) error {
	log, err := GetStore(c).ReturnsLog()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load returns log", err.Error())
	}
	page, pageSize := parsePagination(c)
	return paged(c, pageSlice(log, page, pageSize), int64(len(log)), page, pageSize)
}

func createReturn(c echo.Context) error {
	worker, err := currentWorker(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session invalid", nil)
	}
	var payload returnPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse return", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Type must be return or exchange with at least one item", nil)
	}
	if payload.Type == domain.ReturnTypeExchange && len(payload.ExchangeItems) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Exchange needs replacement items", nil)
	}

	store := GetStore(c)
	now := time.Now()
	rec := domain.ReturnRecord{
		ID:            common.UUID(),
		SaleID:        payload.SaleID,
		Type:          payload.Type,
		Items:         payload.Items,
		ExchangeItems: payload.ExchangeItems,
		RefundAmount:  payload.RefundAmount,
		Reason:        payload.Reason,
		WorkerID:      worker.ID,
		WorkerName:    worker.Name,
		Date:          common.DateStr(now),
		Time:          common.ClockStr(now),
		CreatedAt:     now,
	}
	if rec.RefundAmount == 0 {
		rec.RefundAmount = rec.NetRefund()
	}

	returns, err := store.Returns()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load returns", err.Error())
	}
	if err := store.SaveReturns(append(returns, rec)); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to save return", err.Error())
	}

	entry := domain.ReturnLogEntry{
		ID:         common.UUID(),
		ReturnID:   rec.ID,
		Action:     domain.ReturnActionCreated,
		Record:     rec,
		ActionBy:   worker.Name,
		ActionDate: rec.Date,
		ActionTime: rec.Time,
		CreatedAt:  now,
	}
	log, err := store.ReturnsLog()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load returns log", err.Error())
	}
	if err := store.SaveReturnsLog(append(log, entry)); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to log return", err.Error())
	}

	// Returned goods go back to stock, replacement goods come out of it.
	inventory, ierr := store.Inventory()
	products, perr := store.Products()
	if ierr == nil && perr == nil {
		adjusted := reconcile.Apply(inventory, products, rec.Items, reconcile.Restore)
		if len(rec.ExchangeItems) > 0 {
			adjusted = reconcile.Apply(adjusted, products, rec.ExchangeItems, reconcile.Consume)
		}
		if err := store.SaveInventory(adjusted); err != nil {
			zap.L().Error("return saved but stock reconciliation failed",
				zap.String("return", rec.ID), zap.Error(err))
		}
	}

	GetApp(c).Bus().Publish(app.TopicReturnCreated, rec)
	return ok(c, rec)
}

// deleteReturn never removes the record: it appends a deleted entry to the
// audit log and rolls the stock adjustment back. Consumers treat the pair
// of entries as "not in force".
func deleteReturn(c echo.Context) error {
	worker, err := currentWorker(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session invalid", nil)
	}
	id := c.Param("id")

	store := GetStore(c)
	log, err := store.ReturnsLog()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load returns log", err.Error())
	}
	deleted := shift.DeletedReturnIDs(log)
	if deleted[id] {
		return fail(c, http.StatusConflict, "ALREADY_DELETED", "Return already deleted", nil)
	}
	var rec *domain.ReturnRecord
	for i := range log {
		if log[i].ReturnID == id && log[i].Action == domain.ReturnActionCreated {
			rec = &log[i].Record
			break
		}
	}
	if rec == nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Return not found", nil)
	}

	now := time.Now()
	entry := domain.ReturnLogEntry{
		ID:         common.UUID(),
		ReturnID:   id,
		Action:     domain.ReturnActionDeleted,
		Record:     *rec,
		ActionBy:   worker.Name,
		ActionDate: common.DateStr(now),
		ActionTime: common.ClockStr(now),
		CreatedAt:  now,
	}
	if err := store.SaveReturnsLog(append(log, entry)); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to log deletion", err.Error())
	}

	// Drop the row from the active returns collection; history stays in the
	// log only.
	returns, err := store.Returns()
	if err == nil {
		kept := returns[:0]
		for _, r := range returns {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		if err := store.SaveReturns(kept); err != nil {
			zap.L().Error("return deletion logged but row removal failed",
				zap.String("return", id), zap.Error(err))
		}
	}

	// Undo the stock effect of the deleted return.
	inventory, ierr := store.Inventory()
	products, perr := store.Products()
	if ierr == nil && perr == nil {
		adjusted := reconcile.Reverse(inventory, products, rec.Items, reconcile.Restore)
		if len(rec.ExchangeItems) > 0 {
			adjusted = reconcile.Reverse(adjusted, products, rec.ExchangeItems, reconcile.Consume)
		}
		if err := store.SaveInventory(adjusted); err != nil {
			zap.L().Error("return deletion logged but stock rollback failed",
				zap.String("return", id), zap.Error(err))
		}
	}

	GetApp(c).Bus().Publish(app.TopicReturnDeleted, id)
	return ok(c, entry)
}
