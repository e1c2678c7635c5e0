package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/cafedesk/cafedesk/internal/app"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/reconcile"
	"github.com/cafedesk/cafedesk/internal/webserver"
	"github.com/cafedesk/cafedesk/pkg/common"
)

type salePayload struct {
	Items    []domain.SaleItem `json:"items" validate:"required,min=1"`
	Discount *domain.Discount  `json:"discount"`
}

func registerSaleRoutes() {
	webserver.ApiGET("/pos/sales", listSales)
	webserver.ApiPOST("/pos/sales", createSale)
}

func listSales(c echo.Context) error {
	sales, err := GetStore(c).Sales()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load sales", err.Error())
	}
	if date := c.QueryParam("date"); date != "" {
		filtered := sales[:0]
		for _, s := range sales {
			if s.Date == date {
				filtered = append(filtered, s)
			}
		}
		sales = filtered
	}
	page, pageSize := parsePagination(c)
	return paged(c, pageSlice(sales, page, pageSize), int64(len(sales)), page, pageSize)
}

// createSale commits a checkout: price the lines, apply the discount, write
// the sale and reconcile stock in one local-store pass, then let the bus
// handle the mirror.
func createSale(c echo.Context) error {
	worker, err := currentWorker(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session invalid", nil)
	}
	var payload salePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse sale", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "At least one item is required", nil)
	}
	for i := range payload.Items {
		it := &payload.Items[i]
		if it.Ref.IsZero() || it.Quantity <= 0 {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Every line needs an item reference and a positive quantity", nil)
		}
		if it.Total == 0 {
			it.Total = it.Quantity * it.UnitPrice
		}
	}

	var total float64
	for _, it := range payload.Items {
		total += it.Total
	}
	if payload.Discount != nil {
		if payload.Discount.Percent > 0 {
			payload.Discount.Amount = total * payload.Discount.Percent / 100
		}
		total -= payload.Discount.Amount
		if total < 0 {
			total = 0
		}
	}

	store := GetStore(c)
	inventory, err := store.Inventory()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load inventory", err.Error())
	}
	products, err := store.Products()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load products", err.Error())
	}
	sales, err := store.Sales()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load sales", err.Error())
	}

	now := time.Now()
	sale := domain.Sale{
		ID:         common.UUID(),
		Items:      payload.Items,
		Total:      total,
		Discount:   payload.Discount,
		WorkerID:   worker.ID,
		WorkerName: worker.Name,
		Date:       common.DateStr(now),
		Time:       common.ClockStr(now),
		CreatedAt:  now,
	}

	// The sale row is the record of truth; stock follows it. Negative stock
	// is allowed, so reconciliation cannot reject a checkout.
	if err := store.SaveSales(append(sales, sale)); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to save sale", err.Error())
	}
	adjusted := reconcile.Apply(inventory, products, sale.Items, reconcile.Consume)
	if err := store.SaveInventory(adjusted); err != nil {
		zap.L().Error("sale saved but stock reconciliation failed",
			zap.String("sale", sale.ID), zap.Error(err))
	}

	GetApp(c).Bus().Publish(app.TopicSaleCreated, sale)
	return ok(c, sale)
}
