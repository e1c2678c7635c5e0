package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"

	"github.com/cafedesk/cafedesk/internal/app"
	"github.com/cafedesk/cafedesk/internal/domain"
	"github.com/cafedesk/cafedesk/internal/webserver"
	"github.com/cafedesk/cafedesk/pkg/common"
)

type productPayload struct {
	Name        string              `json:"name" validate:"required,min=1,max=200"`
	SellPrice   float64             `json:"sell_price" validate:"gte=0"`
	CostPrice   float64             `json:"cost_price" validate:"gte=0"`
	Category    string              `json:"category"`
	Ingredients []domain.Ingredient `json:"ingredients"`
}

func registerCatalogRoutes() {
	webserver.ApiGET("/catalog/products", listProducts)
	webserver.ApiGET("/catalog/products/:id", getProduct)
	webserver.ApiPOST("/catalog/products", createProduct)
	webserver.ApiPUT("/catalog/products/:id", updateProduct)
	webserver.ApiDELETE("/catalog/products/:id", deleteProduct)

	webserver.ApiGET("/catalog/inventory", listInventory)
	webserver.ApiPOST("/catalog/inventory", createInventoryItem)
	webserver.ApiPUT("/catalog/inventory/:id", updateInventoryItem)
	webserver.ApiDELETE("/catalog/inventory/:id", deleteInventoryItem)
}

func listProducts(c echo.Context) error {
	products, err := GetStore(c).Products()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load products", err.Error())
	}
	q := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	category := strings.TrimSpace(c.QueryParam("category"))
	filtered := products[:0]
	for _, p := range products {
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		filtered = append(filtered, p)
	}
	page, pageSize := parsePagination(c)
	return paged(c, pageSlice(filtered, page, pageSize), int64(len(filtered)), page, pageSize)
}

func getProduct(c echo.Context) error {
	products, err := GetStore(c).Products()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load products", err.Error())
	}
	id := c.Param("id")
	for i := range products {
		if products[i].ID == id {
			return ok(c, products[i])
		}
	}
	return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required and prices must not be negative", nil)
	}

	now := time.Now()
	p := domain.Product{
		ID:          common.UUID(),
		Name:        strings.TrimSpace(payload.Name),
		SellPrice:   payload.SellPrice,
		CostPrice:   payload.CostPrice,
		Category:    strings.TrimSpace(payload.Category),
		Ingredients: payload.Ingredients,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if len(p.Ingredients) > 0 {
		p.CostPrice = p.IngredientCost()
	}

	store := GetStore(c)
	products, err := store.Products()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load products", err.Error())
	}
	if err := store.SaveProducts(append(products, p)); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to create product", err.Error())
	}
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required and prices must not be negative", nil)
	}

	store := GetStore(c)
	products, err := store.Products()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load products", err.Error())
	}
	id := c.Param("id")
	for i := range products {
		if products[i].ID != id {
			continue
		}
		p := &products[i]
		p.Name = strings.TrimSpace(payload.Name)
		p.SellPrice = payload.SellPrice
		p.CostPrice = payload.CostPrice
		p.Category = strings.TrimSpace(payload.Category)
		p.Ingredients = payload.Ingredients
		if len(p.Ingredients) > 0 {
			p.CostPrice = p.IngredientCost()
		}
		p.UpdatedAt = time.Now()
		if err := store.SaveProducts(products); err != nil {
			return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to update product", err.Error())
		}
		return ok(c, *p)
	}
	return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
}

func deleteProduct(c echo.Context) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}
	store := GetStore(c)
	products, err := store.Products()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load products", err.Error())
	}
	id := c.Param("id")
	kept := products[:0]
	found := false
	for _, p := range products {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	if err := store.SaveProducts(kept); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to delete product", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

func listInventory(c echo.Context) error {
	inventory, err := GetStore(c).Inventory()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load inventory", err.Error())
	}
	q := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	if q != "" {
		filtered := inventory[:0]
		for _, it := range inventory {
			if strings.Contains(strings.ToLower(it.Name), q) {
				filtered = append(filtered, it)
			}
		}
		inventory = filtered
	}
	page, pageSize := parsePagination(c)
	return paged(c, pageSlice(inventory, page, pageSize), int64(len(inventory)), page, pageSize)
}

type inventoryPayload struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Unit        string  `json:"unit"`
	Quantity    float64 `json:"quantity"`
	CostPerUnit float64 `json:"cost_per_unit" validate:"gte=0"`
	SellPrice   float64 `json:"sell_price" validate:"gte=0"`
}

func createInventoryItem(c echo.Context) error {
	var payload inventoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse inventory item", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name is required and prices must not be negative", nil)
	}

	now := time.Now()
	item := domain.InventoryItem{
		ID:          common.UUID(),
		Name:        strings.TrimSpace(payload.Name),
		Unit:        strings.TrimSpace(payload.Unit),
		Quantity:    payload.Quantity,
		CostPerUnit: payload.CostPerUnit,
		SellPrice:   payload.SellPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	store := GetStore(c)
	inventory, err := store.Inventory()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load inventory", err.Error())
	}
	if err := store.SaveInventory(append(inventory, item)); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to create inventory item", err.Error())
	}
	GetApp(c).Bus().Publish(app.TopicInventoryChanged)
	return ok(c, item)
}

// updateInventoryItem applies a partial update: only the fields present in
// the request body change, so a quantity adjustment does not clobber a
// concurrently edited price.
func updateInventoryItem(c echo.Context) error {
	var patch map[string]interface{}
	if err := c.Bind(&patch); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse inventory patch", err.Error())
	}

	store := GetStore(c)
	inventory, err := store.Inventory()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load inventory", err.Error())
	}
	id := c.Param("id")
	for i := range inventory {
		if inventory[i].ID != id {
			continue
		}
		item := &inventory[i]
		delete(patch, "id")
		decoder, derr := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			Result:           item,
			WeaklyTypedInput: true,
		})
		if derr != nil {
			return fail(c, http.StatusInternalServerError, "DECODE_ERROR", "Failed to build decoder", derr.Error())
		}
		if err := decoder.Decode(patch); err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid inventory patch", err.Error())
		}
		if item.Name == "" {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name must not be empty", nil)
		}
		item.UpdatedAt = time.Now()
		if err := store.SaveInventory(inventory); err != nil {
			return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to update inventory item", err.Error())
		}
		GetApp(c).Bus().Publish(app.TopicInventoryChanged)
		return ok(c, *item)
	}
	return fail(c, http.StatusNotFound, "NOT_FOUND", "Inventory item not found", nil)
}

func deleteInventoryItem(c echo.Context) error {
	if _, err := requireAdmin(c); err != nil {
		return err
	}
	store := GetStore(c)
	inventory, err := store.Inventory()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to load inventory", err.Error())
	}
	id := c.Param("id")
	kept := inventory[:0]
	found := false
	for _, it := range inventory {
		if it.ID == id {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Inventory item not found", nil)
	}
	if err := store.SaveInventory(kept); err != nil {
		return fail(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to delete inventory item", err.Error())
	}
	GetApp(c).Bus().Publish(app.TopicInventoryChanged)
	return ok(c, map[string]interface{}{"id": id})
}
