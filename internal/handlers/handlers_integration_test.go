package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"catalog/internal/handlers"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2025, time.April, 1, 10, 30, 0, 0, time.UTC)

// setupApp sets up a Fiber app for testing backed by an isolated in-memory SQLite database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo,
		services.WithClock(func() time.Time { return testNow }),
	)
	productHandler := handlers.NewProductHandler(productService, zap.NewNop())

	app := fiber.New(fiber.Config{UnescapePath: true})
	productHandler.RegisterRoutes(app.Group("/api/v1"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func seed(t *testing.T, app *fiber.App, products ...map[string]any) []models.Product {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products/bulk", products)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[[]models.Product](t, resp)
}

func TestProductCRUD(t *testing.T) {
	app := setupApp(t)

	// --- POST /products ---
	newProduct := map[string]any{
		"name":        "Smartphone",
		"description": "Latest model smartphone",
		"price":       799.99,
		"quantity":    50,
		"category":    "Electronics",
		"inStock":     true,
	}
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", newProduct)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	createdProduct := decode[models.Product](t, resp)
	assert.NotZero(t, createdProduct.ID)
	assert.Equal(t, "Smartphone", createdProduct.Name)
	require.NotNil(t, createdProduct.CreatedDate)
	assert.Equal(t, "2025-04-01", createdProduct.CreatedDate.String())
	assert.Equal(t, "2025-04-01", createdProduct.UpdatedDate.String())
	productPath := fmt.Sprintf("/api/v1/products/%d", createdProduct.ID)

	// --- GET /products/:id ---
	resp = doJSON(t, app, http.MethodGet, productPath, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	fetchedProduct := decode[models.Product](t, resp)
	assert.Equal(t, createdProduct.ID, fetchedProduct.ID)
	assert.Equal(t, 50, fetchedProduct.Quantity)

	// --- GET /products ---
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Product](t, resp), 1)

	// --- PUT /products ---
	updatedProductData := map[string]any{
		"id":          createdProduct.ID,
		"name":        "Smartphone Pro",
		"description": "Latest model smartphone pro edition",
		"price":       899.99,
		"quantity":    1,
		"category":    "Mobile",
		"inStock":     false,
	}
	resp = doJSON(t, app, http.MethodPut, "/api/v1/products", updatedProductData)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	updatedProduct := decode[models.Product](t, resp)
	assert.Equal(t, createdProduct.ID, updatedProduct.ID)
	assert.Equal(t, "Smartphone Pro", updatedProduct.Name)
	assert.Equal(t, 899.99, updatedProduct.Price)
	assert.Equal(t, "Mobile", *updatedProduct.Category)
	assert.Equal(t, 50, updatedProduct.Quantity, "update leaves quantity untouched")
	assert.True(t, updatedProduct.InStock, "update leaves the stock flag untouched")

	// --- PATCH /products/:id/out-of-stock ---
	resp = doJSON(t, app, http.MethodPatch, productPath+"/out-of-stock", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	outOfStock := decode[models.Product](t, resp)
	assert.Equal(t, 0, outOfStock.Quantity)
	assert.False(t, outOfStock.InStock)

	// --- DELETE /products/:id ---
	resp = doJSON(t, app, http.MethodDelete, productPath, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Product with ID %d deleted successfully.", createdProduct.ID), string(body))

	// Verify deletion
	resp = doJSON(t, app, http.MethodGet, productPath, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Deleting again is still confirmed
	resp = doJSON(t, app, http.MethodDelete, productPath, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBulkCreateKeepsOrder(t *testing.T) {
	app := setupApp(t)

	saved := seed(t, app,
		map[string]any{"name": "Laptop", "price": 1200.0, "quantity": 10},
		map[string]any{"name": "Keyboard", "price": 75.0, "quantity": 25, "createdDate": "2024-12-24"},
		map[string]any{"name": "Mouse", "price": 25.0, "quantity": 50},
	)

	require.Len(t, saved, 3)
	assert.Equal(t, "Laptop", saved[0].Name)
	assert.Equal(t, "Keyboard", saved[1].Name)
	assert.Equal(t, "Mouse", saved[2].Name)
	assert.Equal(t, "2024-12-24", saved[1].CreatedDate.String())
	assert.Equal(t, "2025-04-01", saved[1].UpdatedDate.String())
	assert.Equal(t, "2025-04-01", saved[0].CreatedDate.String())
}

func TestNotFoundResponses(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"get by id", http.MethodGet, "/api/v1/products/42", nil},
		{"get by name", http.MethodGet, "/api/v1/products/search/name/Nothing", nil},
		{"update", http.MethodPut, "/api/v1/products", map[string]any{"id": 42, "name": "Ghost"}},
		{"out of stock", http.MethodPatch, "/api/v1/products/42/out-of-stock", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			payload := decode[map[string]string](t, resp)
			assert.Contains(t, payload["message"], "not found")
		})
	}
}

func TestBadRequests(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"non numeric id", http.MethodGet, "/api/v1/products/abc"},
		{"non numeric delete id", http.MethodDelete, "/api/v1/products/abc"},
		{"missing max price", http.MethodGet, "/api/v1/products/search/price?minPrice=1"},
		{"invalid min price", http.MethodGet, "/api/v1/products/search/price?minPrice=cheap&maxPrice=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, tt.method, tt.path, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader([]byte(`{"name":`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchEndpoints(t *testing.T) {
	app := setupApp(t)
	seed(t, app,
		map[string]any{"name": "Gaming Mouse", "price": 10.0, "quantity": 2, "category": "Electronics"},
		map[string]any{"name": "Apples", "price": 5.0, "quantity": 3, "category": "groceries"},
		map[string]any{"name": "TV", "price": 20.0, "quantity": 1, "category": "electronics"},
		map[string]any{"name": "Gift card", "price": 50.0, "quantity": 4},
	)

	// Name lookup with an escaped space
	resp := doJSON(t, app, http.MethodGet, "/api/v1/products/search/name/"+url.PathEscape("Gaming Mouse"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Gaming Mouse", decode[models.Product](t, resp).Name)

	// Inclusive price range
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/search/price?minPrice=5&maxPrice=20", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Product](t, resp), 3)

	// Case-insensitive category
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/search/category/ELECTRONICS", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]models.Product](t, resp), 2)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/search/category/toys", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.Product](t, resp))
}

func TestSummaryEndpoints(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/products/summary/stock-value", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.0, decode[float64](t, resp))

	seed(t, app,
		map[string]any{"name": "P1", "price": 10.0, "quantity": 2, "category": "A"},
		map[string]any{"name": "P2", "price": 5.0, "quantity": 3, "category": "A"},
		map[string]any{"name": "P3", "price": 0.0, "quantity": 9, "category": "B"},
		map[string]any{"name": "P4", "price": 0.0, "quantity": 1},
	)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/summary/stock-value", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 35.0, decode[float64](t, resp))

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/summary/category", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]int64{"A": 2, "B": 1, services.UncategorizedKey: 1}, decode[map[string]int64](t, resp))
}
