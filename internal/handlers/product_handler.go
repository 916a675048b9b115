package handlers

import (
	"errors"
	"strconv"

	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the product routes with the Fiber router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", h.HandleAddProduct)
	productRoutes.Post("/bulk", h.HandleAddProducts)
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Put("/", h.HandleUpdateProduct)

	productRoutes.Get("/search/name/:name", h.HandleGetProductByName)
	productRoutes.Get("/search/price", h.HandleGetProductsByPriceRange)
	productRoutes.Get("/search/category/:category", h.HandleGetProductsByCategory)

	productRoutes.Get("/summary/category", h.HandleGetSummaryByCategory)
	productRoutes.Get("/summary/stock-value", h.HandleGetTotalStockValue)

	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
	productRoutes.Patch("/:id/out-of-stock", h.HandleMarkOutOfStock)
}

// HandleAddProduct creates a single product.
func (h *ProductHandler) HandleAddProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return h.badRequest(c, "Invalid request body", err)
	}

	saved, err := h.service.SaveProduct(&product)
	if err != nil {
		return h.serviceError(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

// HandleAddProducts creates a batch of products in one call.
func (h *ProductHandler) HandleAddProducts(c *fiber.Ctx) error {
	var products []models.Product
	if err := c.BodyParser(&products); err != nil {
		return h.badRequest(c, "Invalid request body", err)
	}

	saved, err := h.service.SaveProducts(products)
	if err != nil {
		return h.serviceError(c, "Could not create products", err)
	}
	return c.Status(fiber.StatusCreated).JSON(saved)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetProducts()
	if err != nil {
		return h.serviceError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return h.badRequest(c, "Invalid product ID", err)
	}

	product, err := h.service.GetProductByID(id)
	if err != nil {
		return h.serviceError(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleGetProductByName retrieves a single product by its exact name.
func (h *ProductHandler) HandleGetProductByName(c *fiber.Ctx) error {
	product, err := h.service.GetProductByName(c.Params("name"))
	if err != nil {
		return h.serviceError(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleUpdateProduct updates the product identified by the ID in the body.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return h.badRequest(c, "Invalid request body", err)
	}

	updated, err := h.service.UpdateProduct(&product)
	if err != nil {
		return h.serviceError(c, "Could not update product", err)
	}
	return c.JSON(updated)
}

// HandleDeleteProduct deletes a product by its ID and replies with a plain-text confirmation.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return h.badRequest(c, "Invalid product ID", err)
	}

	message, err := h.service.DeleteProduct(id)
	if err != nil {
		return h.serviceError(c, "Could not delete product", err)
	}
	return c.SendString(message)
}

// HandleGetProductsByPriceRange lists products priced between minPrice and maxPrice inclusive.
func (h *ProductHandler) HandleGetProductsByPriceRange(c *fiber.Ctx) error {
	minPrice, err := queryFloat(c, "minPrice")
	if err != nil {
		return h.badRequest(c, "Invalid minPrice", err)
	}
	maxPrice, err := queryFloat(c, "maxPrice")
	if err != nil {
		return h.badRequest(c, "Invalid maxPrice", err)
	}

	products, err := h.service.GetProductsByPriceRange(minPrice, maxPrice)
	if err != nil {
		return h.serviceError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProductsByCategory lists products of a category, ignoring case.
func (h *ProductHandler) HandleGetProductsByCategory(c *fiber.Ctx) error {
	products, err := h.service.GetProductsByCategory(c.Params("category"))
	if err != nil {
		return h.serviceError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleMarkOutOfStock flags a product as out of stock.
func (h *ProductHandler) HandleMarkOutOfStock(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return h.badRequest(c, "Invalid product ID", err)
	}

	product, err := h.service.MarkProductAsOutOfStock(id)
	if err != nil {
		return h.serviceError(c, "Could not update product", err)
	}
	return c.JSON(product)
}

// HandleGetSummaryByCategory returns the number of products per category.
func (h *ProductHandler) HandleGetSummaryByCategory(c *fiber.Ctx) error {
	summary, err := h.service.GetProductSummaryByCategory()
	if err != nil {
		return h.serviceError(c, "Could not summarize products", err)
	}
	return c.JSON(summary)
}

// HandleGetTotalStockValue returns the total stock value as a bare number.
func (h *ProductHandler) HandleGetTotalStockValue(c *fiber.Ctx) error {
	total, err := h.service.GetTotalStockValue()
	if err != nil {
		return h.serviceError(c, "Could not compute stock value", err)
	}
	return c.JSON(total)
}

func queryFloat(c *fiber.Ctx, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, errors.New("query parameter " + key + " is required")
	}
	return strconv.ParseFloat(raw, 64)
}

func (h *ProductHandler) badRequest(c *fiber.Ctx, message string, err error) error {
	h.logger.Debug(message, zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

func (h *ProductHandler) serviceError(c *fiber.Ctx, message string, err error) error {
	if errors.Is(err, services.ErrProductNotFound) {
		h.logger.Debug("product not found", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
	h.logger.Error(message, zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
