// Package app wires the catalog repositories, services and handlers into a Fiber application.
package app

import (
	"errors"
	"time"

	"catalog/internal/database"
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the process-wide resources handed to the application.
type Dependencies struct {
	// DB is nil when products are kept in memory.
	DB        *gorm.DB
	Logger    *zap.Logger
	Publisher services.EventPublisher
	Exchange  string
}

// NewProductRepository selects the GORM repository when a database handle is present.
func NewProductRepository(db *gorm.DB) repositories.ProductRepository {
	if db == nil {
		return repositories.NewMemoryProductRepository()
	}
	return repositories.NewGORMProductRepository(db)
}

// New builds the Fiber application with every route registered under /api/v1.
func New(deps Dependencies) *fiber.App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []services.Option{services.WithLogger(logger.Named("products"))}
	if deps.Publisher != nil {
		opts = append(opts, services.WithPublisher(deps.Publisher, deps.Exchange))
	}
	productService := services.NewProductService(NewProductRepository(deps.DB), opts...)
	productHandler := handlers.NewProductHandler(productService, logger.Named("http"))

	app := fiber.New(fiber.Config{
		AppName:      "catalog",
		UnescapePath: true,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(logger.Named("access")))

	app.Get("/health", healthHandler(deps.DB))

	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1)

	return app
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, dbStatus, code := "healthy", "up", fiber.StatusOK
		if db == nil {
			dbStatus = "memory"
		} else if err := database.Ping(db); err != nil {
			status, dbStatus, code = "unhealthy", "down", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
		})
	}
}

// errorHandler renders errors that escaped the handlers as JSON.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"message": err.Error(),
	})
}
