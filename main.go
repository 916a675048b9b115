package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"catalog/internal/app"
	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/handlers"
	"catalog/pkg/logger"
	"catalog/pkg/rabbitmq"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Env: cfg.AppEnv})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("catalog service failed", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	// --- Database ---
	var db *gorm.DB
	if cfg.DatabaseDriver != "memory" {
		var err error
		db, err = database.Open(database.Config{
			Driver:      cfg.DatabaseDriver,
			DSN:         cfg.DatabaseDSN,
			AutoMigrate: cfg.DatabaseAutoMigrate,
		}, zapLogger)
		if err != nil {
			return err
		}
		defer func() {
			if err := database.Close(db); err != nil {
				zapLogger.Warn("failed to close database", zap.Error(err))
			}
		}()
	} else {
		zapLogger.Warn("using in-memory product storage; records are lost on exit")
	}

	deps := app.Dependencies{DB: db, Logger: zapLogger}

	// --- RabbitMQ (optional) ---
	if cfg.RabbitMQEnabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:        cfg.RabbitMQURL,
			Exchange:   cfg.RabbitMQExchange,
			Queue:      cfg.RabbitMQAuditQueue,
			BindingKey: "product.#",
		}, zapLogger.Named("rabbitmq"))
		if err != nil {
			return err
		}
		defer mqClient.Close()

		deps.Publisher = mqClient
		deps.Exchange = cfg.RabbitMQExchange

		if cfg.RabbitMQAuditQueue != "" {
			if err := mqClient.Consume(handlers.NewProductAuditHandler(zapLogger)); err != nil {
				zapLogger.Warn("failed to start product audit consumer", zap.Error(err))
			}
		}
	}

	fiberApp := app.New(deps)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("starting server", zap.String("port", cfg.AppPort))
		serverErr <- fiberApp.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	zapLogger.Info("shutting down server")
	if err := fiberApp.Shutdown(); err != nil {
		zapLogger.Error("error during Fiber shutdown", zap.Error(err))
	}
	zapLogger.Info("server gracefully stopped")
	return nil
}
