package bootstrap

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/techpal/backend-go/internal/config"
	"github.com/techpal/backend-go/internal/database"
	"github.com/techpal/backend-go/internal/di"
	"github.com/techpal/backend-go/internal/kafka"
	"github.com/techpal/backend-go/internal/llm"
	"github.com/techpal/backend-go/internal/logger"
)

// App encapsulates lifecycle resources that need to be cleaned up on shutdown.
type App struct {
	container      *dig.Container
	cleanupTasks   []func() error
	cancelMonitors context.CancelFunc
}

// Container returns the dependency injection container.
func (a *App) Container() *dig.Container {
	return a.container
}

// Init bootstraps configuration, logger, database connections and other shared
// infrastructure components required by the Beego application.
func Init() (*App, error) {
	// Load environment variables from .env if present (non-fatal if missing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize structured logger.
	if err := logger.InitLogger(); err != nil {
		return nil, err
	}

	// Load configuration.
	if err := config.LoadConfig(); err != nil {
		return nil, err
	}

	app := &App{}

	// Initialize database.
	if _, err := database.InitDB(); err != nil {
		return nil, err
	}
	app.cleanupTasks = append(app.cleanupTasks, func() error {
		return database.CloseDB()
	})

	// Initialize Redis (optional). Without it the listing cache is disabled.
	if _, err := database.InitRedis(); err != nil {
		logger.Warn("Failed to initialize Redis, listing cache disabled", zap.Error(err))
	} else {
		app.cleanupTasks = append(app.cleanupTasks, func() error {
			return database.CloseRedis()
		})
	}

	// Build the dependency injection container.
	container, err := di.New()
	if err != nil {
		return nil, err
	}
	app.container = container

	// Start background monitors for the database connection.
	monitorCtx, cancel := context.WithCancel(context.Background())
	app.cancelMonitors = cancel
	app.cleanupTasks = append(app.cleanupTasks, func() error {
		cancel()
		return nil
	})

	if err := container.Invoke(func(checker *database.HealthChecker) {
		go checker.Start(monitorCtx)
	}); err != nil {
		return nil, err
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		database.NewMetricsCollector(sqlDB, logger.GetLogger()).Start(monitorCtx)
	}

	// Initialize the Kafka producer (optional) and register its cleanup.
	if err := container.Invoke(func(producer *kafka.Producer) {
		if producer.Enabled() {
			app.cleanupTasks = append(app.cleanupTasks, producer.Close)
		}
	}); err != nil {
		return nil, err
	}

	// Hot reload: generation params follow config file changes without restart.
	if err := container.Invoke(func(gateway *llm.Gateway) {
		config.OnReload(func(cfg *config.Config) {
			gateway.SetGenerationParams(llm.GenerationParams{
				MaxTokens:        cfg.AI.MaxTokens,
				Temperature:      cfg.AI.Temperature,
				PresencePenalty:  cfg.AI.PresencePenalty,
				FrequencyPenalty: cfg.AI.FrequencyPenalty,
			})
		})
	}); err != nil {
		return nil, err
	}
	config.StartWatching()

	return app, nil
}

// Shutdown flushes logs and closes resources gracefully.
func (a *App) Shutdown() {
	// Execute cleanup tasks in reverse order (best effort).
	for i := len(a.cleanupTasks) - 1; i >= 0; i-- {
		if err := a.cleanupTasks[i](); err != nil {
			log.Printf("Cleanup error: %v\n", err)
		}
	}

	// Flush logger buffers.
	logger.Sync()
}
