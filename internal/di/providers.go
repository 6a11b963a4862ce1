package di

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/techpal/backend-go/internal/chat"
	"github.com/techpal/backend-go/internal/config"
	"github.com/techpal/backend-go/internal/database"
	"github.com/techpal/backend-go/internal/kafka"
	"github.com/techpal/backend-go/internal/llm"
	"github.com/techpal/backend-go/internal/logger"
	"github.com/techpal/backend-go/internal/metrics"
	"github.com/techpal/backend-go/internal/prompt"
	"github.com/techpal/backend-go/internal/safety"
	"github.com/techpal/backend-go/internal/store"
)

// registerProviders 注册全部依赖提供者。
// 配置、数据库和Redis连接由bootstrap先行初始化，这里只负责装配，
// 构造器都是惰性的，未被Invoke到的依赖不会被创建。
func registerProviders(container *dig.Container) error {
	// 配置
	if err := container.Provide(func() (*config.Config, error) {
		cfg := config.AppConfig
		if cfg == nil {
			return nil, fmt.Errorf("config not loaded")
		}
		return cfg, nil
	}); err != nil {
		return err
	}

	// 日志
	if err := container.Provide(func() *zap.Logger {
		return logger.GetLogger()
	}); err != nil {
		return err
	}

	// 数据库
	if err := container.Provide(func() (*gorm.DB, error) {
		if database.DB == nil {
			return nil, fmt.Errorf("database not initialized")
		}
		return database.DB, nil
	}); err != nil {
		return err
	}

	// Redis，未连接时为nil，缓存层自行降级
	if err := container.Provide(func() *redis.Client {
		return database.RedisClient
	}); err != nil {
		return err
	}

	// 数据库健康检查器，后台探测循环由bootstrap启动
	if err := container.Provide(func(db *gorm.DB, log *zap.Logger) (*database.HealthChecker, error) {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		return database.NewHealthChecker(sqlDB, log), nil
	}); err != nil {
		return err
	}

	// 存储
	if err := container.Provide(func(client *redis.Client, cfg *config.Config, log *zap.Logger) *store.ListingCache {
		return store.NewListingCache(client, cfg.Redis.TTL, log)
	}); err != nil {
		return err
	}

	if err := container.Provide(store.NewStore); err != nil {
		return err
	}

	// 领域组件
	if err := container.Provide(safety.NewValidator); err != nil {
		return err
	}

	if err := container.Provide(prompt.NewAssembler); err != nil {
		return err
	}

	if err := container.Provide(metrics.NewCollector); err != nil {
		return err
	}

	if err := container.Provide(func(cfg *config.Config, log *zap.Logger, collector *metrics.Collector) *llm.Gateway {
		return llm.NewGateway(cfg.AI, log, collector)
	}); err != nil {
		return err
	}

	// Kafka不可用不阻塞启动，用量事件停发。所有调用方都能处理nil生产者
	if err := container.Provide(func(cfg *config.Config, log *zap.Logger) *kafka.Producer {
		producer, err := kafka.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("Failed to initialize Kafka producer, usage events disabled", zap.Error(err))
			return nil
		}
		return producer
	}); err != nil {
		return err
	}

	// 编排器，具体实现到接口的适配在这里完成
	if err := container.Provide(func(
		conversations *store.Store,
		validator *safety.Validator,
		assembler *prompt.Assembler,
		gateway *llm.Gateway,
		producer *kafka.Producer,
		collector *metrics.Collector,
		log *zap.Logger,
	) *chat.Service {
		return chat.NewService(conversations, validator, assembler, gateway, producer, collector, log)
	}); err != nil {
		return err
	}

	return nil
}
