package controllers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/techpal/backend-go/internal/database"
	"github.com/techpal/backend-go/internal/kafka"
	"github.com/techpal/backend-go/internal/llm"
)

const (
	serviceName    = "TechPal"
	serviceVersion = "1.0.0"

	subsystemProbeTimeout = 2 * time.Second
)

// RootController 根控制器
type RootController struct {
	BaseController
}

// Index 服务横幅
func (c *RootController) Index() {
	c.JSONSuccess(map[string]interface{}{
		"service":     serviceName,
		"version":     serviceVersion,
		"description": "Educational AI assistant for children ages 8-16",
		"endpoints": map[string]string{
			"chat":          "/api/chat",
			"ask":           "/api/ask",
			"conversations": "/api/conversations/:session_id",
			"health":        "/health",
			"metrics":       "/metrics",
		},
	})
}

// HealthController 健康检查控制器
type HealthController struct {
	BaseController
	checker     *database.HealthChecker
	gateway     *llm.Gateway
	producer    *kafka.Producer
	redisClient *redis.Client
}

// NewHealthController 创建健康检查控制器
func NewHealthController(checker *database.HealthChecker, gateway *llm.Gateway, producer *kafka.Producer, redisClient *redis.Client) *HealthController {
	return &HealthController{
		checker:     checker,
		gateway:     gateway,
		producer:    producer,
		redisClient: redisClient,
	}
}

// Health 报告服务及各子系统状态。
// 数据库不可用时整体降级，Redis和Kafka是可选依赖，不影响整体状态。
func (c *HealthController) Health() {
	subsystems := map[string]string{
		"database": c.databaseStatus(),
		"redis":    c.redisStatus(),
		"kafka":    c.kafkaStatus(),
	}

	status := "healthy"
	if subsystems["database"] != "up" {
		status = "degraded"
	}

	payload := map[string]interface{}{
		"status":     status,
		"service":    serviceName,
		"version":    serviceVersion,
		"subsystems": subsystems,
	}
	if c.gateway != nil {
		payload["llm_providers"] = c.gateway.Stats()
	}

	c.JSONSuccess(payload)
}

func (c *HealthController) databaseStatus() string {
	if c.checker == nil {
		return "down"
	}
	if c.checker.IsHealthy() {
		return "up"
	}
	return "down"
}

func (c *HealthController) redisStatus() string {
	if c.redisClient == nil {
		return "disabled"
	}

	ctx, cancel := context.WithTimeout(context.Background(), subsystemProbeTimeout)
	defer cancel()

	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		return "down"
	}
	return "up"
}

func (c *HealthController) kafkaStatus() string {
	if c.producer == nil || !c.producer.Enabled() {
		return "disabled"
	}
	return "up"
}
