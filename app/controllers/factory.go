package controllers

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"github.com/techpal/backend-go/internal/chat"
	"github.com/techpal/backend-go/internal/database"
	"github.com/techpal/backend-go/internal/kafka"
	"github.com/techpal/backend-go/internal/llm"
)

// ControllerFactory 控制器工厂，从依赖注入容器解析控制器依赖
type ControllerFactory struct {
	container *dig.Container
}

// NewControllerFactory 创建控制器工厂
func NewControllerFactory(container *dig.Container) *ControllerFactory {
	return &ControllerFactory{
		container: container,
	}
}

// CreateChatController 创建聊天控制器
func (f *ControllerFactory) CreateChatController() (*ChatController, error) {
	var controller *ChatController

	err := f.container.Invoke(func(chatService *chat.Service) {
		controller = NewChatController(chatService)
	})
	if err != nil {
		return nil, err
	}

	return controller, nil
}

// CreateConversationController 创建会话管理控制器
func (f *ControllerFactory) CreateConversationController() (*ConversationController, error) {
	var controller *ConversationController

	err := f.container.Invoke(func(chatService *chat.Service) {
		controller = NewConversationController(chatService)
	})
	if err != nil {
		return nil, err
	}

	return controller, nil
}

// CreateHealthController 创建健康检查控制器
func (f *ControllerFactory) CreateHealthController() (*HealthController, error) {
	var controller *HealthController

	err := f.container.Invoke(func(
		checker *database.HealthChecker,
		gateway *llm.Gateway,
		producer *kafka.Producer,
		redisClient *redis.Client,
	) {
		controller = NewHealthController(checker, gateway, producer, redisClient)
	})
	if err != nil {
		return nil, err
	}

	return controller, nil
}
