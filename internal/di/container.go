package di

import (
	"go.uber.org/dig"
)

// New 创建并装配依赖注入容器。
// 容器由调用方持有，不设包级全局实例，便于测试时各自独立构建。
func New() (*dig.Container, error) {
	container := dig.New()
	if err := registerProviders(container); err != nil {
		return nil, err
	}
	return container, nil
}
