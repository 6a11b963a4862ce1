package router

import (
	"fmt"

	"github.com/beego/beego/v2/server/web"
	"go.uber.org/dig"

	"github.com/techpal/backend-go/app/controllers"
	"github.com/techpal/backend-go/app/middleware"
)

// Init registers filters and all routes. Must be called after bootstrap
// has loaded config and built the dependency container.
func Init(container *dig.Container) error {
	web.InsertFilter("/*", web.BeforeRouter, middleware.RequestID)
	web.InsertFilter("/*", web.BeforeRouter, middleware.CORSMiddleware)
	web.InsertFilter("/*", web.FinishRouter, middleware.AccessLog, web.WithReturnOnOutput(false))

	factory := controllers.NewControllerFactory(container)

	chatController, err := factory.CreateChatController()
	if err != nil {
		return fmt.Errorf("failed to create chat controller: %w", err)
	}

	conversationController, err := factory.CreateConversationController()
	if err != nil {
		return fmt.Errorf("failed to create conversation controller: %w", err)
	}

	healthController, err := factory.CreateHealthController()
	if err != nil {
		return fmt.Errorf("failed to create health controller: %w", err)
	}

	web.Router("/", &controllers.RootController{}, "get:Index")
	web.Router("/health", healthController, "get:Health")
	web.Router("/metrics", &controllers.MetricsController{}, "get:Metrics")

	web.Router("/api/chat", chatController, "post:Post")
	web.Router("/api/ask", chatController, "post:Ask")

	web.Router("/api/conversations/:session_id", conversationController, "get:List")
	web.Router("/api/conversations/:session_id/:id", conversationController, "get:Get;delete:Delete")

	return nil
}
