package main

import (
	"log"
	"strconv"

	"github.com/beego/beego/v2/server/web"
	"github.com/techpal/backend-go/app/bootstrap"
	"github.com/techpal/backend-go/app/router"
	"github.com/techpal/backend-go/internal/config"
	"github.com/techpal/backend-go/internal/logger"
	"go.uber.org/zap"
)

func main() {
	app, err := bootstrap.Init()
	if err != nil {
		log.Fatalf("failed to bootstrap application: %v", err)
	}
	defer app.Shutdown()

	// 初始化路由
	if err := router.Init(app.Container()); err != nil {
		log.Fatalf("failed to initialize routes: %v", err)
	}

	// 配置Beego全局设置
	web.BConfig.AppName = "TechPal"
	web.BConfig.CopyRequestBody = true
	if config.AppConfig.Server.Env == "production" {
		web.BConfig.RunMode = web.PROD
	}

	if p, err := strconv.Atoi(config.AppConfig.Server.Port); err == nil {
		web.BConfig.Listen.HTTPPort = p
	}

	logger.Info("🚀 Starting TechPal backend", zap.Int("port", web.BConfig.Listen.HTTPPort))
	web.Run()
}
