package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/techpal/backend-go/internal/logger"
)

// ReloadCallback 配置重载后的通知回调，参数为新的配置快照
type ReloadCallback func(cfg *Config)

var (
	watcherMu       sync.Mutex
	watching        bool
	reloadCallbacks []ReloadCallback
)

// OnReload 注册配置重载回调
func OnReload(cb ReloadCallback) {
	watcherMu.Lock()
	defer watcherMu.Unlock()
	reloadCallbacks = append(reloadCallbacks, cb)
}

// StartWatching 监听配置文件变化并热更新配置。
// 未通过CONFIG_FILE指定配置文件时不做任何事。
func StartWatching() {
	watcherMu.Lock()
	defer watcherMu.Unlock()

	if watching || viper.ConfigFileUsed() == "" {
		return
	}

	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("Config file changed, reloading", zap.String("file", e.Name))
		handleConfigChange()
	})

	watching = true
	logger.Info("Config hot reload enabled", zap.String("file", viper.ConfigFileUsed()))
}

// handleConfigChange 重建配置并通知订阅方。
// 环境变量优先级高于配置文件，重载不会覆盖启动时的环境变量取值。
func handleConfigChange() {
	cfg := buildConfig()
	if err := decryptSensitive(cfg); err != nil {
		logger.Error("Failed to decrypt reloaded config, keeping previous", zap.Error(err))
		return
	}

	watcherMu.Lock()
	AppConfig = cfg
	callbacks := make([]ReloadCallback, len(reloadCallbacks))
	copy(callbacks, reloadCallbacks)
	watcherMu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}
