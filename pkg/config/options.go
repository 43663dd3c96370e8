package config

import (
	"time"

	"github.com/junbin-yang/go-smallfsm/pkg/logger"
)

// Option 配置管理器选项
type Option func(*Manager)

// WithAppName 设置应用名称（用于默认配置文件名）
func WithAppName(name string) Option {
	return func(cm *Manager) {
		cm.appName = name
	}
}

// WithSerializer 设置默认序列化器
func WithSerializer(s Serializer) Option {
	return func(cm *Manager) {
		cm.serializer = s
	}
}

// WithForceFormat 强制指定配置格式（无视文件后缀）
func WithForceFormat(s Serializer) Option {
	return func(cm *Manager) {
		cm.forceFormat = s
	}
}

// WithDefaultPaths 设置默认配置文件查找路径，支持 {{.AppName}} 与 {{.ExecDir}}
func WithDefaultPaths(paths ...string) Option {
	return func(cm *Manager) {
		cm.defaultPaths = paths
	}
}

// WithConfigFormats 设置支持的配置格式列表
func WithConfigFormats(formats ...Serializer) Option {
	return func(cm *Manager) {
		cm.supportedFormats = formats
	}
}

// WithConfigWatch 启用配置文件监听（文件变化自动重载）
func WithConfigWatch(enable bool, interval time.Duration) Option {
	return func(cm *Manager) {
		cm.enableWatch = enable
		cm.watchDebounceInterval = interval
		if interval <= 0 {
			cm.watchDebounceInterval = 500 * time.Millisecond
		}
	}
}

// WithDotEnv 加载配置前先读取 .env 文件，已存在的环境变量不会被覆盖
func WithDotEnv(paths ...string) Option {
	return func(cm *Manager) {
		cm.dotEnvFiles = paths
		cm.loadDotEnv = true
	}
}

// WithEnvPrefix 环境变量前缀，如 "SMALLFSM_"
func WithEnvPrefix(prefix string) Option {
	return func(cm *Manager) {
		cm.envPrefix = prefix
	}
}

// WithLogger 设置日志器，用于输出监听与自动重载信息
func WithLogger(l logger.Logger) Option {
	return func(cm *Manager) {
		if l != nil {
			cm.logger = l
		}
	}
}
