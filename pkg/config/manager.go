package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/junbin-yang/go-smallfsm/pkg/logger"
)

// Manager 通用配置管理器
// 加载顺序：.env（可选） -> 配置文件 -> 环境变量覆盖
type Manager struct {
	instance         interface{}  // 配置实例
	configPath       string       // 配置文件路径
	appName          string       // 应用名称
	serializer       Serializer   // 当前使用的序列化器
	forceFormat      Serializer   // 强制指定的格式（优先级最高）
	supportedFormats []Serializer // 支持的配置格式列表
	defaultPaths     []string     // 默认配置路径模板
	envPrefix        string       // 环境变量前缀
	loadDotEnv       bool         // 是否读取 .env
	dotEnvFiles      []string     // .env 文件列表
	once             sync.Once    // 确保配置只加载一次
	mu               sync.RWMutex // 读写锁
	loadErr          error        // 加载错误
	logger           logger.Logger

	// 配置监听相关
	enableWatch           bool
	watchDebounceInterval time.Duration
	watcher               *fsnotify.Watcher
	watchQuit             chan struct{}
	watchOnce             sync.Once
	closeOnce             sync.Once

	callbacks []func(old, new interface{})
}

// NewManager 创建配置管理器实例
// cfg 必须是结构体指针
func NewManager(cfg interface{}, options ...Option) *Manager {
	if cfg == nil {
		panic("config instance cannot be nil")
	}
	if reflect.ValueOf(cfg).Kind() != reflect.Ptr {
		panic("config instance must be a pointer")
	}

	cm := &Manager{
		instance:         cfg,
		appName:          DefaultAppName,
		serializer:       &YAMLSerializer{},
		supportedFormats: []Serializer{&YAMLSerializer{}, &JSONSerializer{}, &INISerializer{}},
		defaultPaths:     defaultSearchPaths,
		logger:                logger.Default(),
		watchDebounceInterval: 500 * time.Millisecond,
		watchQuit:             make(chan struct{}),
	}

	for _, opt := range options {
		opt(cm)
	}

	return cm
}

// LoadConfig 加载配置文件，只会执行一次
// customPath 为空时按默认路径查找
func (cm *Manager) LoadConfig(customPath string) error {
	cm.once.Do(func() {
		cm.loadErr = cm.load(customPath)
	})
	return cm.loadErr
}

func (cm *Manager) load(customPath string) error {
	var err error

	if cm.loadDotEnv {
		if err = loadDotEnv(cm.dotEnvFiles); err != nil {
			return err
		}
	}

	if customPath != "" {
		if err = checkConfigFile(customPath); err != nil {
			return err
		}
		cm.configPath = customPath
		cm.chooseSerializer(customPath)
	} else if cm.configPath, err = cm.findDefaultConfigPath(); err != nil {
		return fmt.Errorf("default config not found: %w", err)
	}

	if err = cm.parseConfigFile(cm.instance); err != nil {
		return fmt.Errorf("parse config failed: %w", err)
	}

	if err = applyEnvOverrides(cm.instance, cm.envPrefix); err != nil {
		return fmt.Errorf("apply env overrides failed: %w", err)
	}

	if cm.enableWatch {
		if err = cm.startWatch(); err != nil {
			return err
		}
	}
	return nil
}

// LoadEnv 只从环境变量（及可选的 .env）加载配置，不读取文件
func (cm *Manager) LoadEnv() error {
	cm.once.Do(func() {
		if cm.loadDotEnv {
			if err := loadDotEnv(cm.dotEnvFiles); err != nil {
				cm.loadErr = err
				return
			}
		}
		if err := applyEnvOverrides(cm.instance, cm.envPrefix); err != nil {
			cm.loadErr = fmt.Errorf("apply env overrides failed: %w", err)
		}
	})
	return cm.loadErr
}

// GetConfig 获取配置实例
func (cm *Manager) GetConfig() (interface{}, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.loadErr != nil {
		return nil, cm.loadErr
	}
	return cm.instance, nil
}

// Path 返回实际使用的配置文件路径
func (cm *Manager) Path() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.configPath
}

// SaveConfig 保存配置到文件
func (cm *Manager) SaveConfig() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.configPath == "" {
		return errors.New("config not initialized")
	}

	data, err := cm.serializer.Marshal(cm.instance)
	if err != nil {
		return fmt.Errorf("marshal config failed: %w", err)
	}

	// 先写入临时文件再替换，避免写一半的文件被读取
	tmpPath := cm.configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write temp config failed: %w", err)
	}
	if err := os.Rename(tmpPath, cm.configPath); err != nil {
		return fmt.Errorf("rename temp config failed: %w", err)
	}
	return nil
}

// ReloadConfig 重新读取配置文件，解析成功后替换实例并触发回调
// 解析失败时保留旧实例
func (cm *Manager) ReloadConfig() error {
	cm.mu.Lock()

	if cm.configPath == "" {
		cm.mu.Unlock()
		return errors.New("config path not initialized")
	}
	if err := checkConfigFile(cm.configPath); err != nil {
		cm.mu.Unlock()
		return err
	}

	newInstance := reflect.New(reflect.ValueOf(cm.instance).Elem().Type()).Interface()
	if err := cm.parseConfigFile(newInstance); err != nil {
		cm.mu.Unlock()
		return err
	}
	if err := applyEnvOverrides(newInstance, cm.envPrefix); err != nil {
		cm.mu.Unlock()
		return fmt.Errorf("apply env overrides failed: %w", err)
	}

	oldInstance := cm.instance
	cm.instance = newInstance
	cm.loadErr = nil

	callbacks := make([]func(old, new interface{}), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	// 回调在锁外执行
	for _, callback := range callbacks {
		callback(oldInstance, newInstance)
	}
	return nil
}

// EnableWatch 动态启用/禁用配置监听
func (cm *Manager) EnableWatch(enable bool) error {
	cm.mu.Lock()
	cm.enableWatch = enable
	hasPath := cm.configPath != ""
	cm.mu.Unlock()

	if enable && hasPath {
		return cm.startWatch()
	}
	cm.stopWatch()
	return nil
}

// Close 关闭配置管理器（停止监听），可重复调用
func (cm *Manager) Close() {
	cm.closeOnce.Do(func() {
		close(cm.watchQuit)
		cm.stopWatch()
	})
}

// OnChange 注册配置变更回调
func (cm *Manager) OnChange(callback func(old, new interface{})) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, callback)
}

/* ------------------------------ 内部方法 ------------------------------ */

// chooseSerializer 强制格式 > 后缀识别 > 默认
func (cm *Manager) chooseSerializer(path string) {
	if cm.forceFormat != nil {
		cm.serializer = cm.forceFormat
		return
	}

	ext := filepath.Ext(path)
	if ext == ".yaml" {
		ext = ".yml"
	}
	for _, format := range cm.supportedFormats {
		if format.GetFileExt() == ext {
			cm.serializer = format
			return
		}
	}
}

// findDefaultConfigPath 按默认路径查找配置文件
// 每个模板先尝试无后缀文件（默认或强制格式），再依次尝试支持的格式后缀
func (cm *Manager) findDefaultConfigPath() (string, error) {
	vars := newSearchVars(cm.appName)

	var tried []string
	for _, tpl := range cm.defaultPaths {
		base, ok := vars.expand(tpl)
		if !ok {
			continue
		}

		if checkConfigFile(base) == nil {
			cm.chooseSerializer(base)
			return base, nil
		}
		tried = append(tried, base)

		for _, format := range cm.supportedFormats {
			if checkConfigFile(base+format.GetFileExt()) != nil {
				continue
			}
			cm.serializer = format
			if cm.forceFormat != nil {
				cm.serializer = cm.forceFormat
			}
			return base + format.GetFileExt(), nil
		}
	}

	return "", fmt.Errorf("%w: tried %v", ErrConfigNotFound, tried)
}

// startWatch 启动配置文件监听
// 监听所在目录而不是文件本身，编辑器的原子替换（rename）不会让监听失效
func (cm *Manager) startWatch() error {
	var err error
	cm.watchOnce.Do(func() {
		var w *fsnotify.Watcher
		if w, err = fsnotify.NewWatcher(); err != nil {
			err = fmt.Errorf("create watcher failed: %w", err)
			return
		}
		if err = w.Add(filepath.Dir(cm.Path())); err != nil {
			_ = w.Close()
			err = fmt.Errorf("add watch path failed: %w", err)
			return
		}

		cm.mu.Lock()
		cm.watcher = w
		cm.mu.Unlock()

		go cm.watchLoop(w)
	})
	return err
}

// stopWatch 停止配置文件监听
func (cm *Manager) stopWatch() {
	cm.mu.Lock()
	w := cm.watcher
	cm.watcher = nil
	cm.watchOnce = sync.Once{}
	cm.mu.Unlock()

	if w != nil {
		_ = w.Close()
	}
}

// watchLoop 监听文件变化，防抖后自动重载
func (cm *Manager) watchLoop(w *fsnotify.Watcher) {
	debounce := time.NewTimer(cm.watchDebounceInterval)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()

	target := filepath.Clean(cm.Path())

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce.Reset(cm.watchDebounceInterval)
			}

		case <-debounce.C:
			start := time.Now()
			if err := cm.ReloadConfig(); err != nil {
				cm.logger.Warn("config auto reload failed", logger.String("path", target), logger.Err(err))
			} else {
				cm.logger.Info("config auto reloaded",
					logger.String("path", target),
					logger.Duration("debounce", cm.watchDebounceInterval),
					logger.Duration("elapsed", time.Since(start)),
				)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			cm.logger.Warn("config watch error", logger.Err(err))

		case <-cm.watchQuit:
			return
		}
	}
}

// parseConfigFile 读取并解析配置文件到 dst
func (cm *Manager) parseConfigFile(dst interface{}) error {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return fmt.Errorf("read file failed: %w", err)
	}

	if err := cm.serializer.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal failed (%s): %w", cm.serializer.GetName(), err)
	}
	return nil
}
