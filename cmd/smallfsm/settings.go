package main

import (
	"flag"
	"io"

	"github.com/junbin-yang/go-smallfsm/pkg/config"
	"github.com/junbin-yang/go-smallfsm/pkg/logger"
)

// settings 命令行全局配置，来自配置文件或 SMALLFSM_ 前缀的环境变量
type settings struct {
	Log logger.Config `yaml:"log" json:"log" ini:"log" envPrefix:"SMALLFSM_"`
}

// commonFlags 各子命令共享的参数
type commonFlags struct {
	configFile string
	envFile    string
	logLevel   string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configFile, "config", "", "Settings file (yaml, json or ini)")
	fs.StringVar(&c.envFile, "env-file", "", "Dotenv file loaded before reading the environment")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level, overrides SMALLFSM_LOG_LEVEL")
}

func (c *commonFlags) loadSettings() (*settings, error) {
	s := &settings{}

	var opts []config.Option
	if c.envFile != "" {
		opts = append(opts, config.WithDotEnv(c.envFile))
	}
	cm := config.NewManager(s, opts...)

	var err error
	if c.configFile != "" {
		err = cm.LoadConfig(c.configFile)
	} else {
		err = cm.LoadEnv()
	}
	if err != nil {
		return nil, err
	}

	if c.logLevel != "" {
		s.Log.Level = c.logLevel
	}
	if s.Log.Level == "" {
		s.Log.Level = "warn"
	}
	return s, nil
}

// newLogger 按配置创建日志器，返回的 cleanup 负责同步和关闭文件
func (c *commonFlags) newLogger(stderr io.Writer) (*logger.ZapLogger, func(), error) {
	s, err := c.loadSettings()
	if err != nil {
		return nil, nil, err
	}

	l, closer, err := logger.NewFromConfig(s.Log, stderr, logger.AddCaller())
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = l.Sync()
		if closer != nil {
			_ = closer.Close()
		}
	}
	return l.Named("smallfsm"), cleanup, nil
}
