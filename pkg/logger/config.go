package logger

import (
	"io"
	"os"
	"time"
)

// Config 日志配置，可直接嵌入应用配置结构
type Config struct {
	Level      string `yaml:"level" json:"level" ini:"level" env:"LOG_LEVEL"`
	File       string `yaml:"file" json:"file" ini:"file" env:"LOG_FILE"`
	Daily      bool   `yaml:"daily" json:"daily" ini:"daily" env:"LOG_DAILY"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb" ini:"max_size_mb" env:"LOG_MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups" ini:"max_backups" env:"LOG_MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days" ini:"max_age_days" env:"LOG_MAX_AGE_DAYS"`
	Compress   bool   `yaml:"compress" json:"compress" ini:"compress" env:"LOG_COMPRESS"`
}

// NewFromConfig 按配置创建日志器
// File 为空时输出到 fallback（nil 则为 stderr）；Daily 为 true 时按天切割，否则按大小切割
// 返回的 io.Closer 用于关闭文件输出，标准输出时为 nil
func NewFromConfig(cfg Config, fallback io.Writer, opts ...Option) (*ZapLogger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	if cfg.File == "" {
		if fallback == nil {
			fallback = os.Stderr
		}
		return New(fallback, level, opts...), nil, nil
	}

	var out io.WriteCloser
	if cfg.Daily {
		maxAge := time.Duration(cfg.MaxAgeDays) * 24 * time.Hour
		if out, err = NewDailyRotateWriter(cfg.File, maxAge); err != nil {
			return nil, nil, err
		}
	} else {
		out = NewSizeRotateWriter(cfg.File, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays, cfg.Compress)
	}
	return New(out, level, opts...), out, nil
}
