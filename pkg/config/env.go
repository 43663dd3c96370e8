package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// applyEnvOverrides 用环境变量覆盖配置，字段通过 `env:"NAME"` 标签声明
// 未设置的环境变量不会改动已有值
func applyEnvOverrides(v interface{}, prefix string) error {
	return env.ParseWithOptions(v, env.Options{Prefix: prefix})
}

// loadDotEnv 读取 .env 文件，未指定路径时读取当前目录的 .env 且忽略不存在的情况
func loadDotEnv(paths []string) error {
	if len(paths) == 0 {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("load dotenv failed: %w", err)
	}
	return nil
}
