package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrConfigNotFound 配置文件不存在或路径为空
	ErrConfigNotFound = errors.New("config file not found")
	// ErrConfigIsDir 配置路径指向目录
	ErrConfigIsDir = errors.New("config path is a directory")
)

// DefaultAppName 未设置 WithAppName 时使用的名称
const DefaultAppName = "smallfsm"

// defaultSearchPaths 默认配置查找顺序，文件名不带后缀
var defaultSearchPaths = []string{
	"./{{.AppName}}",
	"{{.ConfigDir}}/{{.AppName}}/{{.AppName}}",
	"{{.ExecDir}}/{{.AppName}}",
	"/etc/{{.AppName}}/{{.AppName}}",
}

// searchVars 路径模板可用的变量
type searchVars struct {
	AppName   string
	ExecDir   string
	ConfigDir string
}

func newSearchVars(appName string) searchVars {
	v := searchVars{AppName: appName}
	if exe, err := os.Executable(); err == nil {
		v.ExecDir = filepath.Dir(exe)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		v.ConfigDir = dir
	}
	return v
}

// expand 展开模板，依赖变量为空的模板返回 false
func (v searchVars) expand(tpl string) (string, bool) {
	pairs := []struct{ key, val string }{
		{"{{.AppName}}", v.AppName},
		{"{{.ExecDir}}", v.ExecDir},
		{"{{.ConfigDir}}", v.ConfigDir},
	}
	for _, p := range pairs {
		if !strings.Contains(tpl, p.key) {
			continue
		}
		if p.val == "" {
			return "", false
		}
		tpl = strings.ReplaceAll(tpl, p.key, p.val)
	}
	return tpl, true
}

// checkConfigFile 确认路径是可读取的普通文件
// 返回的错误包装 ErrConfigNotFound 或 ErrConfigIsDir
func checkConfigFile(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrConfigNotFound)
	}
	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	case err != nil:
		return fmt.Errorf("stat %s: %w", path, err)
	case fi.IsDir():
		return fmt.Errorf("%w: %s", ErrConfigIsDir, path)
	}
	return nil
}
