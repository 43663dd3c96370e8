// Package definition 以声明式文件描述状态机，并构建 statemachine.Machine
package definition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/junbin-yang/go-smallfsm/pkg/config"
	"github.com/junbin-yang/go-smallfsm/pkg/statemachine"
)

var (
	// ErrUnknownAction 转换引用了未提供的动作
	ErrUnknownAction = errors.New("unknown action")

	// ErrUnsupportedFormat 不支持的定义文件格式
	ErrUnsupportedFormat = errors.New("unsupported definition format")

	// ErrInvalidDefinition 定义校验失败
	ErrInvalidDefinition = errors.New("invalid definition")
)

// EnvPrefix 定义文件可被覆盖的环境变量前缀，如 SMALLFSM_INITIAL
const EnvPrefix = "SMALLFSM_"

// Definition 状态机定义
type Definition struct {
	Name         string       `yaml:"name" json:"name"`
	Initial      string       `yaml:"initial" json:"initial" env:"INITIAL"`
	HistoryLimit int          `yaml:"history_limit,omitempty" json:"history_limit,omitempty" env:"HISTORY_LIMIT"`
	HistoryPrune int          `yaml:"history_prune,omitempty" json:"history_prune,omitempty" env:"HISTORY_PRUNE"`
	Transitions  []Transition `yaml:"transitions" json:"transitions"`
}

// Transition 一条转换规则
type Transition struct {
	Path         string   `yaml:"path" json:"path"`
	Action       string   `yaml:"action,omitempty" json:"action,omitempty"`
	Events       []string `yaml:"events,omitempty" json:"events,omitempty"`
	Overwritable bool     `yaml:"overwritable,omitempty" json:"overwritable,omitempty"`
}

// Parse 解析定义内容，format 为 yaml/yml/json
func Parse(data []byte, format string) (*Definition, error) {
	s := config.SerializerFor(strings.ToLower(format))
	if s == nil || s.GetName() == "ini" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	var def Definition
	if err := s.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse %s definition: %w", s.GetName(), err)
	}
	return &def, nil
}

// LoadFile 从文件加载定义，格式按后缀识别，随后应用 SMALLFSM_ 前缀的环境变量
func LoadFile(path string, opts ...config.Option) (*Definition, error) {
	def := &Definition{}
	options := append([]config.Option{
		config.WithEnvPrefix(EnvPrefix),
		config.WithConfigFormats(&config.YAMLSerializer{}, &config.JSONSerializer{}),
	}, opts...)

	cm := config.NewManager(def, options...)
	if err := cm.LoadConfig(path); err != nil {
		return nil, err
	}
	return def, nil
}

// Validate 检查初始状态与所有转换描述，返回全部问题
func (d *Definition) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Initial) == "" {
		errs = append(errs, statemachine.ErrMissingInitialState)
	}
	if len(d.Transitions) == 0 {
		errs = append(errs, errors.New("no transitions"))
	}
	for i, t := range d.Transitions {
		if _, err := statemachine.ParseDescriptor(t.Path); err != nil {
			errs = append(errs, fmt.Errorf("transition %d: %w", i, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w %q: %w", ErrInvalidDefinition, d.Name, errors.Join(errs...))
}
