package definition

import (
	"fmt"

	"github.com/junbin-yang/go-smallfsm/pkg/statemachine"
)

type buildConfig struct {
	actions map[string]statemachine.ActionFunc
	hook    func(event string) statemachine.ListenerFunc
	machine []statemachine.Option
}

// BuildOption 构建选项
type BuildOption func(*buildConfig)

// WithActions 按名称提供动作实现
func WithActions(actions map[string]statemachine.ActionFunc) BuildOption {
	return func(c *buildConfig) {
		for name, fn := range actions {
			c.actions[name] = fn
		}
	}
}

// WithEventHook 为定义中出现的每个事件注册一个监听器
func WithEventHook(hook func(event string) statemachine.ListenerFunc) BuildOption {
	return func(c *buildConfig) {
		c.hook = hook
	}
}

// WithMachineOptions 透传给 statemachine.New 的选项
func WithMachineOptions(opts ...statemachine.Option) BuildOption {
	return func(c *buildConfig) {
		c.machine = append(c.machine, opts...)
	}
}

// Build 按定义创建状态机并注册全部转换，不会启动状态机
func Build(d *Definition, opts ...BuildOption) (*statemachine.Machine, error) {
	cfg := buildConfig{actions: make(map[string]statemachine.ActionFunc)}
	for _, opt := range opts {
		opt(&cfg)
	}

	machineOpts := cfg.machine
	if d.HistoryLimit > 0 && d.HistoryPrune > 0 {
		machineOpts = append([]statemachine.Option{statemachine.WithHistoryLimit(d.HistoryLimit, d.HistoryPrune)}, machineOpts...)
	}

	m, err := statemachine.New(statemachine.State(d.Initial), machineOpts...)
	if err != nil {
		return nil, fmt.Errorf("definition %q: %w", d.Name, err)
	}

	for i, t := range d.Transitions {
		var action statemachine.ActionFunc
		if t.Action != "" {
			fn, ok := cfg.actions[t.Action]
			if !ok {
				return nil, fmt.Errorf("definition %q transition %d: %w: %q", d.Name, i, ErrUnknownAction, t.Action)
			}
			action = fn
		}

		ruleOpts := []statemachine.RuleOption{statemachine.WithEvents(t.Events...)}
		if t.Overwritable {
			ruleOpts = append(ruleOpts, statemachine.Overwritable())
		}
		if err := m.OnTransit(t.Path, action, ruleOpts...); err != nil {
			return nil, fmt.Errorf("definition %q transition %d: %w", d.Name, i, err)
		}
	}

	if cfg.hook != nil {
		seen := make(map[string]bool)
		for _, r := range m.Rules() {
			for _, event := range r.Events {
				if seen[event] {
					continue
				}
				seen[event] = true
				m.On(event, cfg.hook(event))
			}
		}
	}
	return m, nil
}
