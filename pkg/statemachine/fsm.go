package statemachine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/junbin-yang/go-smallfsm/pkg/logger"
)

// Machine 基于历史后缀匹配的有限状态机
//
// 规则描述一条状态序列，请求转换时将目标状态追加到历史末尾，
// 所有以该序列结尾的规则都会按注册顺序触发。
// Machine 不加锁，多协程访问请使用 Synchronized。
type Machine struct {
	initial State
	states  map[State]struct{}
	rules   *registry
	history *history
	events  map[string][]ListenerFunc
	onBegin BeginFunc
	started bool
	limit   int
	batch   int
	logger  logger.Logger
}

var _ StateMachine = (*Machine)(nil)

// New 创建状态机，initial 为必填的初始状态
func New(initial State, opts ...Option) (*Machine, error) {
	name := strings.TrimSpace(string(initial))
	if name == "" {
		return nil, ErrMissingInitialState
	}
	if err := validateName(name); err != nil {
		return nil, fmt.Errorf("%w: initial state: %v", ErrInvalidDescriptor, err)
	}

	m := &Machine{
		initial: State(name),
		states:  map[State]struct{}{State(name): {}},
		rules:   newRegistry(),
		events:  make(map[string][]ListenerFunc),
		limit:   DefaultHistoryLimit,
		batch:   DefaultHistoryPrune,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.history = newHistory(m.limit, m.batch)
	return m, nil
}

// Initial 返回初始状态
func (m *Machine) Initial() State {
	return m.initial
}

// State 返回最近进入的状态，启动前为空
func (m *Machine) State() State {
	return m.history.last()
}

// Started 是否已启动
func (m *Machine) Started() bool {
	return m.started
}

// MaxPathLength 单条规则允许的最多状态数
func (m *Machine) MaxPathLength() int {
	return m.limit - m.batch
}

// OnBegin 设置启动回调，多次调用以最后一次为准
func (m *Machine) OnBegin(fn BeginFunc) *Machine {
	m.onBegin = fn
	return m
}

// Begin 以初始状态写入历史并执行启动回调，重复调用无效果
func (m *Machine) Begin(ctx context.Context) *Machine {
	if m.started {
		return m
	}
	m.started = true
	m.history.push(m.initial)
	m.logger.Debug("machine begun", logger.String("state", string(m.initial)))
	if m.onBegin != nil {
		m.onBegin(ctx)
	}
	return m
}

// OnTransit 注册转换规则，descriptor 形如 "a => b => c"
//
// 三个及以上状态的路径会同时注册每对相邻状态的两步规则，
// 这些自动规则没有动作和事件，可被覆盖，且不会替换不可覆盖的显式规则。
func (m *Machine) OnTransit(descriptor string, action ActionFunc, opts ...RuleOption) error {
	path, err := ParseDescriptor(descriptor)
	if err != nil {
		return err
	}
	if limit := m.MaxPathLength(); len(path) > limit {
		return fmt.Errorf("%w: %q has %d states, at most %d allowed", ErrInvalidDescriptor, descriptor, len(path), limit)
	}

	var cfg ruleConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	rule := newRule(path, action, cfg.events, cfg.overwritable, false)
	if _, err := m.rules.admit(rule); err != nil {
		return err
	}

	if len(path) > 2 {
		for i := 0; i+1 < len(path); i++ {
			pair := newRule(path[i:i+2], nil, nil, true, true)
			if ok, _ := m.rules.admit(pair); ok {
				m.rules.put(pair)
			}
		}
	}
	m.rules.put(rule)

	for _, s := range path {
		m.states[s] = struct{}{}
	}

	m.logger.Debug("transition registered",
		logger.Stringer("rule", rule),
		logger.Strings("events", rule.Events),
		logger.Bool("overwritable", rule.Overwritable),
		logger.Int("rules", m.rules.len()),
	)
	return nil
}

// AllowTransit 同 OnTransit
func (m *Machine) AllowTransit(descriptor string, action ActionFunc, opts ...RuleOption) error {
	return m.OnTransit(descriptor, action, opts...)
}

// On 为自定义事件追加监听器，同一监听器可重复注册
func (m *Machine) On(event string, l ListenerFunc) *Machine {
	if l == nil {
		return m
	}
	m.events[event] = append(m.events[event], l)
	return m
}

// Transit 请求转换到目标状态
//
// 匹配的规则依次执行动作和事件监听器，全部成功后才把 to 写入历史，
// 因此回调看到的是转换前的历史。失败时历史不变。
func (m *Machine) Transit(ctx context.Context, to State, p Payload) error {
	m.Begin(ctx)
	if p == nil {
		p = Payload{}
	}

	from := m.history.last()
	matched := m.rules.match(m.history.entries, to)
	if len(matched) == 0 {
		if _, known := m.states[to]; !known {
			return fmt.Errorf("%w: %q", ErrUnknownState, to)
		}
		return fmt.Errorf("%w: %q -> %q", ErrIllegalTransition, from, to)
	}

	for _, rule := range matched {
		if err := m.fire(ctx, rule, p); err != nil {
			return err
		}
	}

	m.history.push(to)
	m.logger.Debug("transited",
		logger.String("from", string(from)),
		logger.String("to", string(to)),
		logger.Int("matched", len(matched)),
	)
	return nil
}

func (m *Machine) fire(ctx context.Context, rule *Rule, p Payload) error {
	if rule.Action != nil {
		if err := rule.Action(ctx, p); err != nil {
			return fmt.Errorf("%w: action of %s: %w", ErrCallbackFailed, rule, err)
		}
	}
	for _, name := range rule.Events {
		if err := m.emit(ctx, name, p); err != nil {
			return err
		}
	}
	return nil
}

// emit 按订阅顺序调用监听器，回调中新增的监听器从下次触发开始生效
func (m *Machine) emit(ctx context.Context, event string, p Payload) error {
	listeners := m.events[event]
	for _, l := range listeners {
		if err := l(ctx, p); err != nil {
			return fmt.Errorf("%w: listener of %q: %w", ErrCallbackFailed, event, err)
		}
	}
	return nil
}

// Can 检查 Transit(to) 此刻是否会匹配到规则，不产生副作用
func (m *Machine) Can(to State) bool {
	entries := m.history.entries
	if !m.started {
		entries = []State{m.initial}
	}
	return len(m.rules.match(entries, to)) > 0
}

// HasTransition 是否已注册与 descriptor 完全相同的规则
func (m *Machine) HasTransition(descriptor string) bool {
	path, err := ParseDescriptor(descriptor)
	if err != nil {
		return false
	}
	_, ok := m.rules.get(joinKey(path))
	return ok
}

// History 返回历史副本，最旧在前
func (m *Machine) History() []State {
	return m.history.snapshot()
}

// States 返回已知状态，按名称排序
func (m *Machine) States() []State {
	states := make([]State, 0, len(m.states))
	for s := range m.states {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	return states
}

// Rules 按注册顺序返回规则描述
func (m *Machine) Rules() []RuleInfo {
	return m.rules.infos()
}

// Events 返回有监听器的事件名，按名称排序
func (m *Machine) Events() []string {
	names := make([]string, 0, len(m.events))
	for name := range m.events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
