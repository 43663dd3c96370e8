package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// Synchronized 以互斥锁串行化对 Machine 的访问
//
// 回调在锁内执行，不能再调用同一个 Synchronized 的方法。
type Synchronized struct {
	mu sync.Mutex
	m  *Machine
}

var _ StateMachine = (*Synchronized)(nil)

// NewSynchronized 包装状态机
func NewSynchronized(m *Machine) *Synchronized {
	return &Synchronized{m: m}
}

// Do 在锁内执行 fn
func (s *Synchronized) Do(fn func(m *Machine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.m)
}

// OnBegin 设置启动回调
func (s *Synchronized) OnBegin(fn BeginFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.OnBegin(fn)
}

// Begin 启动状态机，重复调用无效果
func (s *Synchronized) Begin(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Begin(ctx)
}

// OnTransit 注册转换规则
func (s *Synchronized) OnTransit(descriptor string, action ActionFunc, opts ...RuleOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.OnTransit(descriptor, action, opts...)
}

// AllowTransit 同 OnTransit
func (s *Synchronized) AllowTransit(descriptor string, action ActionFunc, opts ...RuleOption) error {
	return s.OnTransit(descriptor, action, opts...)
}

// On 为自定义事件追加监听器
func (s *Synchronized) On(event string, l ListenerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.On(event, l)
}

// Transit 请求转换，回调在锁内执行
func (s *Synchronized) Transit(ctx context.Context, to State, p Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Transit(ctx, to, p)
}

// State 返回当前状态
func (s *Synchronized) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.State()
}

// Can 检查转换是否会匹配
func (s *Synchronized) Can(to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Can(to)
}

// History 返回历史副本
func (s *Synchronized) History() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.History()
}

// Snapshot 创建快照
func (s *Synchronized) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Snapshot()
}

// Concurrent 按名称管理多个状态机
type Concurrent struct {
	mu       sync.RWMutex
	machines map[string]*Synchronized
}

// NewConcurrent 创建并发状态机管理器
func NewConcurrent() *Concurrent {
	return &Concurrent{
		machines: make(map[string]*Synchronized),
	}
}

// Add 添加状态机，同名时替换
func (c *Concurrent) Add(name string, m *Machine) *Synchronized {
	s := NewSynchronized(m)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.machines[name] = s
	return s
}

// Remove 移除状态机
func (c *Concurrent) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.machines, name)
}

// Get 获取状态机
func (c *Concurrent) Get(name string) (*Synchronized, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, exists := c.machines[name]
	return s, exists
}

// Transit 转换指定状态机
func (c *Concurrent) Transit(ctx context.Context, name string, to State, p Payload) error {
	s, exists := c.Get(name)
	if !exists {
		return fmt.Errorf("%w: %q", ErrMachineNotFound, name)
	}
	return s.Transit(ctx, to, p)
}

// TransitAll 并行地把所有状态机转换到同一目标状态
// 每个状态机各自拷贝一份 payload
func (c *Concurrent) TransitAll(ctx context.Context, to State, p Payload) map[string]error {
	machines := c.snapshotMachines()

	results := make(map[string]error, len(machines))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, s := range machines {
		wg.Add(1)
		go func(n string, s *Synchronized) {
			defer wg.Done()
			err := s.Transit(ctx, to, clonePayload(p))
			mu.Lock()
			results[n] = err
			mu.Unlock()
		}(name, s)
	}

	wg.Wait()
	return results
}

// States 获取所有状态机的当前状态
func (c *Concurrent) States() map[string]State {
	machines := c.snapshotMachines()

	states := make(map[string]State, len(machines))
	for name, s := range machines {
		states[name] = s.State()
	}
	return states
}

// Count 返回状态机数量
func (c *Concurrent) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.machines)
}

// snapshotMachines 复制名称表，调用方随后在不持有 c.mu 的情况下访问各状态机
// 状态机回调中调用 Add/Remove 不会因此死锁
func (c *Concurrent) snapshotMachines() map[string]*Synchronized {
	c.mu.RLock()
	defer c.mu.RUnlock()
	machines := make(map[string]*Synchronized, len(c.machines))
	for name, s := range c.machines {
		machines[name] = s
	}
	return machines
}

func clonePayload(p Payload) Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
