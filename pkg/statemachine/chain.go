package statemachine

import "context"

// Chain 链式调用包装，第一个错误之后的调用均被跳过
//
//	err := m.Chain(ctx).
//		OnTransit("loading => ready", onReady).
//		On("ready", notify).
//		Transit("ready", nil).
//		Err()
type Chain struct {
	m   *Machine
	ctx context.Context
	err error
}

// Chain 返回绑定 ctx 的链式包装
func (m *Machine) Chain(ctx context.Context) *Chain {
	return &Chain{m: m, ctx: ctx}
}

// OnBegin 设置启动回调
func (c *Chain) OnBegin(fn BeginFunc) *Chain {
	if c.err == nil {
		c.m.OnBegin(fn)
	}
	return c
}

// Begin 启动状态机
func (c *Chain) Begin() *Chain {
	if c.err == nil {
		c.m.Begin(c.ctx)
	}
	return c
}

// OnTransit 注册转换规则，失败时记录错误
func (c *Chain) OnTransit(descriptor string, action ActionFunc, opts ...RuleOption) *Chain {
	if c.err == nil {
		c.err = c.m.OnTransit(descriptor, action, opts...)
	}
	return c
}

// AllowTransit 同 OnTransit
func (c *Chain) AllowTransit(descriptor string, action ActionFunc, opts ...RuleOption) *Chain {
	return c.OnTransit(descriptor, action, opts...)
}

// On 追加事件监听器
func (c *Chain) On(event string, l ListenerFunc) *Chain {
	if c.err == nil {
		c.m.On(event, l)
	}
	return c
}

// Transit 请求转换，失败时记录错误
func (c *Chain) Transit(to State, p Payload) *Chain {
	if c.err == nil {
		c.err = c.m.Transit(c.ctx, to, p)
	}
	return c
}

// Err 返回第一个错误
func (c *Chain) Err() error {
	return c.err
}

// Machine 返回底层状态机
func (c *Chain) Machine() *Machine {
	return c.m
}
