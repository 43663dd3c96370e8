package statemachine

import "context"

// State 表示状态机中的状态
type State string

// Payload 转换时传递给动作和监听器的事件数据
type Payload map[string]interface{}

// ActionFunc 规则匹配时执行的动作
type ActionFunc func(ctx context.Context, p Payload) error

// ListenerFunc 自定义事件的监听器
type ListenerFunc func(ctx context.Context, p Payload) error

// BeginFunc 在状态机启动时执行一次
type BeginFunc func(ctx context.Context)

// StateMachine 定义状态机的核心接口
type StateMachine interface {
	// State 返回最近一次进入的状态
	State() State

	// Transit 请求转换到目标状态
	Transit(ctx context.Context, to State, p Payload) error

	// Can 检查当前历史下能否转换到目标状态
	Can(to State) bool

	// History 返回已访问状态的副本
	History() []State
}
