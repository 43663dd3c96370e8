package statemachine

import "fmt"

var (
	// ErrMissingInitialState 创建状态机时未指定初始状态
	ErrMissingInitialState = fmt.Errorf("missing initial state")

	// ErrInvalidDescriptor 转换描述非法（状态不足两个、空状态名或包含保留分隔符）
	ErrInvalidDescriptor = fmt.Errorf("invalid transition descriptor")

	// ErrDuplicateTransition 不可覆盖的转换规则已存在
	ErrDuplicateTransition = fmt.Errorf("duplicate transition")

	// ErrUnknownState 目标状态从未在任何规则中声明
	ErrUnknownState = fmt.Errorf("unknown state")

	// ErrIllegalTransition 目标状态已知，但没有规则匹配当前历史
	ErrIllegalTransition = fmt.Errorf("illegal transition")

	// ErrCallbackFailed 动作或监听器返回错误
	ErrCallbackFailed = fmt.Errorf("callback failed")

	// ErrMachineNotFound 并发管理器中不存在该状态机
	ErrMachineNotFound = fmt.Errorf("machine not found")

	// ErrAsyncStopped 异步状态机已停止
	ErrAsyncStopped = fmt.Errorf("async machine stopped")
)
