package statemachine

import "github.com/junbin-yang/go-smallfsm/pkg/logger"

// Option 状态机选项
type Option func(*Machine)

// WithLogger 设置日志器，默认不输出
func WithLogger(l logger.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithHistoryLimit 设置历史上限及每次丢弃的条数
// 规则路径最长为 limit-batch，要求至少为 2，否则保持默认值
func WithHistoryLimit(limit, batch int) Option {
	return func(m *Machine) {
		if batch < 1 || limit-batch < 2 {
			return
		}
		m.limit = limit
		m.batch = batch
	}
}
