package statemachine

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Arrow 分隔转换描述中的相邻状态，如 "a => b => c"
	Arrow = "=>"

	// Separator 拼接规则键的保留字符，状态名中不允许出现
	Separator = "|"
)

// ParseDescriptor 解析转换描述，去除每段两侧空白
func ParseDescriptor(descriptor string) ([]State, error) {
	parts := strings.Split(descriptor, Arrow)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %q needs at least two states", ErrInvalidDescriptor, descriptor)
	}

	path := make([]State, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if err := validateName(name); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidDescriptor, descriptor, err)
		}
		path = append(path, State(name))
	}
	return path, nil
}

func validateName(name string) error {
	if name == "" {
		return errors.New("empty state name")
	}
	if strings.Contains(name, Separator) {
		return fmt.Errorf("state %q contains reserved separator %q", name, Separator)
	}
	return nil
}

// joinKey 生成规则键
func joinKey(path []State) string {
	var b strings.Builder
	for i, s := range path {
		if i > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(string(s))
	}
	return b.String()
}

// splitEvents 拆分空白分隔的事件名列表，丢弃空名
func splitEvents(lists []string) []string {
	var names []string
	for _, list := range lists {
		names = append(names, strings.Fields(list)...)
	}
	return names
}

func formatPath(path []State) string {
	names := make([]string, len(path))
	for i, s := range path {
		names[i] = string(s)
	}
	return strings.Join(names, " "+Arrow+" ")
}
