package statemachine

import "fmt"

// Rule 定义一条转换规则
type Rule struct {
	Path         []State    // 状态序列，至少两个
	Key          string     // 规则键，由 Path 以 Separator 拼接
	Action       ActionFunc // 匹配时执行的动作
	Events       []string   // 匹配后按序触发的自定义事件
	Overwritable bool       // 是否允许后续注册覆盖
	Generated    bool       // 多步路径拆分出的两步占位规则
}

func newRule(path []State, action ActionFunc, events []string, overwritable, generated bool) *Rule {
	p := make([]State, len(path))
	copy(p, path)
	return &Rule{
		Path:         p,
		Key:          joinKey(p),
		Action:       action,
		Events:       events,
		Overwritable: overwritable,
		Generated:    generated,
	}
}

// String 返回 "a => b => c" 形式
func (r *Rule) String() string {
	return formatPath(r.Path)
}

// matchesTail 判断 history 追加 to 之后的尾部是否恰好等于 Path
// 按状态逐个比较，"ar" 不会匹配到 "bar" 的后缀
func (r *Rule) matchesTail(history []State, to State) bool {
	n := len(r.Path)
	if r.Path[n-1] != to || len(history) < n-1 {
		return false
	}
	tail := history[len(history)-(n-1):]
	for i, s := range r.Path[:n-1] {
		if tail[i] != s {
			return false
		}
	}
	return true
}

// RuleInfo 规则的只读描述
type RuleInfo struct {
	Path         []State  `yaml:"path" json:"path"`
	Key          string   `yaml:"key" json:"key"`
	Events       []string `yaml:"events,omitempty" json:"events,omitempty"`
	HasAction    bool     `yaml:"has_action" json:"has_action"`
	Overwritable bool     `yaml:"overwritable" json:"overwritable"`
	Generated    bool     `yaml:"generated" json:"generated"`
}

func (r *Rule) info() RuleInfo {
	path := make([]State, len(r.Path))
	copy(path, r.Path)
	var events []string
	if len(r.Events) > 0 {
		events = append(events, r.Events...)
	}
	return RuleInfo{
		Path:         path,
		Key:          r.Key,
		Events:       events,
		HasAction:    r.Action != nil,
		Overwritable: r.Overwritable,
		Generated:    r.Generated,
	}
}

type ruleConfig struct {
	events       []string
	overwritable bool
}

// RuleOption 注册规则时的可选项
type RuleOption func(*ruleConfig)

// WithEvents 规则匹配后触发的自定义事件，每个参数可以是空白分隔的多个事件名
func WithEvents(names ...string) RuleOption {
	return func(c *ruleConfig) {
		c.events = append(c.events, splitEvents(names)...)
	}
}

// Overwritable 规则可被后续同键注册覆盖，且本次注册会覆盖已存在的同键规则
func Overwritable() RuleOption {
	return func(c *ruleConfig) {
		c.overwritable = true
	}
}

// registry 按注册顺序保存规则，覆盖时保留原位置
type registry struct {
	order []string
	rules map[string]*Rule
}

func newRegistry() *registry {
	return &registry{rules: make(map[string]*Rule)}
}

// admit 判断规则能否写入
// 已有规则可覆盖时总是接受；自动生成的规则遇到不可覆盖的显式规则时静默跳过
func (r *registry) admit(rule *Rule) (bool, error) {
	existing, ok := r.rules[rule.Key]
	if !ok {
		return true, nil
	}
	if rule.Generated {
		return existing.Generated || existing.Overwritable, nil
	}
	if existing.Overwritable || rule.Overwritable {
		return true, nil
	}
	return false, fmt.Errorf("%w: %s", ErrDuplicateTransition, rule)
}

func (r *registry) put(rule *Rule) {
	if _, ok := r.rules[rule.Key]; !ok {
		r.order = append(r.order, rule.Key)
	}
	r.rules[rule.Key] = rule
}

func (r *registry) get(key string) (*Rule, bool) {
	rule, ok := r.rules[key]
	return rule, ok
}

func (r *registry) len() int {
	return len(r.order)
}

// match 返回尾部匹配的全部规则，按注册顺序
func (r *registry) match(history []State, to State) []*Rule {
	var matched []*Rule
	for _, key := range r.order {
		if rule := r.rules[key]; rule.matchesTail(history, to) {
			matched = append(matched, rule)
		}
	}
	return matched
}

func (r *registry) infos() []RuleInfo {
	infos := make([]RuleInfo, 0, len(r.order))
	for _, key := range r.order {
		infos = append(infos, r.rules[key].info())
	}
	return infos
}
