package statemachine

// Snapshot 状态机的只读快照
type Snapshot struct {
	Initial State      `yaml:"initial" json:"initial"`
	State   State      `yaml:"state" json:"state"`
	Started bool       `yaml:"started" json:"started"`
	History []State    `yaml:"history" json:"history"`
	States  []State    `yaml:"states" json:"states"`
	Rules   []RuleInfo `yaml:"rules" json:"rules"`
	Events  []string   `yaml:"events,omitempty" json:"events,omitempty"`
}

// Snapshot 创建快照
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Initial: m.initial,
		State:   m.State(),
		Started: m.started,
		History: m.History(),
		States:  m.States(),
		Rules:   m.Rules(),
		Events:  m.Events(),
	}
}
