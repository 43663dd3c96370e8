package statemachine

const (
	// DefaultHistoryLimit 历史记录上限
	DefaultHistoryLimit = 64
	// DefaultHistoryPrune 超限时一次丢弃的最旧记录数
	DefaultHistoryPrune = 8
)

// history 有界的已访问状态序列
type history struct {
	entries []State
	limit   int
	batch   int
}

func newHistory(limit, batch int) *history {
	return &history{
		entries: make([]State, 0, limit+1),
		limit:   limit,
		batch:   batch,
	}
}

// push 追加状态，超过上限时丢弃最旧的 batch 条
func (h *history) push(s State) {
	h.entries = append(h.entries, s)
	if len(h.entries) <= h.limit {
		return
	}
	n := copy(h.entries, h.entries[h.batch:])
	for i := n; i < len(h.entries); i++ {
		h.entries[i] = ""
	}
	h.entries = h.entries[:n]
}

func (h *history) last() State {
	if len(h.entries) == 0 {
		return ""
	}
	return h.entries[len(h.entries)-1]
}

func (h *history) len() int {
	return len(h.entries)
}

func (h *history) snapshot() []State {
	return append([]State{}, h.entries...)
}
