// Package fills keeps a capped log of the agent's own executions per instrument.
package fills

import "github.com/coachpo/quoter/internal/schema"

const (
	// DefaultCapacity is the number of most recent fills retained per instrument.
	DefaultCapacity = 20
	// DefaultRecencyWindow is the timestamp span within which fills count toward bias.
	DefaultRecencyWindow int64 = 1000
)

// Record is one own execution.
type Record struct {
	Timestamp int64            `json:"timestamp"`
	Side      schema.TradeSide `json:"side"`
	Price     int64            `json:"price"`
	Quantity  int64            `json:"qty"`
}

// Memory is a per-instrument, capacity-bounded fill log.
type Memory struct {
	capacity int
	window   int64
	logs     map[string][]Record
}

// NewMemory creates an empty fill memory. Non-positive arguments fall back to defaults.
func NewMemory(capacity int, window int64) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if window <= 0 {
		window = DefaultRecencyWindow
	}
	return &Memory{
		capacity: capacity,
		window:   window,
		logs:     make(map[string][]Record),
	}
}

// Restore rebuilds a memory from persisted logs, keeping only the newest capacity entries.
func Restore(logs map[string][]Record, capacity int, window int64) *Memory {
	m := NewMemory(capacity, window)
	for symbol, records := range logs {
		m.logs[symbol] = keepNewest(append([]Record(nil), records...), m.capacity)
	}
	return m
}

// Add appends fills for symbol and trims the log to capacity.
func (m *Memory) Add(symbol string, records ...Record) {
	if len(records) == 0 {
		return
	}
	m.logs[symbol] = keepNewest(append(m.logs[symbol], records...), m.capacity)
}

// Recent returns fills for symbol no older than the recency window relative to now.
func (m *Memory) Recent(symbol string, now int64) []Record {
	var out []Record
	for _, r := range m.logs[symbol] {
		if now-r.Timestamp <= m.window {
			out = append(out, r)
		}
	}
	return out
}

// Bias is the count of recent buy fills minus recent sell fills.
func (m *Memory) Bias(symbol string, now int64) int64 {
	var bias int64
	for _, r := range m.Recent(symbol, now) {
		switch r.Side {
		case schema.TradeSideBuy:
			bias++
		case schema.TradeSideSell:
			bias--
		}
	}
	return bias
}

// Log returns the retained fills for symbol. Callers must not mutate it.
func (m *Memory) Log(symbol string) []Record {
	return m.logs[symbol]
}

// Snapshot deep-copies all logs for persistence.
func (m *Memory) Snapshot() map[string][]Record {
	out := make(map[string][]Record, len(m.logs))
	for symbol, records := range m.logs {
		out[symbol] = append([]Record(nil), records...)
	}
	return out
}

func keepNewest(records []Record, limit int) []Record {
	if len(records) <= limit {
		return records
	}
	return append([]Record(nil), records[len(records)-limit:]...)
}
