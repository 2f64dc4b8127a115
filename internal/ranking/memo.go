package ranking

import (
	"sync"

	"saodo/internal/models"
)

// Version identifies one combination of logs and classes snapshots
type Version struct {
	Logs    uint64
	Classes uint64
}

// Memo caches ComputeRankings results for the current snapshot version.
// A different version drops every cached period. It is safe for concurrent use.
type Memo struct {
	mu      sync.Mutex
	version Version
	entries map[Period][]Item
}

// NewMemo creates an empty cache
func NewMemo() *Memo {
	return &Memo{entries: make(map[Period][]Item)}
}

// Rankings returns the cached ranking for (version, period), computing it on a miss.
// Callers receive their own copy.
func (m *Memo) Rankings(version Version, logs []models.DailyLog, classes []models.Class, period Period) []Item {
	m.mu.Lock()
	if m.version != version {
		m.version = version
		m.entries = make(map[Period][]Item)
	}
	cached, ok := m.entries[period]
	m.mu.Unlock()

	if !ok {
		cached = ComputeRankings(logs, classes, period)
		m.mu.Lock()
		if m.version == version {
			m.entries[period] = cached
		}
		m.mu.Unlock()
	}

	out := make([]Item, len(cached))
	copy(out, cached)
	return out
}

// Len returns the number of cached periods
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
