package sim

import (
	"pipeops-sim/internal/telemetry"
)

// DefaultHistoryCapacity is the trend window length when the config does not
// override it.
const DefaultHistoryCapacity = 30

// History is a fixed-capacity FIFO window of reference-node samples. It is
// not safe for concurrent use; the simulator serializes access.
type History struct {
	entries []telemetry.HistoryEntry
	head    int
	count   int
}

// NewHistory creates a ring buffer with the given capacity, falling back to
// DefaultHistoryCapacity when capacity is not positive.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{entries: make([]telemetry.HistoryEntry, capacity)}
}

// Append records an entry, evicting the oldest when the window is full.
func (h *History) Append(e telemetry.HistoryEntry) {
	if h.count < len(h.entries) {
		h.entries[(h.head+h.count)%len(h.entries)] = e
		h.count++
		return
	}
	h.entries[h.head] = e
	h.head = (h.head + 1) % len(h.entries)
}

// Entries returns the window in chronological order as a copy.
func (h *History) Entries() []telemetry.HistoryEntry {
	out := make([]telemetry.HistoryEntry, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.entries[(h.head+i)%len(h.entries)]
	}
	return out
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	return h.count
}

// Cap returns the window capacity.
func (h *History) Cap() int {
	return len(h.entries)
}
