package app

import "sync"

const logRingSize = 500

var levelRank = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

// levelEnabled reports whether a message at level passes the threshold.
// Unknown levels always pass.
func levelEnabled(threshold, level string) bool {
	floor, ok := levelRank[threshold]
	if !ok {
		return true
	}
	r, ok := levelRank[level]
	if !ok {
		return true
	}
	return r >= floor
}

type logEntry struct {
	TS        string `json:"ts"`
	Level     string `json:"level"`
	Component string `json:"component,omitempty"`
	Message   string `json:"message"`
}

// logRing keeps the most recent log entries in arrival order.
type logRing struct {
	mu      sync.Mutex
	entries []logEntry
	next    int
	full    bool
}

func newLogRing(size int) *logRing {
	return &logRing{entries: make([]logEntry, size)}
}

func (r *logRing) add(e logEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = e
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

// snapshot returns a copy of the buffered entries, oldest first.
func (r *logRing) snapshot() []logEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		out := make([]logEntry, r.next)
		copy(out, r.entries[:r.next])
		return out
	}
	out := make([]logEntry, 0, len(r.entries))
	out = append(out, r.entries[r.next:]...)
	return append(out, r.entries[:r.next]...)
}
