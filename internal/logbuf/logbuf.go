// Package logbuf keeps the most recent log records in memory so the API
// can serve them without a log aggregation stack.
package logbuf

import (
	"log/slog"
	"sync"
	"time"
)

// Entry is a single captured log record.
type Entry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// Buffer is a fixed-size, thread-safe ring of log entries.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	filled  bool
}

// New creates a buffer holding up to size entries.
func New(size int) *Buffer {
	return &Buffer{entries: make([]Entry, size)}
}

// Write appends an entry, evicting the oldest once the buffer is full.
func (b *Buffer) Write(e Entry) {
	b.mu.Lock()
	b.entries[b.next] = e
	b.next++
	if b.next == len(b.entries) {
		b.next = 0
		b.filled = true
	}
	b.mu.Unlock()
}

// Query returns entries at or above minLevel recorded since the given
// time, oldest first. A zero since matches everything; limit <= 0 means
// no limit. When more than limit entries match, the newest are kept.
func (b *Buffer) Query(since time.Time, minLevel slog.Level, limit int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	oldest, n := 0, b.next
	if b.filled {
		oldest, n = b.next, len(b.entries)
	}

	var out []Entry
	for i := range n {
		e := b.entries[(oldest+i)%len(b.entries)]
		if !since.IsZero() && e.Time.Before(since) {
			continue
		}
		if levelOf(e.Level) < minLevel {
			continue
		}
		out = append(out, e)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func levelOf(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
