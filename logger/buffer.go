package logger

import (
	"fmt"
	"sync"
	"time"
)

// Entry is a single buffered log line.
type Entry struct {
	At  time.Time
	Log string
}

// Buffer retains the most recent log entries so they can be shown on
// the status page.
type Buffer struct {
	mu      sync.Mutex
	max     int
	entries []Entry
}

func NewBuffer(max int) *Buffer {
	return &Buffer{max: max}
}

func (b *Buffer) Log(s string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = append(b.entries, Entry{
		At:  time.Now(),
		Log: fmt.Sprintf(s, args...),
	})
	if b.max > 0 && len(b.entries) > b.max {
		b.entries = b.entries[len(b.entries)-b.max:]
	}
}

// Entries returns a copy of the buffered entries, oldest first.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Logger returns a labeled Logger that writes to both the standard
// log and this buffer. Buffered entries carry the label so the status
// page shows which component wrote them.
func (b *Buffer) Logger(label string) Logger {
	return teeLogger{buf: b, label: label, inner: New(label)}
}

type teeLogger struct {
	buf   *Buffer
	label string
	inner Logger
}

func (tl teeLogger) Printf(s string, args ...any) {
	tl.inner.Printf(s, args...)
	tl.buf.Log("[%s]\t"+s, append([]any{tl.label}, args...)...)
}
