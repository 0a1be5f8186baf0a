// Package outbuf provides the bounded output buffer shared between the
// execution engine's stream readers (writers) and the TUI viewport (reader).
// Appends are linearized by a single mutex and a shared sequence counter, so
// readers always observe whole lines in production order.
package outbuf

import "sync"

// Source tags where an output line came from.
type Source int

const (
	SourceStdout Source = iota
	SourceStderr
	SourceSystem // synthetic lines produced by pbdeck itself
)

// String returns the tag used when rendering a line's origin.
func (s Source) String() string {
	switch s {
	case SourceStdout:
		return "stdout"
	case SourceStderr:
		return "stderr"
	case SourceSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Line is one immutable line of run output.
type Line struct {
	Seq    uint64
	Source Source
	Text   string
}

// Buffer is a bounded FIFO ring of lines. When full, the oldest line is
// evicted before the newest is appended, bounding memory for noisy runs.
type Buffer struct {
	mu    sync.Mutex
	lines []Line // ring storage
	head  int    // index of oldest line
	count int
	seq   uint64 // next sequence number
}

// New creates a buffer holding at most capacity lines. Capacity must be
// positive; a tiny buffer still works, it just forgets sooner.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &Buffer{
		lines: make([]Line, capacity),
	}
}

// Append adds a line, evicting the oldest when at capacity. Safe for
// concurrent use; the returned line carries its assigned sequence number.
func (b *Buffer) Append(source Source, text string) Line {
	b.mu.Lock()
	defer b.mu.Unlock()

	line := Line{Seq: b.seq, Source: source, Text: text}
	b.seq++

	if b.count == len(b.lines) {
		// Ring is full: overwrite the oldest slot.
		b.lines[b.head] = line
		b.head = (b.head + 1) % len(b.lines)
		return line
	}

	b.lines[(b.head+b.count)%len(b.lines)] = line
	b.count++
	return line
}

// Snapshot copies the current contents, oldest first.
func (b *Buffer) Snapshot() []Line {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Line, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.lines[(b.head+i)%len(b.lines)]
	}
	return out
}

// Len returns the number of lines currently held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return len(b.lines)
}

// TotalAppended returns how many lines have ever been appended. The viewport
// uses this as a cheap change detector between renders.
func (b *Buffer) TotalAppended() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

// Clear drops all lines. Sequence numbers keep increasing across clears so
// ordering stays monotonic for the whole session.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = 0
	b.count = 0
}
