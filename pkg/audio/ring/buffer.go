// ABOUTME: Thread-safe circular byte buffer
// ABOUTME: Non-blocking reads with underrun counting, blocking writes with timeout
package ring

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultWait is the poll interval WriteWait uses when none is given
const DefaultWait = 10 * time.Millisecond

// ErrClosed is returned when writing after CloseWrite
var ErrClosed = errors.New("ring buffer closed for writing")

// Buffer is a bounded circular byte queue
type Buffer struct {
	data      []byte
	align     int
	readPos   int
	writePos  int
	count     int
	closed    bool
	underruns uint64
	mu        sync.Mutex

	// space is signalled when Read frees bytes
	space chan struct{}
}

// New creates a ring buffer holding capacity bytes
func New(capacity int) *Buffer {
	return NewAligned(capacity, 1)
}

// NewAligned creates a ring buffer whose reads only consume whole units of
// align bytes, such as PCM frames. Capacity is rounded down to a multiple
// of align.
func NewAligned(capacity, align int) *Buffer {
	if align < 1 {
		align = 1
	}
	capacity -= capacity % align
	if capacity < align {
		capacity = align
	}
	return &Buffer{
		data:  make([]byte, capacity),
		align: align,
		space: make(chan struct{}, 1),
	}
}

// Write copies as much of p as fits and returns the number of bytes written.
// It never overwrites unread data.
func (b *Buffer) Write(p []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0
	}
	return b.write(p)
}

func (b *Buffer) write(p []byte) int {
	n := min(len(p), len(b.data)-b.count)
	if n == 0 {
		return 0
	}

	first := copy(b.data[b.writePos:], p[:n])
	copy(b.data, p[first:n])
	b.writePos = (b.writePos + n) % len(b.data)
	b.count += n
	return n
}

// WriteWait writes all of p, waiting while the buffer is full. Each wait
// lasts until the reader frees space or until wait elapses, so ctx is
// observed at least once per interval. On cancellation it returns the bytes
// written so far and ctx.Err().
func (b *Buffer) WriteWait(ctx context.Context, p []byte, wait time.Duration) (int, error) {
	if wait <= 0 {
		wait = DefaultWait
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	written := 0
	for {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return written, ErrClosed
		}
		written += b.write(p[written:])
		b.mu.Unlock()

		if written == len(p) {
			return written, nil
		}

		if timer == nil {
			timer = time.NewTimer(wait)
		} else {
			timer.Reset(wait)
		}

		select {
		case <-ctx.Done():
			return written, ctx.Err()
		case <-b.space:
		case <-timer.C:
		}
	}
}

// Read fills dst from the buffer and returns the number of real bytes read,
// a multiple of the alignment. It never blocks. When fewer bytes are available than requested before the
// writer has closed, the rest of dst is zeroed and an underrun is counted.
func (b *Buffer) Read(dst []byte) int {
	b.mu.Lock()

	n := min(len(dst), b.count)
	n -= n % b.align
	if n > 0 {
		first := copy(dst[:n], b.data[b.readPos:])
		copy(dst[first:n], b.data)
		b.readPos = (b.readPos + n) % len(b.data)
		b.count -= n
	}

	if n < len(dst) {
		clear(dst[n:])
		if !b.closed {
			b.underruns++
		}
	}
	b.mu.Unlock()

	if n > 0 {
		select {
		case b.space <- struct{}{}:
		default:
		}
	}
	return n
}

// CloseWrite marks the end of the stream. Buffered bytes stay readable.
func (b *Buffer) CloseWrite() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Drained reports whether the writer has closed and every whole unit was read
func (b *Buffer) Drained() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed && b.count < b.align
}

// Len returns the number of unread bytes
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Free returns the number of bytes that can be written without waiting
func (b *Buffer) Free() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data) - b.count
}

// Cap returns the buffer capacity in bytes
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Underruns returns how many reads came up short before end of stream
func (b *Buffer) Underruns() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.underruns
}
