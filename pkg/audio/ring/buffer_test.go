// ABOUTME: Tests for the ring buffer
// ABOUTME: Covers wraparound, underrun accounting, backpressure and cancellation
package ring

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func TestWriteRead(t *testing.T) {
	rb := New(8)

	if n := rb.Write([]byte{1, 2, 3, 4, 5}); n != 5 {
		t.Fatalf("expected 5 bytes written, got %d", n)
	}
	if rb.Len() != 5 || rb.Free() != 3 {
		t.Errorf("expected len 5 free 3, got len %d free %d", rb.Len(), rb.Free())
	}

	dst := make([]byte, 3)
	if n := rb.Read(dst); n != 3 {
		t.Fatalf("expected 3 bytes read, got %d", n)
	}
	if !bytes.Equal(dst, []byte{1, 2, 3}) {
		t.Errorf("unexpected data: %v", dst)
	}

	// wraps around the end of the backing slice
	if n := rb.Write([]byte{6, 7, 8, 9, 10, 11}); n != 6 {
		t.Fatalf("expected 6 bytes written, got %d", n)
	}
	dst = make([]byte, 8)
	if n := rb.Read(dst); n != 8 {
		t.Fatalf("expected 8 bytes read, got %d", n)
	}
	if !bytes.Equal(dst, []byte{4, 5, 6, 7, 8, 9, 10, 11}) {
		t.Errorf("unexpected data after wrap: %v", dst)
	}
}

func TestWriteNeverOvertakesUnread(t *testing.T) {
	rb := New(4)

	if n := rb.Write([]byte{1, 2, 3, 4, 5, 6}); n != 4 {
		t.Errorf("expected 4 bytes written, got %d", n)
	}
	if n := rb.Write([]byte{7}); n != 0 {
		t.Errorf("expected full buffer to accept nothing, got %d", n)
	}

	dst := make([]byte, 4)
	rb.Read(dst)
	if !bytes.Equal(dst, []byte{1, 2, 3, 4}) {
		t.Errorf("unread data was overwritten: %v", dst)
	}
}

func TestReadUnderrun(t *testing.T) {
	tests := []struct {
		name      string
		closed    bool
		underruns uint64
	}{
		{"open stream counts underrun", false, 1},
		{"closed stream does not", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := New(16)
			rb.Write([]byte{9, 9})
			if tt.closed {
				rb.CloseWrite()
			}

			dst := []byte{1, 1, 1, 1, 1}
			if n := rb.Read(dst); n != 2 {
				t.Fatalf("expected 2 real bytes, got %d", n)
			}
			if !bytes.Equal(dst, []byte{9, 9, 0, 0, 0}) {
				t.Errorf("expected zero fill, got %v", dst)
			}
			if rb.Underruns() != tt.underruns {
				t.Errorf("expected %d underruns, got %d", tt.underruns, rb.Underruns())
			}
		})
	}
}

func TestDrained(t *testing.T) {
	rb := New(4)
	rb.Write([]byte{1})

	if rb.Drained() {
		t.Error("open buffer should not be drained")
	}
	rb.CloseWrite()
	if rb.Drained() {
		t.Error("closed buffer with data should not be drained")
	}
	rb.Read(make([]byte, 1))
	if !rb.Drained() {
		t.Error("closed empty buffer should be drained")
	}

	if n := rb.Write([]byte{2}); n != 0 {
		t.Errorf("expected write after close to fail, wrote %d", n)
	}
	if _, err := rb.WriteWait(context.Background(), []byte{2}, 0); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestWriteWaitBackpressure(t *testing.T) {
	rb := New(4)
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	done := make(chan error, 1)
	go func() {
		_, err := rb.WriteWait(context.Background(), payload, time.Millisecond)
		if err == nil {
			rb.CloseWrite()
		}
		done <- err
	}()

	var got []byte
	buf := make([]byte, 3)
	deadline := time.After(2 * time.Second)
	for !rb.Drained() {
		select {
		case <-deadline:
			t.Fatal("timed out draining buffer")
		default:
		}
		n := rb.Read(buf)
		got = append(got, buf[:n]...)
		time.Sleep(time.Millisecond)
	}

	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("expected %v, got %v", payload, got)
	}
}

func TestWriteWaitCancel(t *testing.T) {
	rb := New(4)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	n, err := rb.WriteWait(ctx, make([]byte, 10), 5*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if n != 4 {
		t.Errorf("expected partial write of 4, got %d", n)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation took too long: %v", elapsed)
	}
}

func TestAlignedReadsWholeFrames(t *testing.T) {
	rb := NewAligned(10, 4)
	if rb.Cap() != 8 {
		t.Fatalf("expected capacity rounded to 8, got %d", rb.Cap())
	}

	// one frame and a half
	rb.Write([]byte{1, 2, 3, 4, 5, 6})

	dst := make([]byte, 8)
	if n := rb.Read(dst); n != 4 {
		t.Fatalf("expected one whole frame, got %d bytes", n)
	}
	if !bytes.Equal(dst, []byte{1, 2, 3, 4, 0, 0, 0, 0}) {
		t.Errorf("unexpected data: %v", dst)
	}
	if rb.Underruns() != 1 {
		t.Errorf("expected 1 underrun, got %d", rb.Underruns())
	}

	// the rest of the frame arrives
	rb.Write([]byte{7, 8})
	rb.CloseWrite()
	if rb.Drained() {
		t.Error("buffer with a whole frame should not be drained")
	}
	if n := rb.Read(dst[:4]); n != 4 || !bytes.Equal(dst[:4], []byte{5, 6, 7, 8}) {
		t.Errorf("expected second frame, got %d bytes %v", n, dst[:4])
	}
	if !rb.Drained() {
		t.Error("expected drained buffer")
	}
}
