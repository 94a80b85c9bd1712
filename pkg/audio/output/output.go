// ABOUTME: Audio output interface definition
// ABOUTME: Common interface and completion tracking for playback backends
package output

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/oggplay/oggplay-go/pkg/audio"
)

// ErrNotOpen is returned when Play is called before a successful Open
var ErrNotOpen = errors.New("output not opened")

// Output represents an audio output device
type Output interface {
	// Open prepares the device for the requested format and returns the
	// format the device consumes. The returned format is always PCM with
	// a bit depth of 16 or 24.
	Open(want audio.Format) (audio.Format, error)

	// Play starts pulling encoded PCM from src on the device thread.
	// src must not block. Playback ends when src returns io.EOF.
	Play(src io.Reader) error

	// Done is closed when playback has ended: the stream was played out,
	// Stop was called, or the device was lost.
	Done() <-chan struct{}

	// Err returns the device error that ended playback, if any
	Err() error

	// Stop halts device I/O. Safe to call more than once and concurrently
	// with the device thread.
	Stop() error

	// Close stops playback and releases the device
	Close() error
}

// Names of the available backends
const (
	BackendOto       = "oto"
	BackendMalgo     = "malgo"
	BackendPortAudio = "portaudio"
	BackendNull      = "null"
)

// New creates an output backend by name. An empty name selects oto.
func New(name string) (Output, error) {
	switch name {
	case "", BackendOto:
		return NewOto(), nil
	case BackendMalgo:
		return NewMalgo(), nil
	case BackendPortAudio:
		return NewPortAudio(), nil
	case BackendNull:
		return NewNull(NullConfig{}), nil
	default:
		return nil, fmt.Errorf("unknown output backend: %q", name)
	}
}

// playState tracks the end of playback for a backend
type playState struct {
	done chan struct{}
	once sync.Once
	mu   sync.Mutex
	err  error
}

func newPlayState() *playState {
	return &playState{done: make(chan struct{})}
}

// finish records the ending error and closes done, once
func (s *playState) finish(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *playState) Done() <-chan struct{} {
	return s.done
}

func (s *playState) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// pull fills p from src, zeroing what src cannot serve. It reports whether
// src has reached io.EOF. A read error other than EOF is treated as EOF.
func pull(src io.Reader, p []byte) (eof bool) {
	n := 0
	for n < len(p) {
		m, err := src.Read(p[n:])
		n += m
		if err != nil {
			clear(p[n:])
			return true
		}
		if m == 0 {
			clear(p[n:])
			return false
		}
	}
	return false
}

// clampFormat maps a requested format to what the PCM backends accept
func clampFormat(want audio.Format) audio.Format {
	bitDepth := 16
	if want.BitDepth > 16 {
		bitDepth = 24
	}
	return audio.Format{
		Codec:      "pcm",
		SampleRate: want.SampleRate,
		Channels:   want.Channels,
		BitDepth:   bitDepth,
	}
}
