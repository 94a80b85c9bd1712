//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform audio output using a PortAudio callback stream
package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"github.com/oggplay/oggplay-go/pkg/audio"
)

// PortAudio output implementation
type PortAudio struct {
	stream  *portaudio.Stream
	format  audio.Format
	src     io.Reader
	scratch []byte
	eof     atomic.Bool
	mu      sync.Mutex
	*playState
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() *PortAudio {
	return &PortAudio{
		playState: newPlayState(),
	}
}

// Open initializes PortAudio with a 16-bit default output stream
func (p *PortAudio) Open(want audio.Format) (audio.Format, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !want.Valid() {
		return audio.Format{}, fmt.Errorf("invalid format: %v", want)
	}

	if err := portaudio.Initialize(); err != nil {
		return audio.Format{}, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	format := clampFormat(want)
	format.BitDepth = 16

	stream, err := portaudio.OpenDefaultStream(0, format.Channels, float64(format.SampleRate), 0, p.callback)
	if err != nil {
		portaudio.Terminate()
		return audio.Format{}, fmt.Errorf("failed to open stream: %w", err)
	}

	p.stream = stream
	p.format = format
	log.Printf("Audio output initialized: %dHz, %d channels (portaudio)", format.SampleRate, format.Channels)
	return format, nil
}

// callback converts pulled little-endian bytes into the stream buffer
func (p *PortAudio) callback(out []int16) {
	if p.eof.Load() || p.src == nil {
		clear(out)
		if p.eof.Load() {
			p.finish(nil)
		}
		return
	}

	if cap(p.scratch) < len(out)*2 {
		p.scratch = make([]byte, len(out)*2)
	}
	buf := p.scratch[:len(out)*2]
	if pull(p.src, buf) {
		p.eof.Store(true)
	}
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
	}
}

// Play starts the stream
func (p *PortAudio) Play(src io.Reader) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return ErrNotOpen
	}
	p.src = src
	if err := p.stream.Start(); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}
	return nil
}

// Stop halts the stream
func (p *PortAudio) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		if err := p.stream.Stop(); err != nil {
			log.Printf("Warning: portaudio stop error: %v", err)
		}
	}
	p.finish(nil)
	return nil
}

// Close releases resources
func (p *PortAudio) Close() error {
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil
	}
	if err := p.stream.Close(); err != nil {
		return err
	}
	p.stream = nil
	return portaudio.Terminate()
}
