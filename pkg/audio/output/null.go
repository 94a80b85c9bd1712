// ABOUTME: Null audio output paced at real time
// ABOUTME: Consumes PCM on a ticker without a sound card, for headless hosts and tests
package output

import (
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oggplay/oggplay-go/pkg/audio"
)

// NullConfig configures a null output
type NullConfig struct {
	// Period between device reads (default 10ms)
	Period time.Duration

	// SampleRate and Channels override the requested format when set,
	// like a device with a fixed native format
	SampleRate int
	Channels   int

	// OpenErr makes Open fail, like a busy or missing device
	OpenErr error

	// LoseAfter simulates the device disappearing after playing this long
	LoseAfter time.Duration

	// Opens, when set, is incremented on every successful Open
	Opens *atomic.Int32
}

// Null output implementation that discards audio at real-time speed
type Null struct {
	config   NullConfig
	format   audio.Format
	opened   bool
	playing  atomic.Bool
	consumed atomic.Int64
	stopCh   chan struct{}
	stopOnce sync.Once
	*playState
}

// NewNull creates a new null output
func NewNull(config NullConfig) *Null {
	if config.Period <= 0 {
		config.Period = 10 * time.Millisecond
	}
	return &Null{
		config:    config,
		stopCh:    make(chan struct{}),
		playState: newPlayState(),
	}
}

// Open accepts any valid format unless configured otherwise
func (n *Null) Open(want audio.Format) (audio.Format, error) {
	if n.config.OpenErr != nil {
		return audio.Format{}, n.config.OpenErr
	}
	if !want.Valid() {
		return audio.Format{}, fmt.Errorf("invalid format: %v", want)
	}

	format := clampFormat(want)
	if n.config.SampleRate > 0 {
		format.SampleRate = n.config.SampleRate
	}
	if n.config.Channels > 0 {
		format.Channels = n.config.Channels
	}

	n.format = format
	n.opened = true
	if n.config.Opens != nil {
		n.config.Opens.Add(1)
	}

	log.Printf("Audio output initialized: %dHz, %d channels, %d-bit (null)",
		format.SampleRate, format.Channels, format.BitDepth)
	return format, nil
}

// Play reads one period of audio from src per tick until EOF or Stop
func (n *Null) Play(src io.Reader) error {
	if !n.opened {
		return ErrNotOpen
	}

	periodBytes := n.format.FramesIn(n.config.Period) * n.format.BytesPerFrame()
	if periodBytes == 0 {
		periodBytes = n.format.BytesPerFrame()
	}

	n.playing.Store(true)
	go func() {
		var err error
		ticker := time.NewTicker(n.config.Period)
		// done closes only after the loop has let go of src
		defer func() {
			ticker.Stop()
			n.finish(err)
		}()

		buf := make([]byte, periodBytes)
		start := time.Now()
		for {
			select {
			case <-n.stopCh:
				return
			case <-ticker.C:
			}

			if n.config.LoseAfter > 0 && time.Since(start) >= n.config.LoseAfter {
				err = fmt.Errorf("null device lost after %v", n.config.LoseAfter)
				return
			}

			eof := pull(src, buf)
			n.consumed.Add(int64(len(buf)))
			if eof {
				return
			}
		}
	}()
	return nil
}

// Consumed returns the number of bytes the device has pulled
func (n *Null) Consumed() int64 {
	return n.consumed.Load()
}

// Stop halts the device loop
func (n *Null) Stop() error {
	n.stopOnce.Do(func() { close(n.stopCh) })
	if !n.playing.Load() {
		n.finish(nil)
	}
	return nil
}

// Close releases output resources
func (n *Null) Close() error {
	n.Stop()
	n.opened = false
	return nil
}
