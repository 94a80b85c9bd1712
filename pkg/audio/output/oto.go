// ABOUTME: Oto-based audio output implementation
// ABOUTME: Pulls 16-bit stereo PCM through an oto player on a process-wide context
package output

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/oggplay/oggplay-go/pkg/audio"
)

const (
	otoChannels = 2
	// otoBufferTime bounds the audio queued inside the oto player
	otoBufferTime = 50 * time.Millisecond
	otoPollPeriod = 10 * time.Millisecond
)

// oto allows only one context per process, so it is shared by every Oto
// output and keeps the sample rate of the first clip.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoRate int
	otoErr  error
)

// Oto output implementation using oto library
type Oto struct {
	format   audio.Format
	player   *oto.Player
	src      *eofReader
	stopCh   chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex
	*playState
}

// NewOto creates a new Oto output
func NewOto() *Oto {
	return &Oto{
		stopCh:    make(chan struct{}),
		playState: newPlayState(),
	}
}

// Open returns the shared context format: 16-bit stereo at the rate of the
// first clip ever opened
func (o *Oto) Open(want audio.Format) (audio.Format, error) {
	if !want.Valid() {
		return audio.Format{}, fmt.Errorf("invalid format: %v", want)
	}

	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   want.SampleRate,
			ChannelCount: otoChannels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan

		otoCtx = ctx
		otoRate = want.SampleRate
		log.Printf("Audio output initialized: %dHz, %d channels (oto)", otoRate, otoChannels)
	})
	if otoErr != nil {
		return audio.Format{}, otoErr
	}

	if otoRate != want.SampleRate {
		log.Printf("oto context fixed at %dHz, clip is %dHz", otoRate, want.SampleRate)
	}

	o.format = audio.Format{
		Codec:      "pcm",
		SampleRate: otoRate,
		Channels:   otoChannels,
		BitDepth:   16,
	}
	return o.format, nil
}

// Play creates a player reading from src and starts it
func (o *Oto) Play(src io.Reader) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if otoCtx == nil || o.format.SampleRate == 0 {
		return ErrNotOpen
	}
	if o.player != nil {
		return errors.New("oto output already playing")
	}

	o.src = &eofReader{r: src}
	o.player = otoCtx.NewPlayer(o.src)
	o.player.SetBufferSize(o.format.FramesIn(otoBufferTime) * o.format.BytesPerFrame())
	o.player.Play()

	go o.monitor(o.player)
	return nil
}

// monitor polls the player until it has played out the stream
func (o *Oto) monitor(player *oto.Player) {
	ticker := time.NewTicker(otoPollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-o.stopCh:
			o.finish(nil)
			return
		case <-ticker.C:
		}

		if err := player.Err(); err != nil {
			o.finish(fmt.Errorf("oto player: %w", err))
			return
		}
		if o.src.eof.Load() && !player.IsPlaying() {
			o.finish(nil)
			return
		}
	}
}

// Stop pauses the player and ends the monitor
func (o *Oto) Stop() error {
	o.stopOnce.Do(func() { close(o.stopCh) })

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player == nil {
		o.finish(nil)
		return nil
	}
	o.player.Pause()
	return nil
}

// Close releases the player. The shared context stays alive.
func (o *Oto) Close() error {
	o.Stop()

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player != nil {
		if err := o.player.Close(); err != nil {
			return fmt.Errorf("failed to close oto player: %w", err)
		}
		o.player = nil
	}
	return nil
}

// eofReader records when the wrapped reader reaches the end
type eofReader struct {
	r   io.Reader
	eof atomic.Bool
}

func (e *eofReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err == io.EOF {
		e.eof.Store(true)
	}
	return n, err
}
