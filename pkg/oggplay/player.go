// ABOUTME: Player API for in-memory clip playback
// ABOUTME: Serializes sessions so at most one holds the output device
package oggplay

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/oggplay/oggplay-go/pkg/audio/decode"
	"github.com/oggplay/oggplay-go/pkg/audio/output"
	"github.com/oggplay/oggplay-go/pkg/playback"
)

const DefaultBlockFrames = 1024

var (
	// ErrFormat reports a clip that is not a valid or supported stream
	ErrFormat = decode.ErrFormat

	// ErrDevice reports an output device that is unavailable, cannot play
	// the clip's format, or was lost during playback
	ErrDevice = playback.ErrDevice

	// ErrInvalidState is returned when a session is already active
	ErrInvalidState = errors.New("playback session already active")
)

// Config holds player configuration
type Config struct {
	// Output creates the device for each session (default: oto)
	Output func() (output.Output, error)

	// OpenDecoder creates the decoder for a clip (default: decode.Open)
	OpenDecoder func(data []byte) (decode.Decoder, error)

	// BufferMs is the ring buffer size in milliseconds (default: 250, 100-500)
	BufferMs int

	// BlockFrames is the number of frames decoded per block (default: 1024)
	BlockFrames int

	// Volume is the initial volume (0-100, 0 means 100)
	Volume int

	// Muted starts the player muted
	Muted bool

	// OnStateChange is called when a session changes state
	OnStateChange func(Status)

	// OnError is called for errors that cannot be returned to a caller,
	// such as device loss during asynchronous playback
	OnError func(error)
}

// Player plays one clip at a time
type Player struct {
	config Config

	// mu serializes PlayFromMemory and EndPlay; session is the active slot
	mu      sync.Mutex
	session *session

	// current is the latest session, kept after it ends for Status
	current atomic.Pointer[session]

	volume atomic.Int32
	muted  atomic.Bool
}

// NewPlayer creates a new player with the given configuration
func NewPlayer(config Config) *Player {
	// Set defaults
	if config.Output == nil {
		config.Output = func() (output.Output, error) { return output.NewOto(), nil }
	}
	if config.OpenDecoder == nil {
		config.OpenDecoder = decode.Open
	}
	if config.BufferMs == 0 {
		config.BufferMs = playback.DefaultBufferMs
	}
	if config.BlockFrames <= 0 {
		config.BlockFrames = DefaultBlockFrames
	}
	if config.Volume == 0 {
		config.Volume = 100
	}

	p := &Player{config: config}
	p.volume.Store(int32(config.Volume))
	p.muted.Store(config.Muted)
	return p
}

// PlayFromMemory plays a complete compressed clip.
//
// Synchronous mode returns when the clip has ended or EndPlay was called
// from another goroutine; device loss is returned as an error wrapping
// ErrDevice. Asynchronous mode copies data, opens the decoder and the
// device, starts decoding and returns; the clip plays in the background
// until it ends or EndPlay is called.
//
// In both modes a clip that cannot be decoded fails with ErrFormat before
// any device is opened, a device that cannot be opened fails with
// ErrDevice, and an active session makes the call fail with
// ErrInvalidState. A failed call leaves no session behind.
func (p *Player) PlayFromMemory(data []byte, async bool) error {
	p.mu.Lock()

	if s := p.session; s != nil {
		select {
		case <-s.finished:
			// finished on its own; reap it
			p.session = nil
		default:
			p.mu.Unlock()
			return fmt.Errorf("%w: session %s is %s", ErrInvalidState, s.id, s.State())
		}
	}

	clip := data
	if async {
		clip = bytes.Clone(data)
	}

	s, err := p.open(clip, async)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	s.markPlaying()
	p.session = s
	p.current.Store(s)
	p.mu.Unlock()

	p.notifyStateChange(s.status())

	if async {
		go s.run()
		return nil
	}

	s.run()

	p.mu.Lock()
	if p.session == s {
		p.session = nil
	}
	p.mu.Unlock()
	return s.deviceErr()
}

// open creates the decoder and engine and starts playback (must hold p.mu)
func (p *Player) open(clip []byte, async bool) (*session, error) {
	dec, err := p.config.OpenDecoder(clip)
	if err != nil {
		if !errors.Is(err, ErrFormat) {
			err = fmt.Errorf("%w: %w", ErrFormat, err)
		}
		return nil, err
	}

	id := uuid.New().String()
	if err := acquireDevice(id); err != nil {
		dec.Close()
		return nil, err
	}

	out, err := p.config.Output()
	if err != nil {
		releaseDevice(id)
		dec.Close()
		return nil, fmt.Errorf("%w: %w", ErrDevice, err)
	}

	eng := playback.New(out, playback.Config{
		BufferMs: p.config.BufferMs,
		Volume:   int(p.volume.Load()),
		Muted:    p.muted.Load(),
	})
	if p.volume.Load() == 0 {
		eng.SetVolume(0)
	}

	s := newSession(id, p, dec, eng, async)
	if err := s.start(); err != nil {
		return nil, err
	}
	return s, nil
}

// EndPlay stops the active session, if any, and waits until its device and
// decoder have been released. It never fails and may be called from
// OnStateChange.
func (p *Player) EndPlay() {
	p.mu.Lock()
	s := p.session
	p.mu.Unlock()
	if s == nil {
		return
	}

	s.stop()
	<-s.finished

	p.mu.Lock()
	if p.session == s {
		p.session = nil
	}
	p.mu.Unlock()
}

// State returns the state of the latest session, or StateIdle
func (p *Player) State() State {
	if s := p.current.Load(); s != nil {
		return s.State()
	}
	return StateIdle
}

// Status returns the status of the latest session
func (p *Player) Status() Status {
	if s := p.current.Load(); s != nil {
		return s.status()
	}
	return Status{
		State:  StateIdle,
		Volume: int(p.volume.Load()),
		Muted:  p.muted.Load(),
	}
}

// SetVolume sets the volume (0-100) for the active and future sessions
func (p *Player) SetVolume(volume int) {
	volume = min(max(volume, 0), 100)
	p.volume.Store(int32(volume))
	if s := p.current.Load(); s != nil {
		s.eng.SetVolume(volume)
	}
	log.Printf("Volume set to %d", volume)
}

// Mute sets the mute state for the active and future sessions
func (p *Player) Mute(muted bool) {
	p.muted.Store(muted)
	if s := p.current.Load(); s != nil {
		s.eng.SetMuted(muted)
	}
	log.Printf("Muted: %v", muted)
}

// notifyStateChange reports a session status to the callback
func (p *Player) notifyStateChange(status Status) {
	if p.config.OnStateChange != nil {
		p.config.OnStateChange(status)
	}
}

// notifyError reports an error to the callback, or logs it
func (p *Player) notifyError(err error) {
	if p.config.OnError != nil {
		p.config.OnError(err)
	} else {
		log.Printf("Player error: %v", err)
	}
}
