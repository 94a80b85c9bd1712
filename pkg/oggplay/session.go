// ABOUTME: Playback session driving decode and playback for one clip
// ABOUTME: Runs the producer loop and releases the device and decoder when done
package oggplay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/oggplay/oggplay-go/pkg/audio"
	"github.com/oggplay/oggplay-go/pkg/audio/decode"
	"github.com/oggplay/oggplay-go/pkg/playback"
)

// maxEmptyBlocks ends a clip whose decoder stops making progress
const maxEmptyBlocks = 64

// device tracks the one session allowed to hold an output device in this
// process, across every Player
var device struct {
	mu    sync.Mutex
	owner string
}

func acquireDevice(id string) error {
	device.mu.Lock()
	defer device.mu.Unlock()
	if device.owner != "" {
		return fmt.Errorf("%w: output device held by session %s", ErrInvalidState, device.owner)
	}
	device.owner = id
	return nil
}

func releaseDevice(id string) {
	device.mu.Lock()
	if device.owner == id {
		device.owner = ""
	}
	device.mu.Unlock()
}

// session is one clip from PlayFromMemory to cleanup
type session struct {
	id     string
	async  bool
	player *Player
	dec    decode.Decoder
	eng    *playback.Engine

	clip     audio.Format
	device   audio.Format
	duration time.Duration
	started  time.Time

	block []int32
	eos   bool
	empty int

	ctx    context.Context
	cancel context.CancelFunc
	// finished closes once every resource is released, before the Stopped
	// callback runs
	finished chan struct{}

	mu    sync.Mutex
	state State
	err   error
}

func newSession(id string, p *Player, dec decode.Decoder, eng *playback.Engine, async bool) *session {
	ctx, cancel := context.WithCancel(context.Background())
	clip := dec.Format()

	var duration time.Duration
	if l, ok := dec.(decode.Lengther); ok && l.Frames() >= 0 {
		duration = clip.Duration(l.Frames())
	}

	return &session{
		id:       id,
		async:    async,
		player:   p,
		dec:      dec,
		eng:      eng,
		clip:     clip,
		duration: duration,
		block:    make([]int32, p.config.BlockFrames*max(clip.Channels, 1)),
		ctx:      ctx,
		cancel:   cancel,
		finished: make(chan struct{}),
		state:    StateIdle,
	}
}

// start opens the device, prefills the ring buffer and starts the device.
// On error every resource is released.
func (s *session) start() error {
	device, err := s.eng.Start(s.clip)
	if err != nil {
		releaseDevice(s.id)
		s.dec.Close()
		s.cancel()
		return err
	}
	s.device = device

	decoded := false
	for !s.eos && s.eng.Fits(s.player.config.BlockFrames) {
		if err := s.step(); err != nil {
			s.release()
			return err
		}
		decoded = true
	}

	if err := s.eng.Play(); err != nil {
		s.release()
		return err
	}
	s.started = time.Now()

	// a ring smaller than one block skipped prefill
	if !decoded && !s.eos {
		if err := s.step(); err != nil {
			s.release()
			return err
		}
	}

	log.Printf("Session %s started: %v -> %v (async=%v, duration %v)",
		s.id, s.clip, s.device, s.async, s.duration)
	return nil
}

// step decodes one block and submits it. Corruption and end of stream set
// eos; only submit errors are returned.
func (s *session) step() error {
	frames, err := s.dec.DecodeBlock(s.block)
	if frames > 0 {
		s.empty = 0
		if serr := s.eng.Submit(s.ctx, s.block[:frames*s.clip.Channels]); serr != nil {
			return serr
		}
	}

	switch {
	case err == nil:
		if frames == 0 {
			s.empty++
			if s.empty >= maxEmptyBlocks {
				log.Printf("Session %s: decoder made no progress, ending clip", s.id)
				s.eos = true
			}
		}
	case errors.Is(err, io.EOF):
		s.eos = true
	default:
		log.Printf("Session %s: clip truncated: %v", s.id, err)
		s.eos = true
	}
	return nil
}

// run feeds the engine until the clip ends or stop is requested, waits for
// the device to play out, then releases everything and enters Stopped
func (s *session) run() {
	var runErr error
	for !s.eos && s.ctx.Err() == nil {
		if runErr = s.step(); runErr != nil {
			break
		}
	}

	if runErr == nil && s.ctx.Err() == nil {
		s.eng.Finish()
		select {
		case <-s.eng.Done():
		case <-s.ctx.Done():
		}
		runErr = s.eng.Err()
	}

	if errors.Is(runErr, playback.ErrDevice) {
		s.fail(runErr)
	}

	s.release()
	s.setState(StateStopped)

	stats := s.eng.Stats()
	log.Printf("Session %s finished after %v: %v played, %d underruns",
		s.id, time.Since(s.started).Round(time.Millisecond),
		s.device.Duration(stats.FramesPlayed), stats.Underruns)
}

// release stops the engine, closes the decoder and frees the device slot
func (s *session) release() {
	s.cancel()
	s.eng.Stop()
	if err := s.dec.Close(); err != nil {
		log.Printf("Session %s: decoder close error: %v", s.id, err)
	}
	releaseDevice(s.id)
}

// stop requests cooperative cancellation
func (s *session) stop() {
	s.mu.Lock()
	playing := s.state == StatePlaying
	s.mu.Unlock()

	if playing {
		s.setState(StateStopping)
	}
	s.cancel()
}

// fail records a device loss; asynchronous sessions report it via OnError
func (s *session) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	if s.async {
		s.player.notifyError(err)
	}
}

func (s *session) deviceErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// markPlaying enters Playing without notifying; the caller reports it once
// the session is published
func (s *session) markPlaying() {
	s.mu.Lock()
	s.state = StatePlaying
	s.mu.Unlock()
}

func (s *session) setState(state State) {
	s.mu.Lock()
	if s.state == state || s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	s.state = state
	if state == StateStopped {
		close(s.finished)
	}
	s.mu.Unlock()

	s.player.notifyStateChange(s.status())
}

func (s *session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *session) status() Status {
	s.mu.Lock()
	state, err := s.state, s.err
	s.mu.Unlock()

	stats := s.eng.Stats()
	return Status{
		State:     state,
		SessionID: s.id,
		Async:     s.async,
		Clip:      s.clip,
		Device:    s.device,
		Duration:  s.duration,
		Elapsed:   s.device.Duration(stats.FramesPlayed),
		Underruns: stats.Underruns,
		Volume:    int(s.player.volume.Load()),
		Muted:     s.player.muted.Load(),
		LastError: err,
	}
}
