// ABOUTME: Playback engine implementation
// ABOUTME: Converts decoded blocks to device bytes and serves the device from a ring buffer
package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oggplay/oggplay-go/pkg/audio"
	"github.com/oggplay/oggplay-go/pkg/audio/encode"
	"github.com/oggplay/oggplay-go/pkg/audio/output"
	"github.com/oggplay/oggplay-go/pkg/audio/resample"
	"github.com/oggplay/oggplay-go/pkg/audio/ring"
)

const (
	DefaultBufferMs = 250
	MinBufferMs     = 100
	MaxBufferMs     = 500
)

// stopTimeout bounds how long Stop waits for the device thread to exit
var stopTimeout = time.Second

var (
	// ErrDevice reports an output device that could not be opened at a
	// playable format, or that was lost during playback.
	ErrDevice = errors.New("audio device error")

	// ErrStopped is returned by Submit after Stop
	ErrStopped = errors.New("playback stopped")

	errNotStarted = errors.New("engine not started")
)

// Config holds engine configuration
type Config struct {
	// BufferMs is the ring buffer size in milliseconds of device audio
	// (default: 250, clamped to 100-500)
	BufferMs int

	// WriteWait is how long Submit sleeps on a full buffer before
	// checking for cancellation again (default: 10ms)
	WriteWait time.Duration

	// Volume is the initial volume (0-100, 0 means 100)
	Volume int

	// Muted silences output without stopping it
	Muted bool
}

// Stats contains playback statistics
type Stats struct {
	Underruns       uint64
	FramesSubmitted int64 // device frames written to the ring
	FramesPlayed    int64 // device frames pulled by the device
	Buffered        time.Duration
}

// Engine plays one clip on one output device
type Engine struct {
	config Config
	out    output.Output

	clip      audio.Format
	device    audio.Format
	ring      *ring.Buffer
	resampler *resample.Resampler
	encoder   *encode.PCMEncoder

	// conversion scratch, used only by the producer
	remixed   []int32
	resampled []int32
	scaled    []int32
	encoded   []byte

	volume    atomic.Int32
	muted     atomic.Bool
	stopped   atomic.Bool
	submitted atomic.Int64
	played    atomic.Int64 // bytes

	started  bool
	playing  bool
	stopOnce sync.Once
	mu       sync.Mutex
}

// New creates an engine for the given output device
func New(out output.Output, config Config) *Engine {
	if config.BufferMs == 0 {
		config.BufferMs = DefaultBufferMs
	}
	config.BufferMs = min(max(config.BufferMs, MinBufferMs), MaxBufferMs)
	if config.WriteWait <= 0 {
		config.WriteWait = ring.DefaultWait
	}
	if config.Volume == 0 {
		config.Volume = 100
	}

	e := &Engine{
		config: config,
		out:    out,
	}
	e.volume.Store(int32(clampVolume(config.Volume)))
	e.muted.Store(config.Muted)
	return e
}

// Start opens the device for the clip format and prepares the conversion
// chain. It returns the device format. On failure the device is released
// and the error wraps ErrDevice.
func (e *Engine) Start(clip audio.Format) (audio.Format, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return e.device, errors.New("engine already started")
	}
	if !clip.Valid() {
		return audio.Format{}, fmt.Errorf("%w: invalid clip format %v", ErrDevice, clip)
	}

	device, err := e.out.Open(clip)
	if err != nil {
		e.out.Close()
		return audio.Format{}, fmt.Errorf("%w: %w", ErrDevice, err)
	}

	if err := e.prepare(clip, device); err != nil {
		e.out.Close()
		return audio.Format{}, fmt.Errorf("%w: %w", ErrDevice, err)
	}

	e.started = true
	log.Printf("Playback engine started: %v -> %v, buffer %dms (%d bytes)",
		clip, device, e.config.BufferMs, e.ring.Cap())
	return device, nil
}

// prepare builds the conversion chain from clip to device format
func (e *Engine) prepare(clip, device audio.Format) error {
	if !device.Valid() {
		return fmt.Errorf("device answered with invalid format %v", device)
	}
	if !canRemix(clip.Channels, device.Channels) {
		return fmt.Errorf("cannot play %d channels on a %d channel device", clip.Channels, device.Channels)
	}

	encoder, err := encode.NewPCM(device.BitDepth)
	if err != nil {
		return err
	}

	e.clip = clip
	e.device = device
	e.encoder = encoder
	if clip.SampleRate != device.SampleRate {
		e.resampler = resample.New(clip.SampleRate, device.SampleRate, device.Channels)
		log.Printf("Resampling %dHz -> %dHz (%.4f input frames per output frame)",
			clip.SampleRate, device.SampleRate, e.resampler.Ratio())
	}

	frameSize := device.BytesPerFrame()
	frames := device.FramesIn(time.Duration(e.config.BufferMs) * time.Millisecond)
	e.ring = ring.NewAligned(frames*frameSize, frameSize)
	return nil
}

// Play hands the device its pull source
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return errNotStarted
	}
	if e.playing {
		return nil
	}
	if e.stopped.Load() {
		return ErrStopped
	}

	if err := e.out.Play(&source{e: e}); err != nil {
		return fmt.Errorf("%w: %w", ErrDevice, err)
	}
	e.playing = true

	// A lost device stops reading, so unblock the producer
	go func() {
		<-e.out.Done()
		if e.out.Err() != nil {
			e.ring.CloseWrite()
		}
	}()
	return nil
}

// Fits reports whether a block of clipFrames can be submitted without
// waiting for the device
func (e *Engine) Fits(clipFrames int) bool {
	if !e.started {
		return false
	}
	frames := clipFrames
	if e.resampler != nil {
		frames = e.resampler.MaxOutputSamples(clipFrames*e.device.Channels) / e.device.Channels
	}
	return frames*e.device.BytesPerFrame() <= e.ring.Free()
}

// Submit converts a block of interleaved clip samples and queues it for the
// device, waiting while the ring buffer is full. It returns ctx.Err() when
// cancelled, ErrStopped after Stop, or an ErrDevice error if the device was
// lost.
func (e *Engine) Submit(ctx context.Context, block []int32) error {
	if !e.started {
		return errNotStarted
	}
	if e.stopped.Load() {
		return ErrStopped
	}
	if len(block) == 0 {
		return nil
	}

	samples := block
	if e.clip.Channels != e.device.Channels {
		e.remixed = remix(e.remixed[:0], samples, e.clip.Channels, e.device.Channels)
		samples = e.remixed
	}

	if e.resampler != nil {
		size := e.resampler.MaxOutputSamples(len(samples))
		if cap(e.resampled) < size {
			e.resampled = make([]int32, size)
		}
		n := e.resampler.Resample(samples, e.resampled[:size])
		samples = e.resampled[:n]
	}

	if cap(e.scaled) < len(samples) {
		e.scaled = make([]int32, len(samples))
	}
	scaled := e.scaled[:len(samples)]
	applyVolume(scaled, samples, int(e.volume.Load()), e.muted.Load())

	e.encoded = e.encoder.AppendEncode(e.encoded[:0], scaled)

	n, err := e.ring.WriteWait(ctx, e.encoded, e.config.WriteWait)
	e.submitted.Add(int64(n / e.device.BytesPerFrame()))
	if errors.Is(err, ring.ErrClosed) {
		if devErr := e.Err(); devErr != nil {
			return devErr
		}
		return ErrStopped
	}
	return err
}

// Finish marks the end of the clip; the device plays out what is buffered
func (e *Engine) Finish() {
	if e.ring != nil {
		e.ring.CloseWrite()
	}
}

// Done is closed when the device has played out the stream, was stopped,
// or was lost
func (e *Engine) Done() <-chan struct{} {
	return e.out.Done()
}

// Err returns the device loss error, if any, wrapping ErrDevice
func (e *Engine) Err() error {
	if err := e.out.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrDevice, err)
	}
	return nil
}

// Stop halts device I/O and releases the device. It is idempotent and safe
// to call from any goroutine while the device is pulling.
func (e *Engine) Stop() error {
	e.stopOnce.Do(func() {
		e.stopped.Store(true)
		e.mu.Lock()
		playing := e.playing
		e.mu.Unlock()
		if e.ring != nil {
			e.ring.CloseWrite()
		}

		if err := e.out.Stop(); err != nil {
			log.Printf("Warning: output stop error: %v", err)
		}
		if playing {
			select {
			case <-e.out.Done():
			case <-time.After(stopTimeout):
				log.Printf("Warning: device thread still running %v after stop", stopTimeout)
			}
		}
		if err := e.out.Close(); err != nil {
			log.Printf("Warning: output close error: %v", err)
		}

		stats := e.Stats()
		log.Printf("Playback engine stopped: %d frames played, %d underruns",
			stats.FramesPlayed, stats.Underruns)
	})
	return nil
}

// SetVolume sets the volume (0-100) for blocks submitted from now on
func (e *Engine) SetVolume(volume int) {
	e.volume.Store(int32(clampVolume(volume)))
}

// SetMuted sets mute state for blocks submitted from now on
func (e *Engine) SetMuted(muted bool) {
	e.muted.Store(muted)
}

// DeviceFormat returns the format negotiated with the device
func (e *Engine) DeviceFormat() audio.Format {
	return e.device
}

// Stats returns playback statistics
func (e *Engine) Stats() Stats {
	if e.ring == nil {
		return Stats{}
	}
	frameSize := e.device.BytesPerFrame()
	return Stats{
		Underruns:       e.ring.Underruns(),
		FramesSubmitted: e.submitted.Load(),
		FramesPlayed:    e.played.Load() / int64(frameSize),
		Buffered:        e.device.Duration(int64(e.ring.Len() / frameSize)),
	}
}

// source is the reader the device pulls from
type source struct {
	e *Engine
}

// Read never blocks: it serves buffered frames and pads with silence
func (s *source) Read(p []byte) (int, error) {
	e := s.e
	if e.stopped.Load() || e.ring.Drained() {
		return 0, io.EOF
	}

	// whole frames only, so silence never splits a frame
	size := len(p) - len(p)%e.device.BytesPerFrame()
	n := e.ring.Read(p[:size])
	e.played.Add(int64(n))
	return size, nil
}
