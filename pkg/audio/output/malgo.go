// ABOUTME: Malgo-based audio output implementation with 24-bit support
// ABOUTME: Uses miniaudio via malgo; the data callback pulls PCM from the source
package output

import (
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/oggplay/oggplay-go/pkg/audio"
)

// Malgo output implementation using malgo/miniaudio library
type Malgo struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	format   audio.Format

	src      io.Reader
	eof      atomic.Bool
	stopping atomic.Bool
	mu       sync.Mutex
	*playState
}

// NewMalgo creates a new Malgo output
func NewMalgo() *Malgo {
	return &Malgo{
		playState: newPlayState(),
	}
}

// Open initializes the device at the requested rate and channel count.
// miniaudio converts to the hardware format internally.
func (m *Malgo) Open(want audio.Format) (audio.Format, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !want.Valid() {
		return audio.Format{}, fmt.Errorf("invalid format: %v", want)
	}
	if m.device != nil {
		return audio.Format{}, fmt.Errorf("malgo device already open")
	}

	format := clampFormat(want)

	// Map bit depth to malgo format
	var sampleFormat malgo.FormatType
	switch format.BitDepth {
	case 16:
		sampleFormat = malgo.FormatS16
	case 24:
		sampleFormat = malgo.FormatS24
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return audio.Format{}, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = sampleFormat
	deviceConfig.Playback.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: func(pOutputSample, pInputSamples []byte, frameCount uint32) {
			m.dataCallback(pOutputSample, frameCount)
		},
		Stop: m.stopCallback,
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return audio.Format{}, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	m.malgoCtx = ctx
	m.device = device
	m.format = format

	log.Printf("Audio output initialized: %dHz, %d channels, %d-bit (malgo/%s)",
		format.SampleRate, format.Channels, format.BitDepth, formatName(sampleFormat))

	return format, nil
}

// Play starts the device; the data callback reads from src
func (m *Malgo) Play(src io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device == nil {
		return ErrNotOpen
	}
	m.src = src

	if err := m.device.Start(); err != nil {
		return fmt.Errorf("failed to start device: %w", err)
	}
	return nil
}

// dataCallback is called by malgo to fill the audio output buffer
func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	size := int(frameCount) * m.format.BytesPerFrame()
	if size > len(pOutput) {
		size = len(pOutput)
	}
	out := pOutput[:size]

	// The callback after the one that hit EOF has played the tail
	if m.eof.Load() || m.src == nil {
		clear(out)
		if m.eof.Load() {
			m.finish(nil)
		}
		return
	}

	if pull(m.src, out) {
		m.eof.Store(true)
	}
}

// stopCallback runs when the device stops, requested or not
func (m *Malgo) stopCallback() {
	if m.stopping.Load() || m.eof.Load() {
		m.finish(nil)
		return
	}
	m.finish(fmt.Errorf("malgo device stopped unexpectedly"))
}

// Stop halts the device
func (m *Malgo) Stop() error {
	m.stopping.Store(true)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil && m.device.IsStarted() {
		if err := m.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
	}
	m.finish(nil)
	return nil
}

// Close releases output resources
func (m *Malgo) Close() error {
	m.Stop()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		m.device.Uninit()
		m.device = nil
	}

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}
	return nil
}

// formatName returns human-readable format name
func formatName(format malgo.FormatType) string {
	switch format {
	case malgo.FormatS16:
		return "S16"
	case malgo.FormatS24:
		return "S24"
	case malgo.FormatS32:
		return "S32"
	default:
		return fmt.Sprintf("Unknown(%d)", format)
	}
}
