//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"errors"
	"io"

	"github.com/oggplay/oggplay-go/pkg/audio"
)

var errPortAudioDisabled = errors.New("PortAudio support not enabled (build with -tags portaudio)")

// PortAudio output implementation (stub)
type PortAudio struct {
	*playState
}

// NewPortAudio creates a new PortAudio output
func NewPortAudio() *PortAudio {
	return &PortAudio{playState: newPlayState()}
}

// Open always fails without the portaudio build tag
func (p *PortAudio) Open(want audio.Format) (audio.Format, error) {
	return audio.Format{}, errPortAudioDisabled
}

func (p *PortAudio) Play(src io.Reader) error {
	return errPortAudioDisabled
}

func (p *PortAudio) Stop() error {
	p.finish(nil)
	return nil
}

func (p *PortAudio) Close() error {
	return p.Stop()
}
