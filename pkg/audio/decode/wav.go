// ABOUTME: WAV decoder adapter
// ABOUTME: Reads 16-bit and 24-bit PCM WAV clips with go-wav
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/oggplay/oggplay-go/pkg/audio"
	"github.com/youpy/go-wav"
)

// WAVDecoder decodes PCM WAV audio
type WAVDecoder struct {
	reader *wav.Reader
	format audio.Format
	frames int64
	closed bool
}

func newWAV(data []byte) (*WAVDecoder, error) {
	reader := wav.NewReader(bytes.NewReader(data))

	f, err := reader.Format()
	if err != nil {
		return nil, fmt.Errorf("failed to read wav format: %w", err)
	}
	if f.AudioFormat != wav.AudioFormatPCM {
		return nil, fmt.Errorf("unsupported wav encoding: %d (supported: PCM)", f.AudioFormat)
	}
	if f.BitsPerSample != 16 && f.BitsPerSample != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", f.BitsPerSample)
	}
	if f.NumChannels < 1 || f.NumChannels > 2 {
		return nil, fmt.Errorf("unsupported channel count: %d (supported: 1, 2)", f.NumChannels)
	}
	if f.SampleRate == 0 {
		return nil, errors.New("wav sample rate is zero")
	}

	format := audio.Format{
		Codec:      CodecWAV,
		SampleRate: int(f.SampleRate),
		Channels:   int(f.NumChannels),
		BitDepth:   int(f.BitsPerSample),
	}

	frames := int64(-1)
	if d, err := reader.Duration(); err == nil {
		frames = int64(format.FramesIn(d))
	}

	return &WAVDecoder{
		reader: reader,
		format: format,
		frames: frames,
	}, nil
}

func (d *WAVDecoder) Format() audio.Format { return d.format }

func (d *WAVDecoder) Frames() int64 { return d.frames }

// DecodeBlock reads whole frames from the data chunk
func (d *WAVDecoder) DecodeBlock(samples []int32) (int, error) {
	if d.closed {
		return 0, errClosed
	}

	ch := d.format.Channels
	want := len(samples) / ch
	if want == 0 {
		return 0, nil
	}

	frames, err := d.reader.ReadSamples(uint32(want))
	for i, frame := range frames {
		for c := 0; c < ch; c++ {
			samples[i*ch+c] = audio.SampleFromBits(int32(frame.Values[c]), d.format.BitDepth)
		}
	}

	switch {
	case err == nil:
		return len(frames), nil
	case errors.Is(err, io.EOF):
		if len(frames) > 0 {
			return len(frames), nil
		}
		return 0, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return len(frames), fmt.Errorf("%w: wav: truncated data chunk", ErrCorrupt)
	default:
		return len(frames), fmt.Errorf("%w: wav: %v", ErrCorrupt, err)
	}
}

// Close releases decoder resources
func (d *WAVDecoder) Close() error {
	d.closed = true
	return nil
}
