// ABOUTME: MP3 decoder adapter
// ABOUTME: Decodes MP3 clips with go-mp3 into int32 samples
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/oggplay/oggplay-go/pkg/audio"
)

// go-mp3 always produces 16-bit stereo
const mp3BytesPerFrame = 4

// MP3Decoder decodes MP3 audio
type MP3Decoder struct {
	decoder *mp3.Decoder
	format  audio.Format
	buf     []byte
	closed  bool
}

func newMP3(data []byte) (*MP3Decoder, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	return &MP3Decoder{
		decoder: decoder,
		format: audio.Format{
			Codec:      CodecMP3,
			SampleRate: decoder.SampleRate(),
			Channels:   2,
			BitDepth:   16,
		},
	}, nil
}

func (d *MP3Decoder) Format() audio.Format { return d.format }

// Frames returns the decoded length reported by go-mp3
func (d *MP3Decoder) Frames() int64 {
	if n := d.decoder.Length(); n > 0 {
		return n / mp3BytesPerFrame
	}
	return -1
}

// DecodeBlock reads decoded 16-bit PCM and converts it to int32 samples
func (d *MP3Decoder) DecodeBlock(samples []int32) (int, error) {
	if d.closed {
		return 0, errClosed
	}

	want := len(samples) / 2 * mp3BytesPerFrame
	if cap(d.buf) < want {
		d.buf = make([]byte, want)
	}
	buf := d.buf[:want]

	n, err := io.ReadFull(d.decoder, buf)
	frames := n / mp3BytesPerFrame
	pcmToSamples(samples, buf[:frames*mp3BytesPerFrame], 16)

	switch {
	case err == nil:
		return frames, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		if frames > 0 {
			return frames, nil
		}
		return 0, io.EOF
	default:
		return frames, fmt.Errorf("%w: mp3: %v", ErrCorrupt, err)
	}
}

// Close releases decoder resources
func (d *MP3Decoder) Close() error {
	d.closed = true
	d.buf = nil
	return nil
}
