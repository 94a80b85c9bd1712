// ABOUTME: FLAC decoder adapter
// ABOUTME: Parses FLAC frames with mewkiz/flac into int32 samples
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/oggplay/oggplay-go/pkg/audio"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct {
	stream *flac.Stream
	format audio.Format
	frames int64

	// samples of the current frame not yet delivered
	pending [][]int32
	offset  int
	closed  bool
}

func newFLAC(data []byte) (*FLACDecoder, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	if info.NChannels < 1 || info.SampleRate == 0 {
		stream.Close()
		return nil, fmt.Errorf("invalid FLAC stream info (%d channels, %d Hz)", info.NChannels, info.SampleRate)
	}

	frames := int64(-1)
	if info.NSamples > 0 {
		frames = int64(info.NSamples)
	}

	return &FLACDecoder{
		stream: stream,
		format: audio.Format{
			Codec:      CodecFLAC,
			SampleRate: int(info.SampleRate),
			Channels:   int(info.NChannels),
			BitDepth:   int(info.BitsPerSample),
		},
		frames: frames,
	}, nil
}

func (d *FLACDecoder) Format() audio.Format { return d.format }

func (d *FLACDecoder) Frames() int64 { return d.frames }

// DecodeBlock parses FLAC frames as needed and converts them to 24-bit range
func (d *FLACDecoder) DecodeBlock(samples []int32) (int, error) {
	if d.closed {
		return 0, errClosed
	}

	ch := d.format.Channels
	want := len(samples) / ch
	written := 0
	for written < want {
		if d.pending == nil || d.offset >= len(d.pending[0]) {
			frame, err := d.stream.ParseNext()
			if err != nil {
				if errors.Is(err, io.EOF) {
					if written > 0 {
						return written, nil
					}
					return 0, io.EOF
				}
				return written, fmt.Errorf("%w: flac: %v", ErrCorrupt, err)
			}
			if len(frame.Subframes) < ch {
				return written, fmt.Errorf("%w: flac: frame has %d subframes, want %d", ErrCorrupt, len(frame.Subframes), ch)
			}
			d.pending = d.pending[:0]
			for c := 0; c < ch; c++ {
				d.pending = append(d.pending, frame.Subframes[c].Samples[:frame.BlockSize])
			}
			d.offset = 0
		}

		n := min(len(d.pending[0])-d.offset, want-written)
		for i := 0; i < n; i++ {
			for c := 0; c < ch; c++ {
				samples[(written+i)*ch+c] = audio.SampleFromBits(d.pending[c][d.offset+i], d.format.BitDepth)
			}
		}
		d.offset += n
		written += n
	}
	return written, nil
}

// Close releases decoder resources
func (d *FLACDecoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.pending = nil
	return d.stream.Close()
}
