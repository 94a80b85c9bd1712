// ABOUTME: Packet-driven decoder shared by the Ogg codecs
// ABOUTME: Buffers decoded float PCM, applies pre-skip and end trimming
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/oggplay/oggplay-go/pkg/audio"
)

// maxBadPackets is how many consecutive undecodable packets are skipped
// before the stream is declared corrupt.
const maxBadPackets = 4

// oggStream decodes audio packets of an Ogg stream with a codec function
type oggStream struct {
	ogg    *oggReader
	decode func(packet []byte) ([]float32, error)
	format audio.Format

	pending []float32
	skip    int64 // frames still to drop at the start
	total   int64 // frames in the stream, -1 if unknown
	emitted int64
	badRun  int
	closed  bool
	release func()
}

func (s *oggStream) Format() audio.Format { return s.format }

// Frames returns the stream length from the final granule position
func (s *oggStream) Frames() int64 { return s.total }

// fill decodes packets until some PCM is pending
func (s *oggStream) fill() error {
	ch := s.format.Channels
	for len(s.pending) == 0 {
		pkt, err := s.ogg.nextPacket()
		if err != nil {
			return err
		}

		pcm, err := s.decode(pkt)
		if err != nil {
			s.badRun++
			if s.badRun > maxBadPackets {
				return fmt.Errorf("%w: %s: %d bad packets in a row: %v", ErrCorrupt, s.format.Codec, s.badRun, err)
			}
			continue
		}
		s.badRun = 0

		frames := int64(len(pcm) / ch)
		if s.skip > 0 {
			drop := min(s.skip, frames)
			s.skip -= drop
			frames -= drop
			pcm = pcm[drop*int64(ch):]
		}
		if s.total >= 0 && s.emitted+frames > s.total {
			frames = max(s.total-s.emitted, 0)
		}
		s.emitted += frames
		s.pending = pcm[:frames*int64(ch)]
	}
	return nil
}

// DecodeBlock writes pending PCM into samples, decoding packets as needed
func (s *oggStream) DecodeBlock(samples []int32) (int, error) {
	if s.closed {
		return 0, errClosed
	}

	ch := s.format.Channels
	want := len(samples) / ch
	frames := 0
	for frames < want {
		if len(s.pending) == 0 {
			if err := s.fill(); err != nil {
				if frames > 0 && errors.Is(err, io.EOF) {
					return frames, nil
				}
				return frames, err
			}
		}

		n := min(len(s.pending)/ch, want-frames)
		out := samples[frames*ch : (frames+n)*ch]
		for i := range out {
			out[i] = audio.SampleFromFloat32(s.pending[i])
		}
		s.pending = s.pending[n*ch:]
		frames += n
	}
	return frames, nil
}

// Close releases codec state
func (s *oggStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.pending = nil
	if s.release != nil {
		s.release()
	}
	return nil
}
