// ABOUTME: Decoder interface definition and content sniffing
// ABOUTME: Opens an in-memory clip with the adapter matching its container
package decode

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/oggplay/oggplay-go/pkg/audio"
)

// Codec names reported by Sniff and audio.Format.Codec
const (
	CodecVorbis = "vorbis"
	CodecOpus   = "opus"
	CodecMP3    = "mp3"
	CodecWAV    = "wav"
	CodecFLAC   = "flac"
	CodecTone   = "tone"
)

var (
	// ErrFormat reports a clip that is not a valid or supported stream.
	ErrFormat = errors.New("unsupported audio format")

	// ErrCorrupt reports damaged data found after a successful open.
	ErrCorrupt = errors.New("corrupt audio data")

	errClosed = errors.New("decoder closed")
)

// Decoder pulls PCM blocks from a compressed clip
type Decoder interface {
	// Format returns the decoded stream format, fixed at open
	Format() audio.Format

	// DecodeBlock writes up to len(samples)/channels frames and returns the
	// number of frames written. It returns io.EOF once the stream is
	// exhausted. An error wrapping ErrCorrupt may come with frames > 0;
	// those frames are valid.
	DecodeBlock(samples []int32) (frames int, err error)

	// Close releases decoder state
	Close() error
}

// Lengther is implemented by decoders that know their total length.
// Frames returns -1 when the length is unknown.
type Lengther interface {
	Frames() int64
}

// Sniff identifies the codec of a clip from its leading bytes.
// It returns "" when the content is not recognized.
func Sniff(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("OggS")):
		pkt := firstOggPacket(data)
		switch {
		case bytes.HasPrefix(pkt, []byte("\x01vorbis")):
			return CodecVorbis
		case bytes.HasPrefix(pkt, []byte("OpusHead")):
			return CodecOpus
		}
		return ""
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return CodecWAV
	case bytes.HasPrefix(data, []byte("fLaC")):
		return CodecFLAC
	case bytes.HasPrefix(data, []byte("ID3")):
		return CodecMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return CodecMP3
	}
	return ""
}

// Open creates a decoder for the clip. The slice is read in place and must
// stay unchanged until the decoder is closed.
func Open(data []byte) (Decoder, error) {
	codec := Sniff(data)

	var (
		dec Decoder
		err error
	)
	switch codec {
	case CodecVorbis:
		dec, err = newVorbis(data)
	case CodecOpus:
		dec, err = newOpus(data)
	case CodecWAV:
		dec, err = newWAV(data)
	case CodecFLAC:
		dec, err = newFLAC(data)
	case CodecMP3:
		dec, err = newMP3(data)
	default:
		return nil, fmt.Errorf("%w: unrecognized content (%d bytes)", ErrFormat, len(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormat, codec, err)
	}
	return dec, nil
}
