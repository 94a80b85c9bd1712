// ABOUTME: Ogg Opus decoder adapter
// ABOUTME: Decodes Ogg Opus packets at 48kHz with hraban/opus
package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/oggplay/oggplay-go/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

const (
	opusSampleRate = 48000
	// 120ms at 48kHz, the longest Opus packet
	opusMaxFrame = 5760
)

var errOpusHead = errors.New("opus: invalid OpusHead packet")

// newOpus parses OpusHead, skips OpusTags and prepares the decoder.
// Only mono and stereo streams (mapping family 0) are supported.
func newOpus(data []byte) (*oggStream, error) {
	r := newOggReader(data)

	head, err := r.nextPacket()
	if err != nil {
		return nil, err
	}
	// [0:8] "OpusHead", [8] version, [9] channels, [10:12] pre-skip, [18] mapping
	if len(head) < 19 || !bytes.HasPrefix(head, []byte("OpusHead")) {
		return nil, errOpusHead
	}
	if head[8]&0xF0 != 0 {
		return nil, fmt.Errorf("opus: unsupported version %d", head[8])
	}
	channels := int(head[9])
	if channels < 1 || channels > 2 || head[18] != 0 {
		return nil, fmt.Errorf("opus: unsupported channel layout (%d channels, family %d)", channels, head[18])
	}
	preSkip := int64(binary.LittleEndian.Uint16(head[10:12]))

	tags, err := r.nextPacket()
	if err != nil {
		return nil, fmt.Errorf("opus tags: %w", err)
	}
	if !bytes.HasPrefix(tags, []byte("OpusTags")) {
		return nil, errors.New("opus: missing OpusTags packet")
	}

	dec, err := opus.NewDecoder(opusSampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("failed to create opus decoder: %w", err)
	}

	pcm := make([]float32, opusMaxFrame*channels)
	total := lastGranule(data)
	if total >= 0 {
		total = max(total-preSkip, 0)
	}

	return &oggStream{
		ogg: r,
		decode: func(packet []byte) ([]float32, error) {
			n, err := dec.DecodeFloat32(packet, pcm)
			if err != nil {
				return nil, err
			}
			return pcm[:n*channels], nil
		},
		format: audio.Format{
			Codec:      CodecOpus,
			SampleRate: opusSampleRate,
			Channels:   channels,
			BitDepth:   16,
		},
		skip:  preSkip,
		total: total,
	}, nil
}
