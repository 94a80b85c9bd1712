// ABOUTME: Ogg Vorbis decoder adapter
// ABOUTME: Feeds Ogg packets to jfreymuth/vorbis and yields int32 PCM
package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jfreymuth/vorbis"
	"github.com/oggplay/oggplay-go/pkg/audio"
)

var errVorbisHeader = errors.New("vorbis: invalid identification header")

// newVorbis collects the three Vorbis header packets and prepares the
// stream for audio packets.
func newVorbis(data []byte) (*oggStream, error) {
	r := newOggReader(data)

	ident, err := r.nextPacket()
	if err != nil {
		return nil, err
	}
	// [0] type 0x01, [1:7] "vorbis", [7:11] version, [11] channels, [12:16] rate
	if len(ident) < 16 || !bytes.HasPrefix(ident, []byte("\x01vorbis")) {
		return nil, errVorbisHeader
	}
	if binary.LittleEndian.Uint32(ident[7:11]) != 0 {
		return nil, errVorbisHeader
	}
	channels := int(ident[11])
	rate := int(binary.LittleEndian.Uint32(ident[12:16]))
	if channels == 0 || rate == 0 {
		return nil, errVorbisHeader
	}

	dec := &vorbis.Decoder{}
	if err := dec.ReadHeader(ident); err != nil {
		return nil, fmt.Errorf("vorbis identification header: %w", err)
	}
	for i := 0; i < 2; i++ {
		hdr, err := r.nextPacket()
		if err != nil {
			return nil, fmt.Errorf("vorbis header %d: %w", i+2, err)
		}
		if err := dec.ReadHeader(hdr); err != nil {
			return nil, fmt.Errorf("vorbis header %d: %w", i+2, err)
		}
	}

	return &oggStream{
		ogg:    r,
		decode: dec.Decode,
		format: audio.Format{
			Codec:      CodecVorbis,
			SampleRate: rate,
			Channels:   channels,
			BitDepth:   24,
		},
		total:   lastGranule(data),
		release: dec.Clear,
	}, nil
}
