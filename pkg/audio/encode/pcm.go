// ABOUTME: PCM audio encoder
// ABOUTME: Encodes int32 samples to 16-bit or 24-bit PCM bytes
package encode

import (
	"encoding/binary"
	"fmt"

	"github.com/oggplay/oggplay-go/pkg/audio"
)

// PCMEncoder encodes PCM audio
type PCMEncoder struct {
	bitDepth int
}

// NewPCM creates a new PCM encoder for the given device bit depth
func NewPCM(bitDepth int) (*PCMEncoder, error) {
	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", bitDepth)
	}

	return &PCMEncoder{
		bitDepth: bitDepth,
	}, nil
}

// BytesPerSample returns the encoded size of one sample
func (e *PCMEncoder) BytesPerSample() int {
	return e.bitDepth / 8
}

// AppendEncode appends the encoded samples to dst and returns the extended slice
func (e *PCMEncoder) AppendEncode(dst []byte, samples []int32) []byte {
	if e.bitDepth == 24 {
		// 24-bit PCM: 3 bytes per sample
		for _, sample := range samples {
			b := audio.SampleTo24Bit(sample)
			dst = append(dst, b[0], b[1], b[2])
		}
		return dst
	}

	// 16-bit PCM: 2 bytes per sample
	for _, sample := range samples {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(audio.SampleToInt16(sample)))
	}
	return dst
}

// Encode converts int32 samples to newly allocated PCM bytes
func (e *PCMEncoder) Encode(samples []int32) []byte {
	return e.AppendEncode(make([]byte, 0, len(samples)*e.BytesPerSample()), samples)
}
