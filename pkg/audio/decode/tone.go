// ABOUTME: Sine tone decoder and slow decoder wrapper
// ABOUTME: Deterministic sources for examples, probes and tests
package decode

import (
	"io"
	"math"
	"time"

	"github.com/oggplay/oggplay-go/pkg/audio"
)

// ToneDecoder generates a sine wave of fixed length
type ToneDecoder struct {
	frequency   float64
	format      audio.Format
	sampleIndex int64
	total       int64
}

// NewTone creates a decoder producing a sine tone at half volume.
// Zero sample rate or channels fall back to 48kHz stereo.
func NewTone(frequency float64, sampleRate, channels int, duration time.Duration) *ToneDecoder {
	if sampleRate == 0 {
		sampleRate = 48000
	}
	if channels == 0 {
		channels = 2
	}
	format := audio.Format{
		Codec:      CodecTone,
		SampleRate: sampleRate,
		Channels:   channels,
		BitDepth:   24,
	}
	return &ToneDecoder{
		frequency: frequency,
		format:    format,
		total:     int64(format.FramesIn(duration)),
	}
}

func (d *ToneDecoder) Format() audio.Format { return d.format }

func (d *ToneDecoder) Frames() int64 { return d.total }

func (d *ToneDecoder) DecodeBlock(samples []int32) (int, error) {
	ch := d.format.Channels
	frames := int(min(int64(len(samples)/ch), d.total-d.sampleIndex))
	if frames <= 0 {
		return 0, io.EOF
	}

	for i := 0; i < frames; i++ {
		t := float64(d.sampleIndex+int64(i)) / float64(d.format.SampleRate)
		value := int32(math.Sin(2*math.Pi*d.frequency*t) * audio.Max24Bit * 0.5)
		for c := 0; c < ch; c++ {
			samples[i*ch+c] = value
		}
	}
	d.sampleIndex += int64(frames)
	return frames, nil
}

func (d *ToneDecoder) Close() error { return nil }

// SlowDecoder delays every block of the wrapped decoder
type SlowDecoder struct {
	Decoder
	delay time.Duration
}

// Slow wraps dec so that each DecodeBlock call takes at least delay.
func Slow(dec Decoder, delay time.Duration) *SlowDecoder {
	return &SlowDecoder{Decoder: dec, delay: delay}
}

func (d *SlowDecoder) DecodeBlock(samples []int32) (int, error) {
	time.Sleep(d.delay)
	return d.Decoder.DecodeBlock(samples)
}

// Frames forwards the wrapped decoder's length when it has one
func (d *SlowDecoder) Frames() int64 {
	if l, ok := d.Decoder.(Lengther); ok {
		return l.Frames()
	}
	return -1
}
