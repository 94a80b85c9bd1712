// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats, decoded blocks and sample conversions
package audio

import (
	"fmt"
	"time"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// Format describes a PCM stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// Valid reports whether the format can be played
func (f Format) Valid() bool {
	return f.SampleRate > 0 && f.Channels > 0 && f.BitDepth > 0
}

// BytesPerFrame returns the size of one interleaved frame at the format's bit depth
func (f Format) BytesPerFrame() int {
	return f.Channels * ((f.BitDepth + 7) / 8)
}

// Duration returns the playback time of the given number of frames
func (f Format) Duration(frames int64) time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

// FramesIn returns how many frames fit in the given duration
func (f Format) FramesIn(d time.Duration) int {
	return int(int64(d) * int64(f.SampleRate) / int64(time.Second))
}

func (f Format) String() string {
	return fmt.Sprintf("%s %dHz %dch %d-bit", f.Codec, f.SampleRate, f.Channels, f.BitDepth)
}

// Buffer is a block of decoded PCM audio
type Buffer struct {
	Samples []int32 // Interleaved samples in 24-bit range
	Format  Format
}

// Frames returns the number of complete frames in the buffer
func (b Buffer) Frames() int {
	if b.Format.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Format.Channels
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit range to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// SampleFromFloat32 converts a [-1, 1] float sample to 24-bit range, clipping overshoot
func SampleFromFloat32(sample float32) int32 {
	if sample >= 1 {
		return Max24Bit
	}
	if sample <= -1 {
		return Min24Bit
	}
	return int32(sample * Max24Bit)
}

// SampleFromBits scales a signed sample of the given bit depth to 24-bit range
func SampleFromBits(sample int32, bitDepth int) int32 {
	switch {
	case bitDepth == 24:
		return sample
	case bitDepth < 24:
		return sample << (24 - bitDepth)
	default:
		return sample >> (bitDepth - 24)
	}
}

// ClampTo24Bit clamps a wide intermediate value to 24-bit range
func ClampTo24Bit(v int64) int32 {
	if v > Max24Bit {
		return Max24Bit
	}
	if v < Min24Bit {
		return Min24Bit
	}
	return int32(v)
}

// SampleTo24Bit converts int32 to 24-bit packed bytes (little-endian)
func SampleTo24Bit(sample int32) [3]byte {
	return [3]byte{
		byte(sample),
		byte(sample >> 8),
		byte(sample >> 16),
	}
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}
