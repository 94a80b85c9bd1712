// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides fundamental audio types shared by the decoder,
// ring buffer, playback engine and session controller.
//
// This package defines:
//   - Format: Describes a PCM stream (codec, sample rate, channels, bit depth)
//   - Buffer: A block of decoded PCM frames (the unit passed from decoder to engine)
//
// Decoded samples are carried as interleaved int32 values in 24-bit range so
// that 16-bit and 24-bit sources share one pipeline. Conversion helpers:
//   - 16-bit ↔ 24-bit conversions
//   - float32 → 24-bit conversion with clipping
//   - int32 ↔ packed byte conversions
//   - frame/duration arithmetic
//
// Example:
//
//	format := audio.Format{
//	    Codec:      "vorbis",
//	    SampleRate: 44100,
//	    Channels:   2,
//	    BitDepth:   16,
//	}
//
//	frames := format.FramesIn(250 * time.Millisecond)
//	sample24 := audio.SampleFromFloat32(0.5)
package audio
