// ABOUTME: Audio encoder package for device sample formats
// ABOUTME: Packs int32 samples into 16-bit or 24-bit little-endian PCM
// Package encode converts int32 samples in 24-bit range into the byte
// layout an output device consumes.
//
// Supports: PCM 16-bit and 24-bit, little-endian, interleaved
//
// Example:
//
//	enc, err := encode.NewPCM(16)
//	buf = enc.AppendEncode(buf[:0], samples)
package encode
