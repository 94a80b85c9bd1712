// ABOUTME: Audio decoder package for in-memory clips
// ABOUTME: Provides the Decoder interface and adapters for Vorbis, Opus, MP3, WAV, FLAC
// Package decode turns a complete compressed clip held in memory into
// blocks of PCM samples.
//
// Supports: Ogg Vorbis, Ogg Opus, MP3, WAV (16/24-bit), FLAC
//
// Open sniffs the content and picks the matching adapter. Every adapter
// implements Decoder and writes int32 samples in 24-bit range, interleaved
// by channel. DecodeBlock is resumable and returns io.EOF at the end of the
// stream.
//
// Example:
//
//	dec, err := decode.Open(clip)
//	if err != nil {
//		return err // wraps decode.ErrFormat
//	}
//	defer dec.Close()
//
//	block := make([]int32, 1024*dec.Format().Channels)
//	for {
//		frames, err := dec.DecodeBlock(block)
//		// use block[:frames*channels]
//		if err != nil {
//			break
//		}
//	}
package decode
