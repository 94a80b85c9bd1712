// ABOUTME: Ring buffer package for decoded audio
// ABOUTME: Bounded byte queue between a decoding producer and a device consumer
// Package ring provides a fixed-capacity circular byte buffer with one
// producer and one consumer.
//
// The producer applies backpressure with WriteWait, which sleeps while the
// buffer is full and wakes when the consumer frees space or a short poll
// interval passes. The consumer never blocks: Read zero-fills whatever it
// cannot serve and counts an underrun.
//
// Example:
//
//	rb := ring.NewAligned(12000*4, 4) // 250ms of 48kHz 16-bit stereo
//	go func() {
//		rb.WriteWait(ctx, pcm, 10*time.Millisecond)
//		rb.CloseWrite()
//	}()
//	n := rb.Read(deviceBuf) // device callback
package ring
