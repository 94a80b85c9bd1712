// ABOUTME: Playback engine package
// ABOUTME: Owns one output device session fed from a ring buffer
// Package playback drives an output device for a single clip.
//
// The engine opens the device at the clip's format and adapts to whatever
// format the device answers with: channel remix between mono and stereo,
// linear resampling, software volume and 16/24-bit encoding. Converted
// bytes go through a ring buffer that the device pulls from on its own
// thread. The pull source returns silence on underrun and io.EOF once the
// stream is drained or the engine is stopped.
//
// Example:
//
//	eng := playback.New(output.NewOto(), playback.Config{BufferMs: 250})
//	devFormat, err := eng.Start(clipFormat)
//	err = eng.Play()
//	for each block {
//		err = eng.Submit(ctx, block)
//	}
//	eng.Finish()
//	<-eng.Done()
//	eng.Stop()
package playback
