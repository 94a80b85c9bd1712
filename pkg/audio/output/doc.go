// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides the pull-based Output interface and oto, malgo, PortAudio and null devices
// Package output provides audio playback devices.
//
// A device is opened at a requested format and answers with the format it
// will actually consume. Playback is pull-based: the device reads encoded
// PCM bytes from an io.Reader on its own I/O thread until the reader
// returns io.EOF, then closes Done once the tail has been played.
//
// Supports: oto (default), malgo/miniaudio, PortAudio (build tag
// "portaudio") and a null device paced at real time.
//
// Example:
//
//	out, err := output.New("oto")
//	devFormat, err := out.Open(clipFormat)
//	err = out.Play(src)
//	<-out.Done()
//	out.Close()
package output
