// ABOUTME: High-level clip playback API
// ABOUTME: Provides PlayFromMemory and EndPlay over a single active session
// Package oggplay plays a complete compressed audio clip held in memory.
//
// This is the main entry point for most library users, providing:
//   - Player: one playback session at a time, synchronous or asynchronous
//   - PlayFromMemory / EndPlay: the same calls on a process-wide default player
//
// For lower-level control, see the audio, decode, output and playback packages.
//
// Only one clip plays at a time in the process, across all players: a
// PlayFromMemory while any clip is playing fails with ErrInvalidState.
// EndPlay stops the clip and returns only after the output device and the
// decoder have been released; it is a no-op when nothing is playing. Both
// may be called from OnStateChange, so a Stopped callback can start the
// next clip. Asynchronous playback copies the clip, so the caller may reuse
// its slice as soon as PlayFromMemory returns.
//
// Example:
//
//	clip, _ := os.ReadFile("chime.ogg")
//	if err := oggplay.PlayFromMemory(clip, true); err != nil {
//	    log.Fatal(err)
//	}
//	time.Sleep(time.Second)
//	oggplay.EndPlay()
//
// Example Player:
//
//	player := oggplay.NewPlayer(oggplay.Config{
//	    BufferMs: 250,
//	    Volume:   80,
//	    OnError:  func(err error) { log.Printf("playback: %v", err) },
//	})
//	err := player.PlayFromMemory(clip, false) // blocks until the clip ends
package oggplay
