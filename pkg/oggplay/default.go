// ABOUTME: Process-wide default player
// ABOUTME: Package-level PlayFromMemory and EndPlay share one lazily created player
package oggplay

import "sync"

var (
	defaultOnce   sync.Once
	defaultPlayer *Player
)

// Default returns the process-wide player, creating it with the default
// configuration on first use.
func Default() *Player {
	defaultOnce.Do(func() {
		defaultPlayer = NewPlayer(Config{})
	})
	return defaultPlayer
}

// PlayFromMemory plays data on the default player. See Player.PlayFromMemory.
func PlayFromMemory(data []byte, async bool) error {
	return Default().PlayFromMemory(data, async)
}

// EndPlay stops the default player's session, if any, and waits for its
// resources to be released. It must be called after each asynchronous play.
func EndPlay() {
	Default().EndPlay()
}
