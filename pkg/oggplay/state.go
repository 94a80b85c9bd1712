// ABOUTME: Session state and status types
// ABOUTME: Describes the lifecycle Idle -> Playing -> Stopping -> Stopped
package oggplay

import (
	"time"

	"github.com/oggplay/oggplay-go/pkg/audio"
)

// State is the lifecycle state of a playback session
//
//	Idle ──PlayFromMemory──▶ Playing ──clip ends──────────▶ Stopped
//	                            │                           ▲
//	                            └──EndPlay──▶ Stopping ─────┘
type State int

const (
	StateIdle State = iota
	StatePlaying
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Status describes the current or most recent session
type Status struct {
	State     State
	SessionID string
	Async     bool
	Clip      audio.Format
	Device    audio.Format
	Duration  time.Duration // zero when the clip length is unknown
	Elapsed   time.Duration // audio played so far
	Underruns uint64
	Volume    int
	Muted     bool
	LastError error
}
