// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program and its channels back to the app
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// VolumeChangeMsg is sent when the user changes volume or mute
type VolumeChangeMsg struct {
	Volume int
	Muted  bool
}

// QuitMsg is sent when the user asks to stop playback
type QuitMsg struct{}

// VolumeControl holds channels for volume control communication
type VolumeControl struct {
	Changes chan VolumeChangeMsg
	Quit    chan QuitMsg
}

// NewVolumeControl creates a new volume control handler
func NewVolumeControl() *VolumeControl {
	return &VolumeControl{
		Changes: make(chan VolumeChangeMsg, 10),
		Quit:    make(chan QuitMsg, 1),
	}
}

// NewModel creates a new TUI model for the named clip
func NewModel(clipName string, volCtrl *VolumeControl) Model {
	return Model{
		clipName:   clipName,
		state:      "idle",
		volume:     100,
		volumeCtrl: volCtrl,
	}
}

// Run creates the TUI program; the caller runs it
func Run(clipName string, volCtrl *VolumeControl) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(clipName, volCtrl), tea.WithAltScreen())
	return p, nil
}
