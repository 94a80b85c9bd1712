// ABOUTME: Bubbletea model for the player TUI
// ABOUTME: Shows clip format, progress, volume and buffer health
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oggplay/oggplay-go/pkg/oggplay"
)

var (
	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(56)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model represents the TUI state
type Model struct {
	clipName string
	state    string

	// Stream
	codec          string
	sampleRate     int
	channels       int
	bitDepth       int
	deviceRate     int
	deviceChannels int
	deviceBitDepth int

	// Playback
	duration time.Duration
	elapsed  time.Duration
	volume   int
	muted    bool
	lastErr  string

	// Stats
	underruns  uint64
	goroutines int
	memAlloc   uint64

	showDebug bool

	volumeCtrl *VolumeControl

	// Dimensions
	width  int
	height int
}

// StatusMsg updates TUI state
type StatusMsg struct {
	Status oggplay.Status

	// Runtime stats, zero when not collected
	Goroutines int
	MemAlloc   uint64
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderStreamInfo())
	b.WriteString(m.renderProgress())
	b.WriteString(m.renderControls())
	if m.showDebug {
		b.WriteString(m.renderDebug())
	}

	return boxStyle.Render(b.String()) + "\n" + m.renderHelp()
}

// renderHeader renders the clip name and session state
func (m Model) renderHeader() string {
	return fmt.Sprintf("%s  %s\n%s %s\n\n",
		titleStyle.Render("oggplay"), truncate(m.clipName, 40),
		labelStyle.Render("State:"), m.state)
}

// renderStreamInfo renders the clip and device formats
func (m Model) renderStreamInfo() string {
	if m.codec == "" {
		return "No clip\n"
	}

	s := fmt.Sprintf("%s %s %dHz %s %d-bit\n",
		labelStyle.Render("Clip:  "), m.codec, m.sampleRate, channelName(m.channels), m.bitDepth)
	if m.deviceRate != 0 {
		s += fmt.Sprintf("%s %dHz %s %d-bit\n",
			labelStyle.Render("Device:"), m.deviceRate, channelName(m.deviceChannels), m.deviceBitDepth)
	}
	return s
}

// renderProgress renders elapsed time against clip duration
func (m Model) renderProgress() string {
	if m.duration <= 0 {
		return fmt.Sprintf("\n%s %s\n", labelStyle.Render("Played:"), formatDuration(m.elapsed))
	}

	pos := min(m.elapsed, m.duration)
	bar := renderBar(int(pos/time.Millisecond), int(m.duration/time.Millisecond), 30)
	return fmt.Sprintf("\n[%s] %s / %s\n", bar, formatDuration(pos), formatDuration(m.duration))
}

// renderControls renders volume and buffer health
func (m Model) renderControls() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " (muted)"
	}

	underruns := fmt.Sprintf("%d", m.underruns)
	if m.underruns > 0 {
		underruns = warnStyle.Render(underruns)
	}

	s := fmt.Sprintf("%s [%s] %d%%%s\n%s %s\n",
		labelStyle.Render("Volume:"), renderBar(m.volume, 100, 10), m.volume, muteIcon,
		labelStyle.Render("Underruns:"), underruns)
	if m.lastErr != "" {
		s += errStyle.Render("Error: "+truncate(m.lastErr, 46)) + "\n"
	}
	return s
}

// renderDebug renders runtime statistics
func (m Model) renderDebug() string {
	return fmt.Sprintf("\n%s goroutines=%d alloc=%.1fMB\n",
		labelStyle.Render("DEBUG:"), m.goroutines, float64(m.memAlloc)/(1024*1024))
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return helpStyle.Render("↑/↓:Volume  m:Mute  d:Debug  q:Stop")
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.volumeCtrl != nil {
			select {
			case m.volumeCtrl.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "up":
		m.volume = min(m.volume+5, 100)
		m.sendVolume()
	case "down":
		m.volume = max(m.volume-5, 0)
		m.sendVolume()
	case "m":
		m.muted = !m.muted
		m.sendVolume()
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

// sendVolume forwards the current volume without blocking the UI
func (m Model) sendVolume() {
	if m.volumeCtrl == nil {
		return
	}
	select {
	case m.volumeCtrl.Changes <- VolumeChangeMsg{Volume: m.volume, Muted: m.muted}:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	st := msg.Status

	m.state = st.State.String()
	if st.Clip.Codec != "" {
		m.codec = st.Clip.Codec
		m.sampleRate = st.Clip.SampleRate
		m.channels = st.Clip.Channels
		m.bitDepth = st.Clip.BitDepth
	}
	if st.Device.SampleRate != 0 {
		m.deviceRate = st.Device.SampleRate
		m.deviceChannels = st.Device.Channels
		m.deviceBitDepth = st.Device.BitDepth
	}
	m.duration = st.Duration
	m.elapsed = st.Elapsed
	m.underruns = st.Underruns
	m.volume = st.Volume
	m.muted = st.Muted
	if st.LastError != nil {
		m.lastErr = st.LastError.Error()
	}

	if msg.Goroutines != 0 {
		m.goroutines = msg.Goroutines
		m.memAlloc = msg.MemAlloc
	}
}

// Utility functions
func renderBar(value, max, width int) string {
	if max <= 0 {
		return strings.Repeat("░", width)
	}
	filled := min((value*width)/max, width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return "Stereo"
}

func formatDuration(d time.Duration) string {
	d = d.Round(100 * time.Millisecond)
	minutes := int(d / time.Minute)
	seconds := (d % time.Minute).Seconds()
	return fmt.Sprintf("%d:%04.1f", minutes, seconds)
}
