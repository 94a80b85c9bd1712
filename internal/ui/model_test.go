// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, key handling and rendering helpers
package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oggplay/oggplay-go/pkg/audio"
	"github.com/oggplay/oggplay-go/pkg/oggplay"
)

func TestNewModel(t *testing.T) {
	model := NewModel("chime.ogg", nil) // VolumeControl is optional for testing

	if model.clipName != "chime.ogg" {
		t.Errorf("expected clip name chime.ogg, got %s", model.clipName)
	}
	if model.state != "idle" {
		t.Errorf("expected state idle, got %s", model.state)
	}
	if model.volume != 100 {
		t.Errorf("expected default volume 100, got %d", model.volume)
	}
	if model.muted {
		t.Error("expected muted to be false initially")
	}
}

func TestApplyStatus(t *testing.T) {
	model := NewModel("chime.ogg", nil)

	model.applyStatus(StatusMsg{Status: oggplay.Status{
		State:     oggplay.StatePlaying,
		Clip:      audio.Format{Codec: "vorbis", SampleRate: 44100, Channels: 1, BitDepth: 24},
		Device:    audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 16},
		Duration:  3 * time.Second,
		Elapsed:   time.Second,
		Underruns: 2,
		Volume:    60,
		Muted:     true,
	}})

	if model.state != "playing" {
		t.Errorf("expected state playing, got %s", model.state)
	}
	if model.codec != "vorbis" || model.sampleRate != 44100 || model.channels != 1 {
		t.Errorf("unexpected clip format: %s %d %d", model.codec, model.sampleRate, model.channels)
	}
	if model.deviceRate != 48000 || model.deviceChannels != 2 || model.deviceBitDepth != 16 {
		t.Errorf("unexpected device format: %d %d %d", model.deviceRate, model.deviceChannels, model.deviceBitDepth)
	}
	if model.elapsed != time.Second || model.duration != 3*time.Second {
		t.Errorf("unexpected progress: %v / %v", model.elapsed, model.duration)
	}
	if model.underruns != 2 {
		t.Errorf("expected 2 underruns, got %d", model.underruns)
	}
	if model.volume != 60 || !model.muted {
		t.Errorf("expected volume 60 muted, got %d %v", model.volume, model.muted)
	}
}

func TestApplyStatusKeepsFormatAndError(t *testing.T) {
	model := NewModel("chime.ogg", nil)
	model.applyStatus(StatusMsg{Status: oggplay.Status{
		State:     oggplay.StatePlaying,
		Clip:      audio.Format{Codec: "opus", SampleRate: 48000, Channels: 2, BitDepth: 24},
		LastError: errors.New("device lost"),
	}})

	// a later status without format or error keeps both
	model.applyStatus(StatusMsg{Status: oggplay.Status{State: oggplay.StateStopped}})

	if model.codec != "opus" {
		t.Errorf("expected codec to be kept, got %q", model.codec)
	}
	if model.lastErr != "device lost" {
		t.Errorf("expected error to be kept, got %q", model.lastErr)
	}
	if model.state != "stopped" {
		t.Errorf("expected state stopped, got %s", model.state)
	}
}

func TestApplyRuntimeStats(t *testing.T) {
	model := NewModel("", nil)
	model.applyStatus(StatusMsg{Goroutines: 12, MemAlloc: 2 << 20})

	if model.goroutines != 12 {
		t.Errorf("expected 12 goroutines, got %d", model.goroutines)
	}
	if model.memAlloc != 2<<20 {
		t.Errorf("expected memAlloc 2MB, got %d", model.memAlloc)
	}
}

func TestHandleKeyVolume(t *testing.T) {
	ctrl := NewVolumeControl()
	var model tea.Model = NewModel("", ctrl)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})

	first := <-ctrl.Changes
	if first.Volume != 95 || first.Muted {
		t.Errorf("expected 95 unmuted, got %+v", first)
	}
	second := <-ctrl.Changes
	if second.Volume != 95 || !second.Muted {
		t.Errorf("expected 95 muted, got %+v", second)
	}

	// volume is capped at 100
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyUp})
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyUp})
	if v := model.(Model).volume; v != 100 {
		t.Errorf("expected volume capped at 100, got %d", v)
	}
}

func TestHandleKeyQuit(t *testing.T) {
	ctrl := NewVolumeControl()
	model := NewModel("", ctrl)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	select {
	case <-ctrl.Quit:
	default:
		t.Error("expected quit to be signalled")
	}

	// a second quit does not block
	model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
}

func TestViewRendersStatus(t *testing.T) {
	model := NewModel("chime.ogg", nil)
	if model.View() != "Loading..." {
		t.Error("expected loading view before the window size is known")
	}

	model.width = 80
	model.applyStatus(StatusMsg{Status: oggplay.Status{
		State:    oggplay.StatePlaying,
		Clip:     audio.Format{Codec: "vorbis", SampleRate: 44100, Channels: 2, BitDepth: 24},
		Duration: 2 * time.Second,
		Elapsed:  time.Second,
		Volume:   80,
	}})

	view := model.View()
	for _, want := range []string{"chime.ogg", "playing", "vorbis", "44100Hz", "0:01.0 / 0:02.0", "80%"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value, max, width int
		expected          string
	}{
		{0, 100, 4, "░░░░"},
		{50, 100, 4, "██░░"},
		{100, 100, 4, "████"},
		{150, 100, 4, "████"},
		{1, 0, 2, "░░"},
	}

	for _, tt := range tests {
		if got := renderBar(tt.value, tt.max, tt.width); got != tt.expected {
			t.Errorf("renderBar(%d, %d, %d) = %q, want %q", tt.value, tt.max, tt.width, got, tt.expected)
		}
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		length   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a long clip name", 10, "this is..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.length); got != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.expected)
		}
	}
}

func TestChannelNameFunction(t *testing.T) {
	if channelName(1) != "Mono" {
		t.Error("expected Mono for 1 channel")
	}
	if channelName(2) != "Stereo" {
		t.Error("expected Stereo for 2 channels")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{0, "0:00.0"},
		{1500 * time.Millisecond, "0:01.5"},
		{75 * time.Second, "1:15.0"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.expected {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.expected)
		}
	}
}
