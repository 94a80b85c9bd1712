// ABOUTME: Main player application orchestration
// ABOUTME: Coordinates the clip player, the TUI and shutdown signals
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oggplay/oggplay-go/internal/ui"
	"github.com/oggplay/oggplay-go/pkg/audio/output"
	"github.com/oggplay/oggplay-go/pkg/oggplay"
)

// Config holds player application configuration
type Config struct {
	ClipPath    string
	Output      string
	BufferMs    int
	BlockFrames int
	Volume      int
	Muted       bool
	UseTUI      bool

	// Sync plays on the calling goroutine instead of in the background
	Sync bool
}

// Player represents the player application
type Player struct {
	config     Config
	player     *oggplay.Player
	tuiProg    *tea.Program
	volumeCtrl *ui.VolumeControl
	stopped    chan struct{}
	lastErr    chan error
}

// New creates a new player application
func New(config Config) *Player {
	p := &Player{
		config:  config,
		stopped: make(chan struct{}, 1),
		lastErr: make(chan error, 1),
	}

	p.player = oggplay.NewPlayer(oggplay.Config{
		Output:        func() (output.Output, error) { return output.New(config.Output) },
		BufferMs:      config.BufferMs,
		BlockFrames:   config.BlockFrames,
		Volume:        config.Volume,
		Muted:         config.Muted,
		OnStateChange: p.handleStateChange,
		OnError:       p.handleError,
	})
	// the library reads a zero Volume as unset; here it means silent
	p.player.SetVolume(config.Volume)
	return p
}

// Run plays the configured clip until it ends, the user quits or ctx is
// cancelled. It returns startup errors and device loss.
func (p *Player) Run(ctx context.Context) error {
	clip, err := os.ReadFile(p.config.ClipPath)
	if err != nil {
		return fmt.Errorf("failed to read clip: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if p.config.UseTUI {
		p.volumeCtrl = ui.NewVolumeControl()
		p.tuiProg, err = ui.Run(filepath.Base(p.config.ClipPath), p.volumeCtrl)
		if err != nil {
			return fmt.Errorf("failed to start TUI: %w", err)
		}
		go func() {
			if _, err := p.tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
		defer p.tuiProg.Quit()

		go p.handleVolumeControl(ctx)
		go p.statsUpdateLoop(ctx)
	}

	log.Printf("Playing %s (%d bytes, sync=%v)", p.config.ClipPath, len(clip), p.config.Sync)

	if p.config.Sync {
		return p.runSync(ctx, clip)
	}

	if err := p.player.PlayFromMemory(clip, true); err != nil {
		return err
	}

	select {
	case <-p.stopped:
		log.Printf("Clip finished")
	case <-p.quit():
		log.Printf("Received quit signal from TUI")
	case <-ctx.Done():
		log.Printf("Shutdown signal received")
	}
	p.player.EndPlay()

	select {
	case err := <-p.lastErr:
		return err
	default:
		return nil
	}
}

// runSync blocks in PlayFromMemory while a watcher ends playback on quit
func (p *Player) runSync(ctx context.Context, clip []byte) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-p.quit():
			log.Printf("Received quit signal from TUI")
		case <-ctx.Done():
			log.Printf("Shutdown signal received")
		case <-done:
			return
		}
		p.player.EndPlay()
	}()

	return p.player.PlayFromMemory(clip, false)
}

// quit returns the TUI quit channel, or nil without a TUI
func (p *Player) quit() <-chan ui.QuitMsg {
	if p.volumeCtrl == nil {
		return nil
	}
	return p.volumeCtrl.Quit
}

// Status returns the current playback status
func (p *Player) Status() oggplay.Status {
	return p.player.Status()
}

// handleStateChange logs the state and forwards it to the TUI
func (p *Player) handleStateChange(status oggplay.Status) {
	log.Printf("State: %s (session %s)", status.State, status.SessionID)

	if p.tuiProg != nil {
		p.tuiProg.Send(ui.StatusMsg{Status: status})
	}
	if status.State == oggplay.StateStopped {
		select {
		case p.stopped <- struct{}{}:
		default:
		}
	}
}

// handleError keeps the first asynchronous playback error
func (p *Player) handleError(err error) {
	log.Printf("Player error: %v", err)
	select {
	case p.lastErr <- err:
	default:
	}
}

// handleVolumeControl processes volume changes from TUI
func (p *Player) handleVolumeControl(ctx context.Context) {
	for {
		select {
		case vol := <-p.volumeCtrl.Changes:
			log.Printf("Volume change: %d%%, muted=%v", vol.Volume, vol.Muted)
			p.player.SetVolume(vol.Volume)
			p.player.Mute(vol.Muted)
		case <-ctx.Done():
			return
		}
	}
}

// statsUpdateLoop periodically updates TUI with playback progress
func (p *Player) statsUpdateLoop(ctx context.Context) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	// Use a slower ticker for expensive runtime stats to avoid GC pauses
	runtimeStatsTicker := time.NewTicker(2 * time.Second)
	defer runtimeStatsTicker.Stop()

	var lastGoroutines int
	var lastMemAlloc uint64

	for {
		select {
		case <-runtimeStatsTicker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			lastGoroutines = runtime.NumGoroutine()
			lastMemAlloc = m.Alloc

		case <-ticker.C:
			p.tuiProg.Send(ui.StatusMsg{
				Status:     p.player.Status(),
				Goroutines: lastGoroutines,
				MemAlloc:   lastMemAlloc,
			})

		case <-ctx.Done():
			return
		}
	}
}
