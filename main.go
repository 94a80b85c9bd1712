// ABOUTME: Entry point for the oggplay clip player
// ABOUTME: Loads configuration, parses CLI flags and plays one clip
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/oggplay/oggplay-go/internal/app"
	"github.com/oggplay/oggplay-go/internal/config"
	"github.com/oggplay/oggplay-go/internal/version"
)

var (
	outputName  = flag.String("output", "", "Audio output: oto, malgo, portaudio or null")
	bufferMs    = flag.Int("buffer-ms", 0, "Ring buffer size in milliseconds (100-500)")
	blockFrames = flag.Int("block-frames", 0, "Frames decoded per block")
	volume      = flag.Int("volume", -1, "Initial volume (0-100)")
	muted       = flag.Bool("mute", false, "Start muted")
	logFile     = flag.String("log-file", "", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	syncPlay    = flag.Bool("sync", false, "Play on the main goroutine instead of in the background")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <clip>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if cfg.TUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	player := app.New(app.Config{
		ClipPath:    flag.Arg(0),
		Output:      cfg.Output,
		BufferMs:    cfg.BufferMs,
		BlockFrames: cfg.BlockFrames,
		Volume:      cfg.Volume,
		Muted:       *muted,
		UseTUI:      cfg.TUI,
		Sync:        *syncPlay,
	})

	if err := player.Run(ctx); err != nil {
		log.Printf("Playback failed: %v", err)
		fmt.Fprintf(os.Stderr, "oggplay: %v\n", err)
		os.Exit(1)
	}

	log.Printf("Player stopped")
}

// applyFlags overrides configuration with explicitly set flags
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			cfg.Output = *outputName
		case "buffer-ms":
			cfg.BufferMs = *bufferMs
		case "block-frames":
			cfg.BlockFrames = *blockFrames
		case "volume":
			cfg.Volume = *volume
		case "log-file":
			cfg.LogFile = *logFile
		case "no-tui":
			cfg.TUI = !*noTUI
		}
	})
}
