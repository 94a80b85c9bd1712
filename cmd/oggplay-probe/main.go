// ABOUTME: Probe tool for audio clips
// ABOUTME: Prints the decoded format and length of clips without opening a device
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/oggplay/oggplay-go/internal/version"
	"github.com/oggplay/oggplay-go/pkg/audio/decode"
)

var (
	fullDecode = flag.Bool("decode", false, "Decode every block to count frames and find damaged data")
	blockSize  = flag.Int("block-frames", 4096, "Frames per block with -decode")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "%s\nUsage: %s [flags] <clip>...\n", version.String(), os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	log.SetFlags(0)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		if err := probe(path); err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func probe(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec, err := decode.Open(data)
	if err != nil {
		return err
	}
	defer dec.Close()

	format := dec.Format()
	length := "unknown"
	if l, ok := dec.(decode.Lengther); ok && l.Frames() >= 0 {
		length = fmt.Sprintf("%v (%d frames)", format.Duration(l.Frames()).Round(time.Millisecond), l.Frames())
	}
	fmt.Printf("%s: %s %dHz %dch %d-bit, %s\n",
		path, format.Codec, format.SampleRate, format.Channels, format.BitDepth, length)

	if !*fullDecode {
		return nil
	}

	start := time.Now()
	block := make([]int32, *blockSize*format.Channels)
	var frames int64
	for {
		n, err := dec.DecodeBlock(block)
		frames += int64(n)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Printf("  damaged after %d frames (%v): %v\n",
				frames, format.Duration(frames).Round(time.Millisecond), err)
			return nil
		}
	}
	fmt.Printf("  decoded %d frames (%v) in %v\n",
		frames, format.Duration(frames).Round(time.Millisecond), time.Since(start).Round(time.Millisecond))
	return nil
}
