// ABOUTME: Tests for the packet-driven Ogg decoder and the Vorbis adapter
// ABOUTME: Drives oggStream with a scripted codec and decodes a real Vorbis clip
package decode

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/oggplay/oggplay-go/pkg/audio"
)

// scriptedPacket yields n stereo frames, or fails when n is zero
func scriptedPacket(n byte) []byte { return []byte{n} }

// scriptedCodec numbers every frame it produces so tests can tell which
// ones survived trimming
func scriptedCodec() func([]byte) ([]float32, error) {
	next := 0
	return func(pkt []byte) ([]float32, error) {
		if len(pkt) != 1 || pkt[0] == 0 {
			return nil, errors.New("undecodable packet")
		}
		pcm := make([]float32, int(pkt[0])*2)
		for i := 0; i < len(pcm); i += 2 {
			v := float32(next%1000) / 1000
			pcm[i], pcm[i+1] = v, -v
			next++
		}
		return pcm, nil
	}
}

func scriptedStream(skip, total int64, packets ...[]byte) *oggStream {
	var buf bytes.Buffer
	writeOggPage(&buf, oggBOS|oggEOS, total, 3, 0, packets...)
	return &oggStream{
		ogg:    newOggReader(buf.Bytes()),
		decode: scriptedCodec(),
		format: audio.Format{Codec: "test", SampleRate: 48000, Channels: 2, BitDepth: 24},
		skip:   skip,
		total:  total,
	}
}

// decodeAll reads blocks until the stream ends and returns every sample
func decodeAll(s *oggStream, blockFrames int) ([]int32, error) {
	var out []int32
	block := make([]int32, blockFrames*2)
	for {
		n, err := s.DecodeBlock(block)
		out = append(out, block[:n*2]...)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

func TestOggStreamDecode(t *testing.T) {
	good := scriptedPacket(100)
	bad := scriptedPacket(0)

	tests := []struct {
		name       string
		skip       int64
		total      int64
		packets    [][]byte
		wantFrames int
		firstFrame int
		corrupt    bool
	}{
		{
			name:       "clean stream",
			total:      -1,
			packets:    [][]byte{good, good, good},
			wantFrames: 300,
		},
		{
			name:       "tolerated run of bad packets",
			total:      -1,
			packets:    [][]byte{good, bad, bad, bad, bad, good},
			wantFrames: 200,
		},
		{
			name:       "too many bad packets",
			total:      -1,
			packets:    [][]byte{good, bad, bad, bad, bad, bad, good},
			wantFrames: 100,
			corrupt:    true,
		},
		{
			name:       "pre-skip spans packets",
			skip:       150,
			total:      -1,
			packets:    [][]byte{good, good, good},
			wantFrames: 150,
			firstFrame: 150,
		},
		{
			name:       "final granule cuts a packet",
			total:      250,
			packets:    [][]byte{good, good, good},
			wantFrames: 250,
		},
		{
			name:       "pre-skip and final granule",
			skip:       80,
			total:      100,
			packets:    [][]byte{good, good},
			wantFrames: 100,
			firstFrame: 80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := scriptedStream(tt.skip, tt.total, tt.packets...)
			samples, err := decodeAll(s, 64)

			if tt.corrupt {
				if !errors.Is(err, ErrCorrupt) {
					t.Fatalf("expected ErrCorrupt, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := len(samples) / 2; got != tt.wantFrames {
				t.Errorf("expected %d frames, got %d", tt.wantFrames, got)
			}
			want := audio.SampleFromFloat32(float32(tt.firstFrame) / 1000)
			if len(samples) > 0 && samples[0] != want {
				t.Errorf("first sample: expected frame %d (%d), got %d", tt.firstFrame, want, samples[0])
			}
		})
	}
}

func TestOggStreamEndAfterPartialBlock(t *testing.T) {
	s := scriptedStream(0, -1, scriptedPacket(100), scriptedPacket(100))
	block := make([]int32, 1024*2)

	n, err := s.DecodeBlock(block)
	if err != nil || n != 200 {
		t.Fatalf("expected 200 frames and no error, got %d, %v", n, err)
	}
	n, err = s.DecodeBlock(block)
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Fatalf("expected 0, io.EOF, got %d, %v", n, err)
	}
}

func TestOggStreamClose(t *testing.T) {
	s := scriptedStream(0, -1, scriptedPacket(10))
	released := 0
	s.release = func() { released++ }

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if released != 1 {
		t.Errorf("expected codec released once, got %d", released)
	}
	if _, err := s.DecodeBlock(make([]int32, 2)); err == nil {
		t.Error("expected an error decoding after close")
	}
}

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestVorbisClip(t *testing.T) {
	dec, err := Open(readTestdata(t, "clip.ogg"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dec.Close()

	f := dec.Format()
	if f.Codec != CodecVorbis || f.SampleRate != 44100 || f.Channels != 1 {
		t.Fatalf("unexpected format %v", f)
	}
	l, ok := dec.(Lengther)
	if !ok || l.Frames() != 44100 {
		t.Fatalf("expected a length of 44100 frames")
	}

	var samples []int32
	block := make([]int32, 1024)
	for {
		n, err := dec.DecodeBlock(block)
		samples = append(samples, block[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	if len(samples) != 44100 {
		t.Fatalf("expected 44100 frames, got %d", len(samples))
	}

	// reference output of the encoder for frames 1000-1003
	reference := []float32{0.73016357421875, 0.679779052734375, 0.611968994140625, 0.528564453125}
	for i, r := range reference {
		want := audio.SampleFromFloat32(r)
		got := samples[1000+i]
		if diff := got - want; diff > 200 || diff < -200 {
			t.Errorf("frame %d: expected %d, got %d", 1000+i, want, got)
		}
	}
}

func TestVorbisClipTruncated(t *testing.T) {
	dec, err := Open(readTestdata(t, "clip_truncated.ogg"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dec.Close()

	if l := dec.(Lengther); l.Frames() != -1 {
		t.Errorf("expected unknown length without an end page, got %d", l.Frames())
	}

	var frames int
	block := make([]int32, 1024)
	for {
		n, err := dec.DecodeBlock(block)
		frames += n
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrCorrupt) {
			t.Fatalf("expected ErrCorrupt at the cut, got %v", err)
		}
		break
	}

	// the cut falls near the middle of the clip
	if frames < 44100/5 || frames > 44100*4/5 {
		t.Errorf("expected roughly half the clip before the cut, got %d frames", frames)
	}
}
