// ABOUTME: Tests for content sniffing and the WAV, tone and PCM paths
// ABOUTME: Builds WAV clips in memory and decodes them block by block
package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/oggplay/oggplay-go/pkg/audio"
)

// makeWAV builds a PCM WAV clip from int16 samples
func makeWAV(sampleRate, channels int, samples []int16) []byte {
	var buf bytes.Buffer
	dataSize := len(samples) * 2

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}

func vorbisIdentPage(version uint32) []byte {
	ident := make([]byte, 30)
	copy(ident, "\x01vorbis")
	binary.LittleEndian.PutUint32(ident[7:11], version)
	ident[11] = 2
	binary.LittleEndian.PutUint32(ident[12:16], 44100)

	var buf bytes.Buffer
	writeOggPage(&buf, oggBOS, 0, 1, 0, ident)
	return buf.Bytes()
}

func opusHeadPage(channels, family byte) []byte {
	head := make([]byte, 19)
	copy(head, "OpusHead")
	head[8] = 1
	head[9] = channels
	binary.LittleEndian.PutUint16(head[10:12], 312)
	binary.LittleEndian.PutUint32(head[12:16], 48000)
	head[18] = family

	var buf bytes.Buffer
	writeOggPage(&buf, oggBOS, 0, 1, 0, head)
	writeOggPage(&buf, 0, 0, 1, 1, []byte("OpusTags"))
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"vorbis", vorbisIdentPage(0), CodecVorbis},
		{"opus", opusHeadPage(2, 0), CodecOpus},
		{"wav", makeWAV(8000, 1, []int16{0}), CodecWAV},
		{"flac", []byte("fLaC\x00\x00\x00\x22"), CodecFLAC},
		{"mp3 id3", []byte("ID3\x04\x00\x00"), CodecMP3},
		{"mp3 frame sync", []byte{0xFF, 0xFB, 0x90, 0x64}, CodecMP3},
		{"unknown ogg", append([]byte("OggS"), make([]byte, 40)...), ""},
		{"garbage", []byte("hello world"), ""},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.data); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestOpenRejectsInvalidClips(t *testing.T) {
	wav8 := makeWAV(8000, 1, []int16{0, 0})
	binary.LittleEndian.PutUint16(wav8[34:36], 8) // bits per sample

	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte("definitely not audio")},
		{"empty", nil},
		{"vorbis bad version", vorbisIdentPage(1)},
		{"opus surround", opusHeadPage(6, 1)},
		{"wav 8-bit", wav8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := Open(tt.data)
			if !errors.Is(err, ErrFormat) {
				t.Errorf("expected ErrFormat, got %v", err)
			}
			if dec != nil {
				t.Error("expected no decoder")
			}
		})
	}
}

func TestWAVDecodeBlocks(t *testing.T) {
	samples := make([]int16, 2*1000)
	for i := range samples {
		samples[i] = int16(i)
	}

	dec, err := Open(makeWAV(22050, 2, samples))
	if err != nil {
		t.Fatalf("failed to open wav: %v", err)
	}
	defer dec.Close()

	format := dec.Format()
	if format.Codec != CodecWAV || format.SampleRate != 22050 || format.Channels != 2 || format.BitDepth != 16 {
		t.Errorf("unexpected format: %v", format)
	}

	var decoded []int32
	block := make([]int32, 2*256)
	for {
		frames, err := dec.DecodeBlock(block)
		decoded = append(decoded, block[:frames*2]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
	}

	if len(decoded) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(decoded))
	}
	for i, s := range samples {
		if decoded[i] != audio.SampleFromInt16(s) {
			t.Fatalf("sample %d: expected %d, got %d", i, audio.SampleFromInt16(s), decoded[i])
		}
	}
}

func TestToneDecoder(t *testing.T) {
	dec := NewTone(440, 8000, 1, 100*time.Millisecond)

	if dec.Frames() != 800 {
		t.Errorf("expected 800 frames, got %d", dec.Frames())
	}

	block := make([]int32, 300)
	total := 0
	for {
		frames, err := dec.DecodeBlock(block)
		total += frames
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, s := range block[:frames] {
			if s > audio.Max24Bit/2+1 || s < -audio.Max24Bit/2-1 {
				t.Fatalf("sample %d exceeds half scale", s)
			}
		}
	}

	if total != 800 {
		t.Errorf("expected 800 frames total, got %d", total)
	}
}

func TestSlowDecoder(t *testing.T) {
	dec := Slow(NewTone(440, 8000, 2, time.Second), 20*time.Millisecond)

	start := time.Now()
	if _, err := dec.DecodeBlock(make([]int32, 64)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("expected at least 20ms, took %v", elapsed)
	}
	if dec.Frames() != 8000 {
		t.Errorf("expected wrapped length 8000, got %d", dec.Frames())
	}
}

func TestPCMToSamples(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		bitDepth int
		expected []int32
	}{
		{"16-bit", []byte{0x00, 0x01, 0x02, 0x03}, 16, []int32{256 << 8, 770 << 8}},
		{"24-bit", []byte{0x56, 0x34, 0x12, 0x00, 0xFF, 0xFF}, 24, []int32{0x123456, -256}},
		{"partial sample ignored", []byte{0x00, 0x01, 0x02}, 16, []int32{256 << 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]int32, 8)
			n := pcmToSamples(dst, tt.input, tt.bitDepth)
			if n != len(tt.expected) {
				t.Fatalf("expected %d samples, got %d", len(tt.expected), n)
			}
			for i, want := range tt.expected {
				if dst[i] != want {
					t.Errorf("sample %d: expected %d, got %d", i, want, dst[i])
				}
			}
		})
	}
}
