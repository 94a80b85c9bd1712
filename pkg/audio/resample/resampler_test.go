// ABOUTME: Tests for the linear resampler
// ABOUTME: Checks output counts, interpolation and chunk continuity
package resample

import (
	"math"
	"testing"
)

func TestResampleSameRateAcrossChunks(t *testing.T) {
	r := New(48000, 48000, 1)

	var out []int32
	buf := make([]int32, r.MaxOutputSamples(4))
	for _, chunk := range [][]int32{{0, 1, 2, 3}, {4, 5, 6, 7}, {8, 9}} {
		n := r.Resample(chunk, buf)
		out = append(out, buf[:n]...)
	}

	// the final frame waits for a successor that never comes
	expected := []int32{0, 1, 2, 3, 4, 5, 6, 7, 8}
	if len(out) != len(expected) {
		t.Fatalf("expected %d samples, got %d: %v", len(expected), len(out), out)
	}
	for i := range expected {
		if out[i] != expected[i] {
			t.Errorf("sample %d: expected %d, got %d", i, expected[i], out[i])
		}
	}
}

func TestResampleUpsampleInterpolates(t *testing.T) {
	r := New(24000, 48000, 2)

	input := []int32{0, 0, 100, -100, 200, -200}
	output := make([]int32, r.MaxOutputSamples(len(input)))
	n := r.Resample(input, output)

	// frames at positions 0, 0.5, 1, 1.5
	expected := []int32{0, 0, 50, -50, 100, -100, 150, -150}
	if n != len(expected) {
		t.Fatalf("expected %d samples, got %d", len(expected), n)
	}
	for i := range expected {
		if output[i] != expected[i] {
			t.Errorf("sample %d: expected %d, got %d", i, expected[i], output[i])
		}
	}
}

func TestResampleRateConversionCount(t *testing.T) {
	tests := []struct {
		name   string
		in     int
		out    int
		frames int
	}{
		{"44.1k to 48k", 44100, 48000, 4410},
		{"48k to 44.1k", 48000, 44100, 4800},
		{"22.05k to 48k", 22050, 48000, 2200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.in, tt.out, 1)
			input := make([]int32, tt.frames/10)
			output := make([]int32, r.MaxOutputSamples(len(input)))

			total := 0
			for i := 0; i < 10; i++ {
				total += r.Resample(input, output)
			}

			expected := tt.frames * tt.out / tt.in
			if total < expected-2 || total > expected+2 {
				t.Errorf("expected about %d frames, got %d", expected, total)
			}
		})
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		in, out  int
		expected float64
	}{
		{48000, 48000, 1},
		{44100, 48000, 0.91875},
		{96000, 48000, 2},
	}
	for _, tt := range tests {
		if got := New(tt.in, tt.out, 2).Ratio(); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("%d -> %d: expected ratio %v, got %v", tt.in, tt.out, tt.expected, got)
		}
	}
}
