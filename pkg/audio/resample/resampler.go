// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Used to convert between different sample rates using linear interpolation
package resample

import "math"

// Resampler performs linear interpolation to convert between sample rates.
// It keeps the last input frame so consecutive chunks join without gaps.
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64 // next output position, in input frames relative to the chunk start
	lastSample []int32 // one sample per channel
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		position:   0.0,
		lastSample: make([]int32, channels),
	}
}

// Resample converts input samples to output sample rate using linear interpolation.
// input: interleaved samples at inputRate
// output: interleaved samples at outputRate, sized with MaxOutputSamples
// Returns the number of output samples written.
func (r *Resampler) Resample(input []int32, output []int32) int {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return 0
	}
	outputFrames := len(output) / r.channels

	// frame -1 is the last frame of the previous chunk
	sample := func(frame, ch int) int32 {
		if frame < 0 {
			return r.lastSample[ch]
		}
		return input[frame*r.channels+ch]
	}

	outIdx := 0
	for outIdx < outputFrames {
		inputIdx := int(math.Floor(r.position))

		// Need the following frame to interpolate
		if inputIdx+1 >= inputFrames {
			break
		}

		frac := r.position - float64(inputIdx)
		for ch := 0; ch < r.channels; ch++ {
			sample1 := sample(inputIdx, ch)
			sample2 := sample(inputIdx+1, ch)
			interpolated := float64(sample1)*(1.0-frac) + float64(sample2)*frac
			output[outIdx*r.channels+ch] = int32(interpolated)
		}

		outIdx++
		r.position += r.ratio
	}

	// Continue from the next chunk, which starts after this one's last frame
	r.position -= float64(inputFrames)
	copy(r.lastSample, input[(inputFrames-1)*r.channels:])

	return outIdx * r.channels
}

// Ratio returns input frames consumed per output frame
func (r *Resampler) Ratio() float64 {
	return r.ratio
}

// MaxOutputSamples returns an output size that always holds the result of
// resampling inputSamples in one call
func (r *Resampler) MaxOutputSamples(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(math.Ceil(float64(inputFrames+1)/r.ratio)) + 1
	return outputFrames * r.channels
}
