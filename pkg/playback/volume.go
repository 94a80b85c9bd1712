// ABOUTME: Software volume for the playback engine
// ABOUTME: Scales samples by volume and mute with 24-bit clipping
package playback

import "github.com/oggplay/oggplay-go/pkg/audio"

// applyVolume writes src scaled by volume and mute into dst
func applyVolume(dst, src []int32, volume int, muted bool) {
	multiplier := getVolumeMultiplier(volume, muted)
	if multiplier == 1.0 {
		copy(dst, src)
		return
	}

	for i, sample := range src {
		dst[i] = audio.ClampTo24Bit(int64(float64(sample) * multiplier))
	}
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}

// clampVolume limits volume to 0-100
func clampVolume(volume int) int {
	if volume < 0 {
		return 0
	}
	if volume > 100 {
		return 100
	}
	return volume
}
