// ABOUTME: Channel remixing between mono and stereo
// ABOUTME: Duplicates mono to both sides or averages stereo down to mono
package playback

// canRemix reports whether the engine can convert between the channel counts
func canRemix(from, to int) bool {
	return from == to || (from == 1 && to == 2) || (from == 2 && to == 1)
}

// remix converts interleaved samples from one channel count to another,
// appending to dst. Counts must satisfy canRemix.
func remix(dst, src []int32, from, to int) []int32 {
	switch {
	case from == 1 && to == 2:
		for _, s := range src {
			dst = append(dst, s, s)
		}
	case from == 2 && to == 1:
		for i := 0; i+1 < len(src); i += 2 {
			dst = append(dst, int32((int64(src[i])+int64(src[i+1]))/2))
		}
	default:
		dst = append(dst, src...)
	}
	return dst
}
