// SPDX-License-Identifier: EPL-2.0

package analysis

// DefaultBarCount is the bar count of each side spectrum.
const DefaultBarCount = 32

// Bars averages freq[start:end] into count bars normalised to [0,1]. Each bar
// spans floor((end-start)/count) bins.
func Bars(freq []uint8, start, end, count int) []float64 {
	end = min(end, len(freq))
	start = max(start, 0)
	if count <= 0 || end <= start {
		return nil
	}

	out := make([]float64, count)
	size := (end - start) / count
	if size == 0 {
		return out
	}

	for i := range count {
		lo := start + i*size
		hi := min(lo+size, end)
		sum := 0
		for _, v := range freq[lo:hi] {
			sum += int(v)
		}
		out[i] = float64(sum) / float64(hi-lo) / 255
	}

	return out
}

// SideBars splits freq in half: the lower half feeds the left display and
// the upper half the right one.
func SideBars(freq []uint8, count int) (left, right []float64) {
	half := len(freq) / 2
	return Bars(freq, 0, half, count), Bars(freq, half, len(freq), count)
}
