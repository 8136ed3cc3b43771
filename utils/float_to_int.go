// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 converts a sample in [-1,1] to 16-bit PCM, clamping
// out-of-range input.
func Float32ToInt16(x float32) int16 {
	x = Clamp(x, -1, 1)
	// 32767 for positive max to avoid overflow
	return int16(x * 32767.0)
}

// Float32ToByte maps a sample in [-1,1] onto an unsigned byte centred at 128,
// the layout time-domain displays expect.
func Float32ToByte(x float32) uint8 {
	v := 128 * (1 + float64(x))
	return uint8(Clamp(v, 0, 255))
}
