// SPDX-License-Identifier: EPL-2.0

package analysis

import "github.com/ik5/audvis/utils"

const (
	// NumBands is the number of coarse energy bands. Band 0 is the lowest
	// frequency group ("bass"), band NumBands-1 the highest ("treble").
	NumBands = 10

	DefaultBandAlpha = 0.45
)

// BandEnergies holds one value in [0,1] per band.
type BandEnergies [NumBands]float64

// RawBands splits freq into NumBands contiguous groups of
// len(freq)/NumBands bins and returns each group's mean divided by 255.
// Remainder bins at the top are dropped.
func RawBands(freq []uint8) BandEnergies {
	var raw BandEnergies

	size := len(freq) / NumBands
	if size == 0 {
		return raw
	}
	for b := range NumBands {
		sum := 0
		for _, v := range freq[b*size : (b+1)*size] {
			sum += int(v)
		}
		raw[b] = float64(sum) / float64(size) / 255
	}

	return raw
}

// BandExtractor applies exponential smoothing to RawBands between ticks.
// It is not safe for concurrent use.
type BandExtractor struct {
	alpha    float64
	smoothed BandEnergies
}

// NewBandExtractor creates an extractor with the given smoothing factor.
// Lower alpha reacts more slowly.
func NewBandExtractor(alpha float64) *BandExtractor {
	return &BandExtractor{alpha: utils.Clamp(alpha, 0.001, 1)}
}

// Update folds one frequency frame in and returns the smoothed energies.
// A nil frame decays the bands toward zero.
func (b *BandExtractor) Update(freq []uint8) BandEnergies {
	raw := RawBands(freq)
	for i := range b.smoothed {
		b.smoothed[i] += (raw[i] - b.smoothed[i]) * b.alpha
	}
	return b.smoothed
}

// Bands returns the current smoothed energies.
func (b *BandExtractor) Bands() BandEnergies { return b.smoothed }

// Alpha returns the smoothing factor.
func (b *BandExtractor) Alpha() float64 { return b.alpha }

// Reset returns every band to zero.
func (b *BandExtractor) Reset() { b.smoothed = BandEnergies{} }
