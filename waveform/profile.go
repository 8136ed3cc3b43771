// SPDX-License-Identifier: EPL-2.0

package waveform

import (
	"math"

	"github.com/ik5/audvis/utils"
)

// Points is the fixed resolution of a Profile.
const Points = 2000

// Point summarizes one slice of samples.
type Point struct {
	SignedAverage float64 `json:"avg"`
	PeakMagnitude float64 `json:"peak"`
}

// Profile is an immutable track overview.
type Profile [Points]Point

type options struct {
	truePeak bool
}

// Option configures Summarize.
type Option func(*options)

// WithTruePeak makes PeakMagnitude the largest absolute sample of each slice
// instead of the absolute value of its average.
func WithTruePeak() Option {
	return func(o *options) { o.truePeak = true }
}

// Summarize reduces samples to Points entries. The slice step is
// floor(len(samples)/Points) and every slice is averaged over exactly step
// samples, so trailing samples past Points*step are ignored. Inputs shorter
// than Points yield a flat, all-zero profile.
func Summarize(samples []float32, opts ...Option) *Profile {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	p := new(Profile)
	step := len(samples) / Points
	if step == 0 {
		return p
	}

	for i := range p {
		slice := samples[i*step : (i+1)*step]

		var sum, peak float64
		for _, v := range slice {
			sum += float64(v)
			if o.truePeak {
				peak = max(peak, math.Abs(float64(v)))
			}
		}

		avg := sum / float64(step)
		p[i].SignedAverage = avg
		if o.truePeak {
			p[i].PeakMagnitude = peak
		} else {
			p[i].PeakMagnitude = math.Abs(avg)
		}
	}

	return p
}

// ProgressIndex maps a progress fraction to a profile index in [0, Points-1].
func ProgressIndex(progress float64) int {
	if math.IsNaN(progress) {
		return 0
	}
	return utils.Clamp(int(math.Floor(utils.Clamp(progress, 0, 1)*Points)), 0, Points-1)
}

// Slice returns the points from 0 up to and including the one at progress,
// the part the display renders as already played.
func (p *Profile) Slice(progress float64) []Point {
	return p[:ProgressIndex(progress)+1]
}
