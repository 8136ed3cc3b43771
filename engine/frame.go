// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"strconv"

	"github.com/ik5/audvis/analysis"
)

// Bytes is a byte series that encodes to JSON as a number array.
type Bytes []uint8

func (b Bytes) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	out := make([]byte, 0, 2+len(b)*4)
	out = append(out, '[')
	for i, v := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(v), 10)
	}
	return append(out, ']'), nil
}

// Frame is everything a renderer needs for one tick.
type Frame struct {
	Mode       Mode                  `json:"mode"`
	Bands      analysis.BandEnergies `json:"bands"`
	Frequency  Bytes                 `json:"frequency,omitempty"`
	TimeDomain Bytes                 `json:"timeDomain,omitempty"`
	Left       []float64             `json:"left,omitempty"`
	Right      []float64             `json:"right,omitempty"`

	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
	// Progress is the displayed progress: the pending scrub target while
	// dragging, the playback progress otherwise.
	Progress  float64 `json:"progress"`
	Timer     string  `json:"timer,omitempty"`
	Scrubbing bool    `json:"scrubbing"`

	// HasProfile is set when the waveform profile is available. Without it
	// the display falls back to History.
	HasProfile bool      `json:"hasProfile"`
	History    []float64 `json:"history,omitempty"`
}
