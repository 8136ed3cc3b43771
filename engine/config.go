// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"github.com/ik5/audvis/analysis"
	"github.com/ik5/audvis/playback"
	"github.com/ik5/audvis/waveform"
)

// Config holds the engine tunables.
type Config struct {
	BandAlpha   float64
	Smoothing   float64
	MinDecibels float64
	MaxDecibels float64
	// TruePeak records the true per-slice peak in the waveform profile
	// instead of the magnitude of the slice average.
	TruePeak    bool
	HistorySize int
	BarCount    int
	FFmpegPath  string
	FFprobePath string
}

// DefaultConfig returns the tunables the engine uses when none are given.
func DefaultConfig() Config {
	return Config{
		BandAlpha:   analysis.DefaultBandAlpha,
		Smoothing:   analysis.DefaultSmoothing,
		MinDecibels: analysis.DefaultMinDecibels,
		MaxDecibels: analysis.DefaultMaxDecibels,
		HistorySize: waveform.DefaultHistory,
		BarCount:    analysis.DefaultBarCount,
		FFmpegPath:  playback.DefaultFFmpegPath,
		FFprobePath: playback.DefaultFFprobePath,
	}
}
