// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"time"

	"github.com/ik5/audvis/audio"
)

// Clock supplies wall-clock time to a Tracker.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Output is an audio device that plays one Source at a time.
//
// Start replaces the current source with src. If it fails, the previous
// source keeps playing. onEnd is called once src is exhausted; it is never
// called for a source that was replaced or stopped.
type Output interface {
	Start(src audio.Source, onEnd func()) error
	Stop()
	SampleRate() int
	Channels() int
}

// Transport starts and stops audible playback at a time offset.
//
// Start replaces any running playback. When it fails, the previous playback
// (if any) is left running so the caller's state stays consistent.
type Transport interface {
	Start(offset float64, onEnd func()) error
	Stop()
	// Duration returns the media length in seconds, or 0 when unknown.
	Duration() float64
	Close() error
}
