// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ik5/audvis/utils"
)

// State is a snapshot of a Tracker.
type State struct {
	Offset float64
	Paused bool
	// Start is the wall-clock instant the current run began, nil while
	// paused.
	Start *time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock replaces the wall clock.
func WithClock(c Clock) TrackerOption {
	return func(t *Tracker) { t.clock = c }
}

// WithLogger sets the logger used for transport failures.
func WithLogger(l *slog.Logger) TrackerOption {
	return func(t *Tracker) { t.log = l }
}

// OnEnded registers fn to run after the media reaches its natural end.
func OnEnded(fn func()) TrackerOption {
	return func(t *Tracker) { t.onEnded = fn }
}

// Tracker keeps playback position consistent across play, pause, seek and
// end of media. It is safe for concurrent use; the end-of-media callback
// may arrive from a device goroutine.
type Tracker struct {
	mu        sync.Mutex
	transport Transport
	clock     Clock
	log       *slog.Logger
	onEnded   func()

	offset float64
	paused bool
	start  *time.Time
	// run identifies the current transport run. End notifications carrying
	// an older run are ignored.
	run    uint64
	closed bool
}

// NewTracker returns a paused tracker at offset 0. Nothing plays until Play
// or Resume is called.
func NewTracker(tr Transport, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		transport: tr,
		clock:     systemClock{},
		log:       slog.Default(),
		paused:    true,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Duration returns the media length in seconds.
func (t *Tracker) Duration() float64 { return t.transport.Duration() }

// clampPosition keeps v inside [0, duration]. An unknown duration only
// bounds from below.
func (t *Tracker) clampPosition(v float64) float64 {
	d := t.transport.Duration()
	if d <= 0 {
		return math.Max(v, 0)
	}
	return utils.Clamp(v, 0, d)
}

// Play starts playback at offset seconds, clamped to the media.
func (t *Tracker) Play(offset float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.playLocked(offset)
}

func (t *Tracker) playLocked(offset float64) error {
	if t.closed {
		return ErrClosed
	}

	offset = t.clampPosition(offset)
	run := t.run + 1
	if err := t.transport.Start(offset, func() { t.ended(run) }); err != nil {
		t.log.Warn("transport start failed", "offset", offset, "error", err)
		return fmt.Errorf("%w: %w", ErrTransportStart, err)
	}

	now := t.clock.Now()
	t.run = run
	t.offset = offset
	t.start = &now
	t.paused = false

	return nil
}

// Pause freezes the position and stops output. Pausing while paused does
// nothing.
func (t *Tracker) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.paused || t.closed {
		return
	}
	t.pauseLocked()
}

func (t *Tracker) pauseLocked() {
	t.offset = t.positionLocked()
	t.start = nil
	t.paused = true
	t.run++
	t.transport.Stop()
}

// Resume plays from the stored offset. Resuming while playing does nothing.
func (t *Tracker) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.paused {
		return nil
	}
	return t.playLocked(t.offset)
}

// Toggle pauses a playing tracker and resumes a paused one.
func (t *Tracker) Toggle() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	if t.paused {
		return t.playLocked(t.offset)
	}
	t.pauseLocked()

	return nil
}

// Seek moves to progress (clamped to [0,1]) of the duration. A paused
// tracker only records the new offset; a playing one restarts there.
func (t *Tracker) Seek(progress float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}
	d := t.transport.Duration()
	if d <= 0 || math.IsNaN(progress) {
		return ErrInvalidSeekTarget
	}

	target := utils.Clamp(progress, 0, 1) * d
	if t.paused {
		t.offset = target
		return nil
	}
	return t.playLocked(target)
}

// Position returns the current position in seconds.
func (t *Tracker) Position() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.positionLocked()
}

func (t *Tracker) positionLocked() float64 {
	if t.paused || t.start == nil {
		return t.offset
	}
	elapsed := t.clock.Now().Sub(*t.start).Seconds()
	return t.clampPosition(t.offset + elapsed)
}

// Progress returns Position as a fraction of Duration, or 0 when the
// duration is unknown.
func (t *Tracker) Progress() float64 {
	d := t.transport.Duration()
	if d <= 0 {
		return 0
	}
	return utils.Clamp(t.Position()/d, 0, 1)
}

// Paused reports whether the tracker is paused.
func (t *Tracker) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// Snapshot returns the raw playback state.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := State{Offset: t.offset, Paused: t.paused}
	if t.start != nil {
		start := *t.start
		s.Start = &start
	}
	return s
}

// ended handles a natural end of media for the given run: the tracker
// rewinds to 0 and pauses.
func (t *Tracker) ended(run uint64) {
	t.mu.Lock()
	if t.closed || t.paused || run != t.run {
		t.mu.Unlock()
		return
	}
	t.offset = 0
	t.start = nil
	t.paused = true
	t.run++
	t.transport.Stop()
	hook := t.onEnded
	t.mu.Unlock()

	t.log.Debug("playback reached end of media")
	if hook != nil {
		hook()
	}
}

// Close stops playback and releases the transport.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	t.paused = true
	t.start = nil
	t.run++
	t.transport.Stop()

	return t.transport.Close()
}
