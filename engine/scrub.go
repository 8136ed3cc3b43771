// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"math"

	"github.com/ik5/audvis/utils"
)

// ScrubState is the display-only drag state. Pending overrides the shown
// progress while Dragging; it reaches playback through one seek on release.
type ScrubState struct {
	Dragging bool
	Pending  *float64
}

// BeginScrub starts a drag at progress.
func (e *Engine) BeginScrub(progress float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.seekableLocked(progress); err != nil {
		return err
	}
	p := utils.Clamp(progress, 0, 1)
	e.scrub = ScrubState{Dragging: true, Pending: &p}

	return nil
}

// UpdateScrub moves the pending target. It is ignored when no drag is in
// progress.
func (e *Engine) UpdateScrub(progress float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.scrub.Dragging || math.IsNaN(progress) {
		return
	}
	p := utils.Clamp(progress, 0, 1)
	e.scrub.Pending = &p
}

// EndScrub releases the drag and commits the pending target with a single
// seek. Releasing without a drag does nothing.
func (e *Engine) EndScrub() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.scrub.Dragging {
		return nil
	}
	pending := e.scrub.Pending
	e.scrub = ScrubState{}
	if pending == nil {
		return nil
	}

	return e.seekLocked(*pending)
}

// CancelScrub drops the drag without seeking.
func (e *Engine) CancelScrub() {
	e.mu.Lock()
	e.scrub = ScrubState{}
	e.mu.Unlock()
}

// Scrub returns a copy of the drag state.
func (e *Engine) Scrub() ScrubState {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := ScrubState{Dragging: e.scrub.Dragging}
	if e.scrub.Pending != nil {
		p := *e.scrub.Pending
		s.Pending = &p
	}
	return s
}
