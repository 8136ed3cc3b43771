// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"

	"github.com/ik5/audvis"
	"github.com/ik5/audvis/analysis"
	"github.com/ik5/audvis/playback"
)

var (
	ErrDeviceAccessDenied = errors.New("capture device access denied")

	// ErrDecodeFailure is only returned when neither decoding nor the
	// streamed fallback can play the file.
	ErrDecodeFailure = audvis.ErrDecodeFailure

	ErrNoActiveSource    = analysis.ErrNoActiveSource
	ErrInvalidSeekTarget = playback.ErrInvalidSeekTarget

	// ErrSuperseded is returned by an acquisition that completed after a
	// newer one had started. Nothing it acquired is kept.
	ErrSuperseded = errors.New("acquisition superseded by a newer request")

	ErrClosed = errors.New("engine closed")
)
