// SPDX-License-Identifier: EPL-2.0

package playback

import "errors"

var (
	// ErrInvalidSeekTarget is returned by Seek when no duration is known.
	ErrInvalidSeekTarget = errors.New("seek target invalid without a known duration")

	// ErrTransportStart wraps a failure to start audio output. The tracker
	// state is unchanged when it is returned.
	ErrTransportStart = errors.New("transport failed to start")

	// ErrClosed is returned by operations on a closed Tracker.
	ErrClosed = errors.New("tracker closed")
)
