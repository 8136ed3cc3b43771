// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var (
	// ErrFormatMismatch is returned when a source does not match the
	// output's rate and channel count.
	ErrFormatMismatch = errors.New("source format does not match output device")

	ErrOutputClosed = errors.New("output device closed")
)
