// SPDX-License-Identifier: EPL-2.0

package analysis

import "errors"

// ErrNoActiveSource is returned when sampling with nothing connected.
var ErrNoActiveSource = errors.New("no active audio source")
