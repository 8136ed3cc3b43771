// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"fmt"
	"math"
)

// FormatTime renders seconds as m:ss. Negative and NaN inputs render as 0:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
