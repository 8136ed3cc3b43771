// SPDX-License-Identifier: EPL-2.0

package aiff_test

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ik5/audvis/formats/aiff"
)

func Example_notAIFF() {
	_, err := aiff.Decoder{}.Decode(bytes.NewReader([]byte("OggS not an aiff")))
	fmt.Println(errors.Is(err, aiff.ErrNotAiffFile))
	// Output: true
}
