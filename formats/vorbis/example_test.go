// SPDX-License-Identifier: EPL-2.0

package vorbis_test

import (
	"bytes"
	"fmt"

	"github.com/ik5/audvis/formats/vorbis"
)

func Example_invalid() {
	_, err := vorbis.Decoder{}.Decode(bytes.NewReader([]byte("not ogg")))
	fmt.Println(err != nil)
	// Output: true
}
