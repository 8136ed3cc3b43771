// SPDX-License-Identifier: EPL-2.0

package mp3_test

import (
	"bytes"
	"fmt"

	"github.com/ik5/audvis/formats/mp3"
)

func Example_invalid() {
	_, err := mp3.Decoder{}.Decode(bytes.NewReader(nil))
	fmt.Println(err != nil)
	// Output: true
}
