// SPDX-License-Identifier: EPL-2.0

package audvis

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ik5/audvis/audio"
	"github.com/ik5/audvis/formats"
)

// ErrDecodeFailure marks bytes that could not be turned into raw samples.
// Callers treat it as a signal to fall back to streamed playback.
var ErrDecodeFailure = errors.New("audio decode failed")

var defaultRegistry = formats.NewRegistry()

// DecodeBytes sniffs the container in raw, decodes the whole stream and
// returns it as an in-memory Buffer.
//
// Every failure (unknown container, corrupt stream, empty audio) is wrapped
// in ErrDecodeFailure so callers can test for it with errors.Is.
func DecodeBytes(ctx context.Context, raw []byte) (*audio.Buffer, error) {
	return DecodeWith(ctx, defaultRegistry, raw)
}

// DecodeWith is DecodeBytes with a caller supplied registry.
func DecodeWith(ctx context.Context, reg *audio.Registry, raw []byte) (*audio.Buffer, error) {
	key, mime, err := formats.Detect(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, mime, err)
	}

	dec, ok := reg.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: no decoder registered for %q", ErrDecodeFailure, key)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := dec.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, key, err)
	}
	defer src.Close()

	buf, err := audio.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, key, err)
	}

	return buf, nil
}
