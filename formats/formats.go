// SPDX-License-Identifier: EPL-2.0

// Package formats wires the container decoders together and recognises
// raw file bytes by content rather than by file name.
package formats

import (
	"errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ik5/audvis/audio"
	"github.com/ik5/audvis/formats/aiff"
	"github.com/ik5/audvis/formats/mp3"
	"github.com/ik5/audvis/formats/vorbis"
	"github.com/ik5/audvis/formats/wav"
)

// Registry keys.
const (
	WAV  = "wav"
	MP3  = "mp3"
	OGG  = "ogg"
	AIFF = "aiff"
)

// ErrUnknownFormat is returned when the bytes match no registered container.
var ErrUnknownFormat = errors.New("unrecognised audio container")

// mimeKeys maps detected MIME types (or their parents) to registry keys.
var mimeKeys = []struct {
	mime string
	key  string
}{
	{"audio/wav", WAV},
	{"audio/mpeg", MP3},
	{"audio/ogg", OGG},
	{"application/ogg", OGG},
	{"audio/aiff", AIFF},
}

// NewRegistry returns a registry holding every built-in decoder.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register(WAV, wav.Decoder{})
	reg.Register(MP3, mp3.Decoder{})
	reg.Register(OGG, vorbis.Decoder{})
	reg.Register(AIFF, aiff.Decoder{})

	return reg
}

// Detect sniffs raw and returns the registry key plus the detected MIME type.
// The MIME type is returned even when no key matches.
func Detect(raw []byte) (string, string, error) {
	detected := mimetype.Detect(raw)
	for m := detected; m != nil; m = m.Parent() {
		for _, mk := range mimeKeys {
			if m.Is(mk.mime) {
				return mk.key, detected.String(), nil
			}
		}
	}

	return "", detected.String(), ErrUnknownFormat
}
