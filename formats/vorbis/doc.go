// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
//
//	src, err := vorbis.Decoder{}.Decode(file)
//
// The channel count and sample rate come from the Vorbis identification
// header; samples are interleaved float32 in [-1.0, 1.0].
package vorbis
