// SPDX-License-Identifier: EPL-2.0

// Package audio holds the sample plumbing every other package builds on.
//
// Everything is expressed as a Source: a pull-based stream of interleaved
// float32 samples in [-1.0, 1.0] that ends with io.EOF. Decoders from the
// formats packages produce Sources; the types here consume and wrap them.
//
// # Buffers
//
// ReadAll drains a Source into a Buffer, one slice per channel. A Buffer is
// immutable; NewSource replays it from any offset, which is what file
// playback uses after a seek:
//
//	buf, err := audio.ReadAll(src)
//	player := buf.NewSource(12.5) // start 12.5s in
//
// # Taps
//
// A Tap keeps the most recent mono window of whatever is read through it,
// so the same stream can be heard and measured:
//
//	tap := audio.NewTap(512)
//	out.Start(tap.Wrap(player), nil) // audible path
//	tap.Latest(window)               // analysis path
//
// # Conversion
//
// NewResampler changes the sample rate with Catmull-Rom interpolation and
// NewMonoMixer averages channels down to one. FitChannels adapts a stream to
// the channel count of an output device.
package audio
