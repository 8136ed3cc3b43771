// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes WAV files.
//
// Decoding goes through github.com/go-audio/wav, so files with extra chunks
// (LIST, fact, ...) before the data chunk are handled, and 8, 16, 24 and
// 32-bit integer PCM are accepted:
//
//	src, err := wav.Decoder{}.Decode(file)
//	if errors.Is(err, wav.ErrNotWavFile) {
//	    // not RIFF/WAVE
//	}
//
// Samples come out as float32 in [-1.0, 1.0], interleaved.
//
// WriteWAV16 writes interleaved 16-bit PCM with a canonical 44-byte header
// to any io.Writer.
package wav
