// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// Buffer is a fully decoded file held in memory, one slice per channel.
// It is immutable once built.
type Buffer struct {
	sampleRate int
	channels   [][]float32
}

// NewBuffer wraps already de-interleaved channel data. Every channel must
// have the same length.
func NewBuffer(sampleRate int, channels [][]float32) (*Buffer, error) {
	if sampleRate <= 0 || len(channels) == 0 {
		return nil, ErrInvalidFormat
	}
	n := len(channels[0])
	for i, ch := range channels {
		if len(ch) != n {
			return nil, fmt.Errorf("channel %d has %d frames, want %d", i, len(ch), n)
		}
	}
	if n == 0 {
		return nil, ErrEmptyBuffer
	}

	return &Buffer{sampleRate: sampleRate, channels: channels}, nil
}

// ReadAll drains src and de-interleaves it into a Buffer. src is not closed.
func ReadAll(src Source) (*Buffer, error) {
	channels := src.Channels()
	if channels <= 0 || src.SampleRate() <= 0 {
		return nil, ErrInvalidFormat
	}

	bufSize := src.BufSize()
	if bufSize < channels {
		bufSize = 4096
	}
	bufSize -= bufSize % channels
	tmp := make([]float32, bufSize)

	data := make([][]float32, channels)
	// leftover keeps a partial frame between reads; decoders are not
	// required to return whole frames.
	var leftover []float32

	for {
		n, err := src.ReadSamples(tmp)
		if n > 0 {
			chunk := tmp[:n]
			if len(leftover) > 0 {
				chunk = append(leftover, chunk...)
				leftover = nil
			}
			frames := len(chunk) / channels
			for f := range frames {
				base := f * channels
				for c := range channels {
					data[c] = append(data[c], chunk[base+c])
				}
			}
			if rest := len(chunk) - frames*channels; rest > 0 {
				leftover = append([]float32(nil), chunk[frames*channels:]...)
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read samples: %w", err)
		}
		if n == 0 {
			// Guard against sources that never report EOF.
			break
		}
	}

	return NewBuffer(src.SampleRate(), data)
}

func (b *Buffer) SampleRate() int  { return b.sampleRate }
func (b *Buffer) NumChannels() int { return len(b.channels) }

// Len returns the number of frames.
func (b *Buffer) Len() int { return len(b.channels[0]) }

// Duration returns the playing time in seconds.
func (b *Buffer) Duration() float64 {
	return float64(b.Len()) / float64(b.sampleRate)
}

// Channel returns the samples of channel i. The slice must not be modified.
func (b *Buffer) Channel(i int) []float32 { return b.channels[i] }

// FrameAt converts a time offset into a frame index clamped to [0, Len()].
func (b *Buffer) FrameAt(seconds float64) int {
	f := int(seconds * float64(b.sampleRate))
	return max(0, min(f, b.Len()))
}

// NewSource returns an interleaved Source that starts at offset seconds.
// Each call returns an independent reader.
func (b *Buffer) NewSource(offset float64) Source {
	return &bufferSource{buf: b, pos: b.FrameAt(offset)}
}

type bufferSource struct {
	buf *Buffer
	pos int
}

func (s *bufferSource) SampleRate() int { return s.buf.sampleRate }
func (s *bufferSource) Channels() int   { return len(s.buf.channels) }
func (s *bufferSource) BufSize() int    { return 4096 }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	channels := len(s.buf.channels)
	if len(dst)%channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if s.pos >= s.buf.Len() {
		return 0, io.EOF
	}

	frames := min(len(dst)/channels, s.buf.Len()-s.pos)
	for f := range frames {
		for c := range channels {
			dst[f*channels+c] = s.buf.channels[c][s.pos+f]
		}
	}
	s.pos += frames

	if s.pos >= s.buf.Len() {
		return frames * channels, io.EOF
	}
	return frames * channels, nil
}
