// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audvis/utils"
)

// Resampler converts src to a new sample rate with Catmull-Rom interpolation.
// Works on interleaved samples and preserves channel count. When downsampling
// a one-pole low-pass is applied to incoming frames to tame aliasing.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// win holds frames t-1, t0, t+1, t+2 around the read position.
	win  [4][]float32
	pad  int // duplicated frames shifted in after the source ended
	pos  float64
	init bool

	in    []float32
	inOff int
	inLen int
	eof   bool

	lowpass bool
	lpState []float32
}

// NewResampler converts src to dstRate.
func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    float64(src.SampleRate()) / float64(dstRate),
		channels: channels,
		in:       make([]float32, 1024*channels),
		lpState:  make([]float32, channels),
	}
	r.lowpass = r.ratio > 1
	for i := range r.win {
		r.win[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame copies the next source frame into dst. It reports false once the
// source is exhausted.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	for r.inLen-r.inOff < r.channels {
		if r.eof {
			return false, nil
		}
		// Keep a partial frame, if any, at the front of the buffer.
		rest := copy(r.in, r.in[r.inOff:r.inLen])
		n, err := r.src.ReadSamples(r.in[rest:])
		r.inOff, r.inLen = 0, rest+n
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		} else if n == 0 {
			r.eof = true
		}
	}

	copy(dst, r.in[r.inOff:r.inOff+r.channels])
	r.inOff += r.channels

	if r.lowpass {
		if !r.init {
			copy(r.lpState, dst)
		}
		for c := range r.channels {
			dst[c] = 0.5*dst[c] + 0.5*r.lpState[c]
			r.lpState[c] = dst[c]
		}
	}
	return true, nil
}

// shift advances the window by one source frame.
func (r *Resampler) shift() error {
	last := r.win[0]
	copy(r.win[:], r.win[1:])
	r.win[3] = last

	ok, err := r.readFrame(r.win[3])
	if err != nil {
		return err
	}
	if !ok {
		copy(r.win[3], r.win[2])
		r.pad++
	}
	return nil
}

func (r *Resampler) prime() error {
	ok, err := r.readFrame(r.win[1])
	if err != nil {
		return err
	}
	r.init = true
	if !ok {
		return io.EOF
	}
	copy(r.win[0], r.win[1])

	for i := 2; i < 4; i++ {
		ok, err := r.readFrame(r.win[i])
		if err != nil {
			return err
		}
		if !ok {
			copy(r.win[i], r.win[i-1])
			r.pad++
		}
	}
	return nil
}

// ReadSamples produces samples at the destination rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.init {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	frames := len(dst) / r.channels

	for written < frames {
		for r.pos >= 1 {
			r.pos--
			if err := r.shift(); err != nil {
				return written * r.channels, err
			}
		}
		// Frame t0 is padding: every real frame has been consumed.
		if r.pad > 2 {
			return written * r.channels, io.EOF
		}

		x := float32(r.pos)
		for c := range r.channels {
			dst[written*r.channels+c] = utils.CatmullRom(
				r.win[0][c], r.win[1][c], r.win[2][c], r.win[3][c], x)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
