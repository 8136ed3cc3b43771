// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MonoMixer averages all channels of src into a single channel.
type MonoMixer struct {
	src Source
	tmp []float32
}

// NewMonoMixer averages the channels of src.
func NewMonoMixer(src Source) *MonoMixer {
	return &MonoMixer{
		src: src,
		tmp: make([]float32, 4096),
	}
}

func (m *MonoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *MonoMixer) Channels() int   { return 1 }
func (m *MonoMixer) BufSize() int    { return m.src.BufSize() }

func (m *MonoMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	channels := m.src.Channels()
	if channels == 1 {
		return m.src.ReadSamples(dst)
	}

	need := len(dst) * channels
	if cap(m.tmp) < need {
		m.tmp = make([]float32, max(need, 8192))
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	frames := n / channels

	switch channels {
	case 2:
		for f := range frames {
			idx := f << 1
			dst[f] = (m.tmp[idx] + m.tmp[idx+1]) * 0.5
		}
	default:
		inv := 1 / float32(channels)
		for f := range frames {
			var sum float32
			base := f * channels
			for c := range channels {
				sum += m.tmp[base+c]
			}
			dst[f] = sum * inv
		}
	}

	return frames, err
}

// FitChannels adapts src to exactly n output channels. Mono input is copied
// to every output channel; anything else is mixed to mono first.
func FitChannels(src Source, n int) Source {
	if src.Channels() == n {
		return src
	}
	if src.Channels() != 1 {
		src = NewMonoMixer(src)
	}
	if n == 1 {
		return src
	}
	return &upmixer{src: src, channels: n}
}

type upmixer struct {
	src      Source
	channels int
	tmp      []float32
}

func (u *upmixer) SampleRate() int { return u.src.SampleRate() }
func (u *upmixer) Channels() int   { return u.channels }
func (u *upmixer) BufSize() int    { return u.src.BufSize() }
func (u *upmixer) Close() error    { return u.src.Close() }

func (u *upmixer) ReadSamples(dst []float32) (int, error) {
	if len(dst)%u.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	frames := len(dst) / u.channels
	if cap(u.tmp) < frames {
		u.tmp = make([]float32, frames)
	}
	u.tmp = u.tmp[:frames]

	n, err := u.src.ReadSamples(u.tmp)
	for f := range n {
		for c := range u.channels {
			dst[f*u.channels+c] = u.tmp[f]
		}
	}
	return n * u.channels, err
}
