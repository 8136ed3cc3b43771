// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"github.com/ik5/audvis/audio"
)

// BufferTransport plays a decoded buffer through an Output, converting the
// sample rate and channel layout to the device's. Every block sent to the
// device also passes through tap, if set, so analysis sees what is heard.
type BufferTransport struct {
	buf *audio.Buffer
	out Output
	tap *audio.Tap
}

// NewBufferTransport plays buf on out, copying what is heard into tap.
func NewBufferTransport(buf *audio.Buffer, out Output, tap *audio.Tap) *BufferTransport {
	return &BufferTransport{buf: buf, out: out, tap: tap}
}

func (t *BufferTransport) Start(offset float64, onEnd func()) error {
	var src audio.Source = t.buf.NewSource(offset)
	if rate := t.out.SampleRate(); rate > 0 && rate != src.SampleRate() {
		src = audio.NewResampler(src, rate)
	}
	if ch := t.out.Channels(); ch > 0 {
		src = audio.FitChannels(src, ch)
	}
	if t.tap != nil {
		src = t.tap.Wrap(src)
	}

	return t.out.Start(src, onEnd)
}

func (t *BufferTransport) Stop() { t.out.Stop() }

func (t *BufferTransport) Duration() float64 { return t.buf.Duration() }

// Buffer returns the decoded media.
func (t *BufferTransport) Buffer() *audio.Buffer { return t.buf }

func (t *BufferTransport) Close() error { return nil }
