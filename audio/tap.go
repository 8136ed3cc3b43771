// SPDX-License-Identifier: EPL-2.0

package audio

import "sync"

// Tap keeps the most recent mono samples of whatever passes through it in a
// ring buffer, so analysis can look at exactly what is being heard (file
// playback) or captured (microphone). It is safe for concurrent use.
type Tap struct {
	mu      sync.Mutex
	buf     []float32
	pos     int
	written uint64
}

// NewTap creates a Tap holding the last size samples.
func NewTap(size int) *Tap {
	return &Tap{buf: make([]float32, size)}
}

// Size returns the ring capacity.
func (t *Tap) Size() int { return len(t.buf) }

// Write appends mono samples.
func (t *Tap) Write(mono []float32) {
	t.mu.Lock()
	for _, v := range mono {
		t.buf[t.pos] = v
		t.pos = (t.pos + 1) % len(t.buf)
	}
	t.written += uint64(len(mono))
	t.mu.Unlock()
}

// WriteInterleaved mixes interleaved frames down to mono and appends them.
func (t *Tap) WriteInterleaved(samples []float32, channels int) {
	if channels <= 1 {
		t.Write(samples)
		return
	}

	frames := len(samples) / channels
	inv := 1 / float32(channels)

	t.mu.Lock()
	for f := range frames {
		var sum float32
		base := f * channels
		for c := range channels {
			sum += samples[base+c]
		}
		t.buf[t.pos] = sum * inv
		t.pos = (t.pos + 1) % len(t.buf)
	}
	t.written += uint64(frames)
	t.mu.Unlock()
}

// Latest fills dst with the newest len(dst) samples in chronological order
// and returns the total number of samples ever written. Slots not yet
// written read as silence.
func (t *Tap) Latest(dst []float32) uint64 {
	n := min(len(dst), len(t.buf))

	t.mu.Lock()
	defer t.mu.Unlock()

	start := (t.pos - n + len(t.buf)) % len(t.buf)
	for i := range n {
		dst[i] = t.buf[(start+i)%len(t.buf)]
	}
	clear(dst[n:])

	return t.written
}

// Written returns the total number of samples ever written.
func (t *Tap) Written() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.written
}

// Reset clears the ring back to silence.
func (t *Tap) Reset() {
	t.mu.Lock()
	clear(t.buf)
	t.pos = 0
	t.written = 0
	t.mu.Unlock()
}

// Wrap returns a Source that copies everything read from src into the tap.
func (t *Tap) Wrap(src Source) Source {
	return &tappedSource{Source: src, tap: t}
}

type tappedSource struct {
	Source
	tap *Tap
}

func (s *tappedSource) ReadSamples(dst []float32) (int, error) {
	n, err := s.Source.ReadSamples(dst)
	if n > 0 {
		s.tap.WriteInterleaved(dst[:n], s.Source.Channels())
	}
	return n, err
}
