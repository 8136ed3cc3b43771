// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds fakes shared by the package tests: generated
// sources, a manual clock, an in-memory output device and a fake microphone.
// Every fake satisfies its interface structurally so this package imports
// nothing above audio.
package audiotest

import (
	"io"
	"math"
	"sync"
)

// MockSource generates frames from a waveform function. It satisfies
// audio.Source.
type MockSource struct {
	mu         sync.Mutex
	sampleRate int
	channels   int
	frames     int // total frames to generate
	pos        int
	waveform   func(frame, channel int) float32
	closed     bool
	readErr    error
}

// NewMockSource creates a source of frames frames.
func NewMockSource(sampleRate, channels, frames int, waveform func(frame, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		waveform:   waveform,
	}
}

func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewConstantSource(sampleRate, channels, frames, 0)
}

func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// FailWith makes every following read return err.
func (m *MockSource) FailWith(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

// Reset rewinds to the first frame.
func (m *MockSource) Reset() {
	m.mu.Lock()
	m.pos = 0
	m.mu.Unlock()
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readErr != nil {
		return 0, m.readErr
	}
	if m.pos >= m.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/m.channels, m.frames-m.pos)
	for f := range n {
		for c := range m.channels {
			dst[f*m.channels+c] = m.waveform(m.pos+f, c)
		}
	}
	m.pos += n

	if m.pos >= m.frames {
		return n * m.channels, io.EOF
	}
	return n * m.channels, nil
}
