// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"context"
	"io"
	"sync"

	"github.com/ik5/audvis/audio"
)

// Capturer hands out fake microphone streams. Setting Gate makes Open block
// until the gate is closed, which simulates a pending permission prompt.
type Capturer struct {
	mu      sync.Mutex
	Err     error
	Gate    chan struct{}
	opened  []*CaptureStream
	entered chan struct{}
}

// NewCapturer returns a capturer that succeeds immediately.
func NewCapturer() *Capturer {
	return &Capturer{entered: make(chan struct{}, 16)}
}

// Entered receives a value each time Open starts waiting.
func (c *Capturer) Entered() <-chan struct{} { return c.entered }

func (c *Capturer) Open(ctx context.Context, tap *audio.Tap) (io.Closer, error) {
	c.mu.Lock()
	gate, err := c.Gate, c.Err
	c.mu.Unlock()

	select {
	case c.entered <- struct{}{}:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	s := &CaptureStream{tap: tap}
	c.mu.Lock()
	c.opened = append(c.opened, s)
	c.mu.Unlock()
	return s, nil
}

// Streams returns every stream opened so far.
func (c *Capturer) Streams() []*CaptureStream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*CaptureStream(nil), c.opened...)
}

// CaptureStream is a fake open microphone.
type CaptureStream struct {
	mu     sync.Mutex
	tap    *audio.Tap
	closed bool
}

// Feed pushes mono samples as if they had just been captured.
func (s *CaptureStream) Feed(samples []float32) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if !closed {
		s.tap.Write(samples)
	}
}

func (s *CaptureStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Closed reports whether the stream was released.
func (s *CaptureStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
