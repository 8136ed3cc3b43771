// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"sync"

	"github.com/ik5/audvis/audio"
)

// Output is an in-memory playback device. Nothing is pulled from the current
// source until Pull is called, which lets tests decide when audio "plays".
type Output struct {
	mu       sync.Mutex
	rate     int
	channels int
	src      audio.Source
	onEnd    func()
	starts   int
	stops    int
	failNext error
}

// NewOutput creates a stereo device at rate.
func NewOutput(rate int) *Output {
	return &Output{rate: rate, channels: 2}
}

func (o *Output) SampleRate() int { return o.rate }
func (o *Output) Channels() int   { return o.channels }

// Start replaces the current source unless a failure was queued with FailNext.
func (o *Output) Start(src audio.Source, onEnd func()) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.failNext; err != nil {
		o.failNext = nil
		return err
	}
	o.src = src
	o.onEnd = onEnd
	o.starts++
	return nil
}

func (o *Output) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.src = nil
	o.onEnd = nil
	o.stops++
}

// FailNext makes the next Start return err.
func (o *Output) FailNext(err error) {
	o.mu.Lock()
	o.failNext = err
	o.mu.Unlock()
}

// Active reports whether a source is attached.
func (o *Output) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.src != nil
}

// Source returns the attached source.
func (o *Output) Source() audio.Source {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.src
}

// Starts returns how many times Start succeeded.
func (o *Output) Starts() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.starts
}

// Pull reads up to frames frames from the current source, the way a device
// callback would, and fires the end hook when the source runs dry.
func (o *Output) Pull(frames int) int {
	o.mu.Lock()
	src, onEnd := o.src, o.onEnd
	o.mu.Unlock()
	if src == nil {
		return 0
	}

	buf := make([]float32, frames*src.Channels())
	total := 0
	for total < len(buf) {
		n, err := src.ReadSamples(buf[total:])
		total += n
		if err == io.EOF || (err == nil && n == 0) {
			o.finish(src, onEnd)
			break
		}
		if err != nil {
			break
		}
	}
	return total / src.Channels()
}

// End simulates the current source finishing.
func (o *Output) End() {
	o.mu.Lock()
	src, onEnd := o.src, o.onEnd
	o.mu.Unlock()
	o.finish(src, onEnd)
}

func (o *Output) finish(src audio.Source, onEnd func()) {
	o.mu.Lock()
	if o.src == src {
		o.src = nil
		o.onEnd = nil
	}
	o.mu.Unlock()
	if onEnd != nil {
		onEnd()
	}
}
