// SPDX-License-Identifier: EPL-2.0

package device

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/ik5/audvis/audio"
)

// Output plays interleaved stereo through the default output device. The
// stream runs for the lifetime of the Output; with no source attached it
// plays silence.
type Output struct {
	mu       sync.Mutex
	stream   *portaudio.Stream
	rate     int
	channels int
	src      audio.Source
	onEnd    func()
	closed   bool
	log      *slog.Logger
}

// OpenOutput opens and starts the default output device.
func OpenOutput(sampleRate, framesPerBuffer int, log *slog.Logger) (*Output, error) {
	o := newOutput(sampleRate, 2, log)

	stream, err := portaudio.OpenDefaultStream(0, o.channels, float64(sampleRate), framesPerBuffer, o.process)
	if err != nil {
		return nil, fmt.Errorf("open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		if closeErr := stream.Close(); closeErr != nil {
			o.log.Warn("failed to close output stream", "error", closeErr)
		}
		return nil, fmt.Errorf("start output stream: %w", err)
	}
	o.stream = stream

	return o, nil
}

func newOutput(rate, channels int, log *slog.Logger) *Output {
	if log == nil {
		log = slog.Default()
	}
	return &Output{rate: rate, channels: channels, log: log}
}

func (o *Output) SampleRate() int { return o.rate }
func (o *Output) Channels() int   { return o.channels }

// Start swaps src in. The previous source is closed without firing its end
// callback.
func (o *Output) Start(src audio.Source, onEnd func()) error {
	if src.SampleRate() != o.rate || src.Channels() != o.channels {
		return fmt.Errorf("%w: got %d Hz/%d ch, want %d Hz/%d ch",
			ErrFormatMismatch, src.SampleRate(), src.Channels(), o.rate, o.channels)
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrOutputClosed
	}
	old := o.src
	o.src, o.onEnd = src, onEnd
	o.mu.Unlock()

	o.release(old)
	return nil
}

// Stop detaches the current source.
func (o *Output) Stop() {
	o.mu.Lock()
	old := o.src
	o.src, o.onEnd = nil, nil
	o.mu.Unlock()

	o.release(old)
}

func (o *Output) release(src audio.Source) {
	if src == nil {
		return
	}
	if err := src.Close(); err != nil {
		o.log.Debug("closing replaced source", "error", err)
	}
}

// process is the PortAudio callback.
func (o *Output) process(out []float32) {
	o.mu.Lock()
	ended, onEnd := o.fill(out)
	o.mu.Unlock()

	if ended && onEnd != nil {
		go onEnd()
	}
}

// fill reads the current source into out and pads with silence. It reports
// whether the source just ended, in which case it has been detached and
// closed. Callers hold mu.
func (o *Output) fill(out []float32) (bool, func()) {
	n := 0
	ended := false

	if o.src != nil {
		for n < len(out) {
			read, err := o.src.ReadSamples(out[n:])
			n += read
			if err == io.EOF || (err == nil && read == 0) {
				ended = true
				break
			}
			if err != nil {
				o.log.Warn("output source failed", "error", err)
				ended = true
				break
			}
		}
	}
	clear(out[n:])

	if !ended {
		return false, nil
	}
	src, onEnd := o.src, o.onEnd
	o.src, o.onEnd = nil, nil
	if err := src.Close(); err != nil {
		o.log.Debug("closing finished source", "error", err)
	}
	return true, onEnd
}

// Close stops the device.
func (o *Output) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	old := o.src
	o.src, o.onEnd = nil, nil
	o.mu.Unlock()

	o.release(old)
	if o.stream == nil {
		return nil
	}
	if err := o.stream.Stop(); err != nil {
		_ = o.stream.Close()
		return fmt.Errorf("stop output stream: %w", err)
	}
	return o.stream.Close()
}
