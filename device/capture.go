// SPDX-License-Identifier: EPL-2.0

package device

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gordonklaus/portaudio"
	"github.com/ik5/audvis/audio"
)

// Capture opens the default input device in mono. Captured blocks go to the
// analysis tap only; nothing is routed to an output.
type Capture struct {
	SampleRate      int
	FramesPerBuffer int
	Log             *slog.Logger
}

// NewCapture returns a Capturer for the default input device.
func NewCapture(sampleRate, framesPerBuffer int, log *slog.Logger) *Capture {
	if log == nil {
		log = slog.Default()
	}
	return &Capture{SampleRate: sampleRate, FramesPerBuffer: framesPerBuffer, Log: log}
}

// Open starts capturing into tap until the returned stream is closed.
func (c *Capture) Open(ctx context.Context, tap *audio.Tap) (io.Closer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(c.SampleRate), c.FramesPerBuffer, func(in []float32) {
		tap.Write(in)
	})
	if err != nil {
		return nil, fmt.Errorf("open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		if closeErr := stream.Close(); closeErr != nil {
			c.Log.Warn("failed to close input stream", "error", closeErr)
		}
		return nil, fmt.Errorf("start input stream: %w", err)
	}

	c.Log.Debug("capture started", "sample_rate", c.SampleRate, "frames", c.FramesPerBuffer)
	return &captureStream{stream: stream}, nil
}

type captureStream struct {
	stream *portaudio.Stream
}

func (s *captureStream) Close() error {
	if err := s.stream.Stop(); err != nil {
		_ = s.stream.Close()
		return fmt.Errorf("stop input stream: %w", err)
	}
	return s.stream.Close()
}
