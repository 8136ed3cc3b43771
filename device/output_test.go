// SPDX-License-Identifier: EPL-2.0

package device

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ik5/audvis/internal/audiotest"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestOutput_FillPadsWithSilence(t *testing.T) {
	t.Parallel()

	o := newOutput(8000, 2, quiet)
	ended := make(chan struct{})
	src := audiotest.NewConstantSource(8000, 2, 3, 0.5)

	if err := o.Start(src, func() { close(ended) }); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	out := make([]float32, 10)
	for i := range out {
		out[i] = 9
	}
	o.process(out)

	want := []float32{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0, 0, 0, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out = %v, want %v", out, want)
		}
	}

	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("end callback not fired")
	}
	if !src.Closed() {
		t.Error("finished source not closed")
	}
}

func TestOutput_SilenceWithoutSource(t *testing.T) {
	t.Parallel()

	o := newOutput(8000, 2, quiet)
	out := []float32{1, 1, 1, 1}
	o.process(out)

	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want silence", i, v)
		}
	}
}

func TestOutput_ReplaceDoesNotFireEnd(t *testing.T) {
	t.Parallel()

	o := newOutput(8000, 2, quiet)
	fired := make(chan struct{}, 1)

	first := audiotest.NewConstantSource(8000, 2, 100, 0.1)
	_ = o.Start(first, func() { fired <- struct{}{} })
	second := audiotest.NewConstantSource(8000, 2, 100, 0.2)
	_ = o.Start(second, nil)

	if !first.Closed() {
		t.Error("replaced source not closed")
	}

	out := make([]float32, 4)
	o.process(out)
	if out[0] != 0.2 {
		t.Errorf("out[0] = %v, want second source", out[0])
	}

	o.Stop()
	if !second.Closed() {
		t.Error("stopped source not closed")
	}
	select {
	case <-fired:
		t.Error("replaced source fired its end callback")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestOutput_FormatMismatch(t *testing.T) {
	t.Parallel()

	o := newOutput(48000, 2, quiet)

	tests := []struct {
		name     string
		rate, ch int
	}{
		{"rate", 44100, 2},
		{"channels", 48000, 1},
	}
	for _, tt := range tests {
		err := o.Start(audiotest.NewSilentSource(tt.rate, tt.ch, 10), nil)
		if !errors.Is(err, ErrFormatMismatch) {
			t.Errorf("%s: Start() error = %v, want ErrFormatMismatch", tt.name, err)
		}
	}
}

func TestOutput_Closed(t *testing.T) {
	t.Parallel()

	o := newOutput(8000, 2, quiet)
	if err := o.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := o.Start(audiotest.NewSilentSource(8000, 2, 10), nil); !errors.Is(err, ErrOutputClosed) {
		t.Errorf("Start() after Close error = %v, want ErrOutputClosed", err)
	}
}
