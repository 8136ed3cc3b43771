// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/ik5/audvis/audio"
	"github.com/ik5/audvis/internal/audiotest"
)

func TestNewBuffer_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rate     int
		channels [][]float32
		want     error
	}{
		{"zero rate", 0, [][]float32{{1}}, audio.ErrInvalidFormat},
		{"no channels", 8000, nil, audio.ErrInvalidFormat},
		{"empty", 8000, [][]float32{{}, {}}, audio.ErrEmptyBuffer},
		{"ragged", 8000, [][]float32{{1, 2}, {1}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := audio.NewBuffer(tt.rate, tt.channels)
			if err == nil {
				t.Fatal("NewBuffer() succeeded")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("NewBuffer() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadAll(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(1000, 2, 2500, func(frame, ch int) float32 {
		return float32(frame%100)/100 - float32(ch)
	})

	buf, err := audio.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if buf.NumChannels() != 2 || buf.Len() != 2500 || buf.SampleRate() != 1000 {
		t.Fatalf("ReadAll() = %d ch, %d frames @ %d Hz", buf.NumChannels(), buf.Len(), buf.SampleRate())
	}
	if d := buf.Duration(); d != 2.5 {
		t.Errorf("Duration() = %v, want 2.5", d)
	}
	if got := buf.Channel(1)[150]; got != 0.5-1 {
		t.Errorf("Channel(1)[150] = %v, want -0.5", got)
	}
}

func TestReadAll_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("device unplugged")
	src := audiotest.NewSilentSource(8000, 1, 100)
	src.FailWith(boom)
	if _, err := audio.ReadAll(src); !errors.Is(err, boom) {
		t.Errorf("ReadAll() error = %v, want %v", err, boom)
	}

	if _, err := audio.ReadAll(audiotest.NewSilentSource(8000, 1, 0)); !errors.Is(err, audio.ErrEmptyBuffer) {
		t.Errorf("ReadAll(empty) error = %v, want ErrEmptyBuffer", err)
	}
}

func TestBuffer_FrameAt(t *testing.T) {
	t.Parallel()

	buf, err := audio.NewBuffer(100, [][]float32{make([]float32, 250)})
	if err != nil {
		t.Fatal(err)
	}

	for seconds, want := range map[float64]int{
		-1:    0,
		0:     0,
		0.5:   50,
		2.495: 249,
		2.5:   250,
		9:     250,
	} {
		if got := buf.FrameAt(seconds); got != want {
			t.Errorf("FrameAt(%v) = %d, want %d", seconds, got, want)
		}
	}
}

func TestBuffer_NewSource(t *testing.T) {
	t.Parallel()

	left := []float32{0, 1, 2, 3, 4, 5}
	right := []float32{0, -1, -2, -3, -4, -5}
	buf, err := audio.NewBuffer(2, [][]float32{left, right})
	if err != nil {
		t.Fatal(err)
	}

	got := readAll(t, buf.NewSource(1.5), 4)
	want := []float32{3, -3, 4, -4, 5, -5}
	if !slices.Equal(got, want) {
		t.Errorf("NewSource(1.5) read %v, want %v", got, want)
	}

	// Sources are independent.
	if first := readAll(t, buf.NewSource(0), 12); len(first) != 12 {
		t.Errorf("second source read %d samples, want 12", len(first))
	}

	src := buf.NewSource(0)
	if _, err := src.ReadSamples(make([]float32, 3)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("odd dst error = %v, want ErrInvalidDstSize", err)
	}

	end := buf.NewSource(10)
	if n, err := end.ReadSamples(make([]float32, 4)); n != 0 || err != io.EOF {
		t.Errorf("read past end = %d, %v; want 0, EOF", n, err)
	}
}
