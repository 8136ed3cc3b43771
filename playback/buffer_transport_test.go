// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"testing"

	"github.com/ik5/audvis/audio"
	"github.com/ik5/audvis/internal/audiotest"
)

func monoBuffer(t *testing.T, rate, frames int, value float32) *audio.Buffer {
	t.Helper()

	ch := make([]float32, frames)
	for i := range ch {
		ch[i] = value
	}
	buf, err := audio.NewBuffer(rate, [][]float32{ch})
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}
	return buf
}

func TestBufferTransport_StartFeedsOutputAndTap(t *testing.T) {
	t.Parallel()

	buf := monoBuffer(t, 1000, 2000, 0.5)
	out := audiotest.NewOutput(1000)
	tap := audio.NewTap(512)
	tr := NewBufferTransport(buf, out, tap)

	if got := tr.Duration(); got != 2 {
		t.Fatalf("Duration() = %v, want 2", got)
	}
	if err := tr.Start(1.5, nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if out.Source().Channels() != 2 {
		t.Errorf("output source channels = %d, want 2", out.Source().Channels())
	}

	frames := out.Pull(1000)
	if frames != 500 {
		t.Errorf("Pull() = %d frames, want the 500 after the 1.5s offset", frames)
	}
	if tap.Written() != 500 {
		t.Errorf("tap saw %d samples, want 500", tap.Written())
	}

	latest := make([]float32, 1)
	tap.Latest(latest)
	if latest[0] != 0.5 {
		t.Errorf("tap sample = %v, want 0.5", latest[0])
	}
}

func TestBufferTransport_EndOfMediaReachesTracker(t *testing.T) {
	t.Parallel()

	buf := monoBuffer(t, 1000, 100, 0.1)
	out := audiotest.NewOutput(1000)

	ended := false
	tk := NewTracker(NewBufferTransport(buf, out, nil), WithClock(audiotest.NewClock()), OnEnded(func() { ended = true }))
	if err := tk.Play(0); err != nil {
		t.Fatalf("Play() error = %v", err)
	}

	out.Pull(4096)

	if !ended {
		t.Fatal("end of buffer did not reach the tracker")
	}
	if !tk.Paused() || tk.Position() != 0 {
		t.Errorf("after end: paused=%v pos=%v, want paused at 0", tk.Paused(), tk.Position())
	}
	if out.Active() {
		t.Error("output still active after end")
	}
}

func TestBufferTransport_Resamples(t *testing.T) {
	t.Parallel()

	buf := monoBuffer(t, 22050, 22050, 0.25)
	out := audiotest.NewOutput(44100)
	tr := NewBufferTransport(buf, out, nil)

	if err := tr.Start(0, nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := out.Source().SampleRate(); got != 44100 {
		t.Errorf("output source rate = %d, want 44100", got)
	}

	frames := 0
	for range 100 {
		n := out.Pull(4096)
		frames += n
		if n == 0 {
			break
		}
	}
	if frames < 44000 || frames > 44200 {
		t.Errorf("played %d frames, want ≈44100", frames)
	}
}

func TestBufferTransport_FailedStartKeepsPrevious(t *testing.T) {
	t.Parallel()

	buf := monoBuffer(t, 1000, 1000, 0.1)
	out := audiotest.NewOutput(1000)
	tr := NewBufferTransport(buf, out, nil)

	_ = tr.Start(0, nil)
	prev := out.Source()

	out.FailNext(errDeviceBusy)
	if err := tr.Start(0.5, nil); err == nil {
		t.Fatal("Start() error = nil, want failure")
	}
	if out.Source() != prev {
		t.Error("failed Start replaced the playing source")
	}
}
