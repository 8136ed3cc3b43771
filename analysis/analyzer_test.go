// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/ik5/audvis/audio"
)

// binSine returns FFTSize samples of a sine completing exactly bin cycles.
func binSine(bin int, amp float64) []float32 {
	out := make([]float32, FFTSize)
	for i := range out {
		out[i] = float32(amp * math.Sin(2*math.Pi*float64(bin)*float64(i)/FFTSize))
	}
	return out
}

func TestAnalyzer_NoActiveSource(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer()

	if _, err := a.FrequencyData(); !errors.Is(err, ErrNoActiveSource) {
		t.Errorf("FrequencyData() error = %v, want ErrNoActiveSource", err)
	}
	if _, err := a.TimeDomainData(); !errors.Is(err, ErrNoActiveSource) {
		t.Errorf("TimeDomainData() error = %v, want ErrNoActiveSource", err)
	}

	a.Connect(audio.NewTap(FFTSize))
	a.Disconnect()
	if a.Connected() {
		t.Error("Connected() = true after Disconnect")
	}
	if _, err := a.FrequencyData(); !errors.Is(err, ErrNoActiveSource) {
		t.Errorf("FrequencyData() after Disconnect error = %v, want ErrNoActiveSource", err)
	}
}

func TestAnalyzer_Silence(t *testing.T) {
	t.Parallel()

	tap := audio.NewTap(FFTSize)
	tap.Write(make([]float32, FFTSize))

	a := NewAnalyzer()
	a.Connect(tap)

	freq, err := a.FrequencyData()
	if err != nil {
		t.Fatalf("FrequencyData() error = %v", err)
	}
	if len(freq) != BinCount {
		t.Fatalf("len(FrequencyData()) = %d, want %d", len(freq), BinCount)
	}
	for i, v := range freq {
		if v != 0 {
			t.Fatalf("freq[%d] = %d, want 0 for silence", i, v)
		}
	}

	td, err := a.TimeDomainData()
	if err != nil {
		t.Fatalf("TimeDomainData() error = %v", err)
	}
	if len(td) != BinCount {
		t.Fatalf("len(TimeDomainData()) = %d, want %d", len(td), BinCount)
	}
	for i, v := range td {
		if v != 128 {
			t.Fatalf("td[%d] = %d, want 128 for silence", i, v)
		}
	}
}

func TestAnalyzer_PeakBin(t *testing.T) {
	t.Parallel()

	tap := audio.NewTap(FFTSize)
	a := NewAnalyzer()
	a.Connect(tap)

	var freq []uint8
	for range 30 {
		tap.Write(binSine(32, 0.8))
		var err error
		if freq, err = a.FrequencyData(); err != nil {
			t.Fatalf("FrequencyData() error = %v", err)
		}
	}

	if freq[32] != slices.Max(freq) {
		t.Errorf("freq[32] = %d is not the peak %d", freq[32], slices.Max(freq))
	}
	if freq[32] < 200 {
		t.Errorf("freq[32] = %d, want a strong magnitude", freq[32])
	}
	if freq[120] >= freq[32] {
		t.Errorf("freq[120] = %d should be far below freq[32] = %d", freq[120], freq[32])
	}
}

func TestAnalyzer_IdempotentPull(t *testing.T) {
	t.Parallel()

	tap := audio.NewTap(FFTSize)
	tap.Write(binSine(10, 0.5))

	a := NewAnalyzer()
	a.Connect(tap)

	first, _ := a.FrequencyData()
	second, _ := a.FrequencyData()
	if !slices.Equal(first, second) {
		t.Error("FrequencyData() changed without new input")
	}

	// New input advances the smoothing toward the louder signal.
	tap.Write(binSine(10, 0.5))
	third, _ := a.FrequencyData()
	if third[10] < first[10] {
		t.Errorf("freq[10] went from %d to %d with the same tone repeated", first[10], third[10])
	}
}

func TestAnalyzer_TimeDomainNewest(t *testing.T) {
	t.Parallel()

	tap := audio.NewTap(FFTSize)
	samples := make([]float32, FFTSize)
	for i := FFTSize - BinCount; i < FFTSize; i++ {
		samples[i] = 0.5
	}
	tap.Write(samples)

	a := NewAnalyzer()
	a.Connect(tap)

	td, err := a.TimeDomainData()
	if err != nil {
		t.Fatalf("TimeDomainData() error = %v", err)
	}
	for i, v := range td {
		if v != 192 {
			t.Fatalf("td[%d] = %d, want 192", i, v)
		}
	}
}

func TestAnalyzer_Options(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(WithSmoothing(0), WithDecibelRange(-90, -10))
	if a.smoothing != 0 {
		t.Errorf("smoothing = %v, want 0", a.smoothing)
	}
	if a.minDB != -90 || a.maxDB != -10 {
		t.Errorf("decibel range = [%v, %v], want [-90, -10]", a.minDB, a.maxDB)
	}

	// An inverted range is ignored.
	b := NewAnalyzer(WithDecibelRange(0, -50))
	if b.minDB != DefaultMinDecibels || b.maxDB != DefaultMaxDecibels {
		t.Errorf("inverted range applied: [%v, %v]", b.minDB, b.maxDB)
	}
}

func BenchmarkAnalyzer_FrequencyData(b *testing.B) {
	tap := audio.NewTap(FFTSize)
	a := NewAnalyzer()
	a.Connect(tap)
	tone := binSine(40, 0.7)

	b.ReportAllocs()
	for range b.N {
		tap.Write(tone)
		_, _ = a.FrequencyData()
	}
}
