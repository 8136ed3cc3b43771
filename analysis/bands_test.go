// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"math"
	"testing"
)

func TestRawBands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		freq func() []uint8
		want BandEnergies
	}{
		{
			name: "full scale",
			freq: func() []uint8 {
				f := make([]uint8, BinCount)
				for i := range f {
					f[i] = 255
				}
				return f
			},
			want: BandEnergies{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		},
		{
			name: "remainder bins are dropped",
			freq: func() []uint8 {
				f := make([]uint8, BinCount)
				for i := 250; i < BinCount; i++ {
					f[i] = 255
				}
				return f
			},
			want: BandEnergies{},
		},
		{
			name: "only the first group",
			freq: func() []uint8 {
				f := make([]uint8, BinCount)
				for i := range 25 {
					f[i] = 51
				}
				return f
			},
			want: BandEnergies{0.2},
		},
		{
			name: "too few bins",
			freq: func() []uint8 { return make([]uint8, 9) },
			want: BandEnergies{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := RawBands(tt.freq())
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("band[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBandExtractor_Converges(t *testing.T) {
	t.Parallel()

	freq := make([]uint8, BinCount)
	for i := range freq {
		freq[i] = uint8(i)
	}
	raw := RawBands(freq)

	for _, alpha := range []float64{0.15, 0.3, 0.45} {
		b := NewBandExtractor(alpha)
		for range 200 {
			b.Update(freq)
		}
		got := b.Bands()
		for i := range got {
			if math.Abs(got[i]-raw[i]) > 1e-6 {
				t.Errorf("alpha %v band %d = %v, want ≈%v", alpha, i, got[i], raw[i])
			}
		}
	}
}

func TestBandExtractor_FirstStep(t *testing.T) {
	t.Parallel()

	freq := make([]uint8, BinCount)
	for i := range freq {
		freq[i] = 255
	}

	b := NewBandExtractor(0.45)
	got := b.Update(freq)
	for i, v := range got {
		if math.Abs(v-0.45) > 1e-9 {
			t.Errorf("band[%d] after one tick = %v, want 0.45", i, v)
		}
	}
}

func TestBandExtractor_DecayAndReset(t *testing.T) {
	t.Parallel()

	freq := make([]uint8, BinCount)
	for i := range freq {
		freq[i] = 200
	}

	b := NewBandExtractor(0.3)
	for range 50 {
		b.Update(freq)
	}
	before := b.Bands()[0]
	after := b.Update(nil)[0]
	if after >= before {
		t.Errorf("nil frame did not decay: %v -> %v", before, after)
	}

	b.Reset()
	if b.Bands() != (BandEnergies{}) {
		t.Errorf("Reset() left %v", b.Bands())
	}
}

func TestBandExtractor_StaysInRange(t *testing.T) {
	t.Parallel()

	b := NewBandExtractor(1)
	freq := make([]uint8, BinCount)
	for tick := range 100 {
		for i := range freq {
			freq[i] = uint8((tick * 37 * (i + 1)) % 256)
		}
		for i, v := range b.Update(freq) {
			if v < 0 || v > 1 {
				t.Fatalf("tick %d band %d = %v outside [0,1]", tick, i, v)
			}
		}
	}
}
