// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/ik5/audvis/audio"
	"github.com/ik5/audvis/utils"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

const (
	// FFTSize is the transform length in samples.
	FFTSize = 512
	// BinCount is the number of frequency bins produced per transform.
	BinCount = FFTSize / 2

	DefaultSmoothing   = 0.8
	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0
)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSmoothing sets the temporal smoothing constant in [0,1).
func WithSmoothing(tau float64) Option {
	return func(a *Analyzer) { a.smoothing = utils.Clamp(tau, 0, 0.999) }
}

// WithDecibelRange sets the range mapped onto byte magnitudes 0..255.
func WithDecibelRange(minDB, maxDB float64) Option {
	return func(a *Analyzer) {
		if maxDB > minDB {
			a.minDB, a.maxDB = minDB, maxDB
		}
	}
}

// Analyzer samples the connected tap. Pulls are idempotent: until new audio
// reaches the tap, repeated calls return the same data and the smoothing
// state does not advance. It is safe for concurrent use.
type Analyzer struct {
	mu        sync.Mutex
	smoothing float64
	minDB     float64
	maxDB     float64

	tap     *audio.Tap
	seen    uint64
	primed  bool
	win     []float64
	in      []float32
	frame   []float64
	smooth  []float64
	freq    []uint8
	samples []uint8
}

// NewAnalyzer returns an analyzer with nothing connected.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		smoothing: DefaultSmoothing,
		minDB:     DefaultMinDecibels,
		maxDB:     DefaultMaxDecibels,
		win:       window.Blackman(FFTSize),
		in:        make([]float32, FFTSize),
		frame:     make([]float64, FFTSize),
		smooth:    make([]float64, BinCount),
		freq:      make([]uint8, BinCount),
		samples:   make([]uint8, BinCount),
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Connect makes tap the active source, replacing any previous one. The
// smoothing history starts from silence.
func (a *Analyzer) Connect(tap *audio.Tap) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.tap = tap
	a.primed = false
	clear(a.smooth)
}

// Disconnect detaches the active source.
func (a *Analyzer) Disconnect() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.tap = nil
	a.primed = false
}

// Connected reports whether a source is attached.
func (a *Analyzer) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tap != nil
}

// FrequencyData returns BinCount magnitudes in 0..255.
func (a *Analyzer) FrequencyData() ([]uint8, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.refresh(); err != nil {
		return nil, err
	}
	return append([]uint8(nil), a.freq...), nil
}

// TimeDomainData returns the newest BinCount samples as bytes centred at 128.
func (a *Analyzer) TimeDomainData() ([]uint8, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.refresh(); err != nil {
		return nil, err
	}
	return append([]uint8(nil), a.samples...), nil
}

// refresh recomputes both outputs if the tap has advanced. Callers hold mu.
func (a *Analyzer) refresh() error {
	if a.tap == nil {
		return ErrNoActiveSource
	}

	written := a.tap.Latest(a.in)
	if a.primed && written == a.seen {
		return nil
	}
	a.seen = written
	a.primed = true

	for i, v := range a.in[FFTSize-BinCount:] {
		a.samples[i] = utils.Float32ToByte(v)
	}

	for i, v := range a.in {
		a.frame[i] = float64(v) * a.win[i]
	}
	spectrum := fft.FFTReal(a.frame)

	scale := 255 / (a.maxDB - a.minDB)
	for k := range BinCount {
		mag := cmplx.Abs(spectrum[k]) / FFTSize
		a.smooth[k] = a.smoothing*a.smooth[k] + (1-a.smoothing)*mag

		db := math.Inf(-1)
		if a.smooth[k] > 0 {
			db = 20 * math.Log10(a.smooth[k])
		}
		a.freq[k] = uint8(utils.Clamp(math.Floor(scale*(db-a.minDB)), 0, 255))
	}

	return nil
}
