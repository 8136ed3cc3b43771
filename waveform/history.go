// SPDX-License-Identifier: EPL-2.0

package waveform

import "sync"

// DefaultHistory is the number of ticks a History keeps.
const DefaultHistory = 1000

// History is a rolling record of per-tick time-domain averages. Values are
// on the byte scale, so silence sits at 128. It is safe for concurrent use.
type History struct {
	mu    sync.Mutex
	buf   []float64
	start int
	n     int
}

// NewHistory keeps the most recent size values. size <= 0 selects
// DefaultHistory.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistory
	}
	return &History{buf: make([]float64, size)}
}

// Push records the mean of one time-domain frame. Empty frames are ignored.
func (h *History) Push(timeDomain []uint8) {
	if len(timeDomain) == 0 {
		return
	}

	sum := 0
	for _, v := range timeDomain {
		sum += int(v)
	}
	avg := float64(sum) / float64(len(timeDomain))

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.n < len(h.buf) {
		h.buf[(h.start+h.n)%len(h.buf)] = avg
		h.n++
		return
	}
	h.buf[h.start] = avg
	h.start = (h.start + 1) % len(h.buf)
}

// Values returns the recorded values, oldest first.
func (h *History) Values() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]float64, h.n)
	for i := range out {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Len returns how many values have been pushed, up to Cap.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n
}

// Cap returns the history length.
func (h *History) Cap() int { return len(h.buf) }

// Reset drops every value.
func (h *History) Reset() {
	h.mu.Lock()
	h.start, h.n = 0, 0
	h.mu.Unlock()
}
