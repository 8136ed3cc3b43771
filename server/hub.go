// SPDX-License-Identifier: EPL-2.0

package server

import (
	"sync"

	"github.com/ik5/audvis/engine"
)

// hub fans frames out to connections. A connection that falls behind sees
// only the newest frame.
type hub struct {
	mu   sync.Mutex
	subs map[chan engine.Frame]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[chan engine.Frame]struct{})}
}

func (h *hub) subscribe() (<-chan engine.Frame, func()) {
	ch := make(chan engine.Frame, 1)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

func (h *hub) publish(f engine.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- f:
			continue
		default:
		}
		// Replace the stale frame.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- f:
		default:
		}
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
