// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"maps"
	"slices"
	"sync"
)

// Source is a pull-based stream of interleaved float32 PCM in [-1,1].
//
// ReadSamples reports the number of values written, not frames. A stream is
// finished once it returns io.EOF; n may be non-zero on that same call.
type Source interface {
	SampleRate() int
	Channels() int
	ReadSamples(dst []float32) (n int, err error)
	// BufSize is the read size the source prefers, in values.
	BufSize() int
	Close() error
}

// Decoder opens a container and exposes its audio as a Source.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry looks decoders up by container key ("wav", "mp3", ...).
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]Decoder)}
}

// Register adds d under key, replacing any previous decoder.
func (r *Registry) Register(key string, d Decoder) {
	r.mu.Lock()
	r.decoders[key] = d
	r.mu.Unlock()
}

func (r *Registry) Get(key string) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.decoders[key]
	return d, ok
}

// Formats returns the registered keys in sorted order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.decoders))
}
