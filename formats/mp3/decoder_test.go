// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// chunkReader stands in for the go-mp3 decoder, returning at most step
// bytes per Read so odd splits can be exercised.
type chunkReader struct {
	rate int
	data []byte
	step int
	err  error
}

func (c *chunkReader) SampleRate() int { return c.rate }

func (c *chunkReader) Read(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := min(len(p), len(c.data))
	if c.step > 0 {
		n = min(n, c.step)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

func pcm16(samples ...int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

func readAll(t *testing.T, s *source, chunk int) []float32 {
	t.Helper()

	var out []float32
	buf := make([]float32, chunk)
	for range 1000 {
		n, err := s.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	t.Fatal("source never reached EOF")
	return nil
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	want := []float32{0.5, -0.5, 0, -1, 0.25, -0.25}
	data := pcm16(16384, -16384, 0, -32768, 8192, -8192)

	tests := []struct {
		name  string
		step  int
		chunk int
	}{
		{"whole", 0, 64},
		{"small dst", 0, 1},
		{"odd byte splits", 3, 4},
		{"single bytes", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := &source{
				dec:        &chunkReader{rate: 44100, data: bytes.Clone(data), step: tt.step},
				sampleRate: 44100,
			}
			got := readAll(t, s, tt.chunk)
			if len(got) != len(want) {
				t.Fatalf("got %d samples, want %d: %v", len(got), len(want), got)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	s := &source{dec: &chunkReader{rate: 22050}, sampleRate: 22050, buf: make([]byte, 8192)}
	if s.SampleRate() != 22050 {
		t.Errorf("SampleRate() = %d, want 22050", s.SampleRate())
	}
	if s.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", s.Channels())
	}
	if s.BufSize() != 4096 {
		t.Errorf("BufSize() = %d, want 4096", s.BufSize())
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	s := &source{dec: &chunkReader{err: io.ErrUnexpectedEOF}, sampleRate: 44100}
	if _, err := s.ReadSamples(make([]float32, 8)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	inputs := map[string][]byte{
		"empty": nil,
		"text":  bytes.Repeat([]byte("no frames here "), 8),
	}
	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(raw)); err == nil {
				t.Error("Decode() succeeded on non-MP3 input")
			}
		})
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int16, 8192)
	for i := range samples {
		samples[i] = int16(i * 7)
	}
	data := pcm16(samples...)
	buf := make([]float32, 1024)

	b.ReportAllocs()
	for b.Loop() {
		s := &source{dec: &chunkReader{rate: 44100, data: data}, sampleRate: 44100, buf: make([]byte, 2048)}
		for {
			if _, err := s.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
