// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

// wavFile builds a canonical WAV around raw sample bytes.
func wavFile(format, sampleRate, channels, bits int, data []byte) []byte {
	blockAlign := channels * bits / 8

	var b bytes.Buffer
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(36+len(data)))
	b.WriteString("WAVEfmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	_ = binary.Write(&b, binary.LittleEndian, uint16(format))
	_ = binary.Write(&b, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&b, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&b, binary.LittleEndian, uint32(sampleRate*blockAlign))
	_ = binary.Write(&b, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&b, binary.LittleEndian, uint16(bits))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, uint32(len(data)))
	b.Write(data)

	return b.Bytes()
}

func decodeAll(t *testing.T, r io.Reader) (rate, channels int, samples []float32) {
	t.Helper()

	src, err := Decoder{}.Decode(r)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer src.Close()

	buf := make([]float32, 64)
	for {
		n, err := src.ReadSamples(buf)
		samples = append(samples, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	return src.SampleRate(), src.Channels(), samples
}

func TestDecoder_BitDepths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bits int
		data []byte
	}{
		{"unsigned 8-bit", 8, []byte{192, 64, 128, 0}},
		{"16-bit", 16, []byte{0x00, 0x40, 0x00, 0xC0, 0x00, 0x00, 0x00, 0x80}},
		{"24-bit", 24, []byte{
			0x00, 0x00, 0x40,
			0x00, 0x00, 0xC0,
			0x00, 0x00, 0x00,
			0x00, 0x00, 0x80,
		}},
		{"32-bit", 32, []byte{
			0x00, 0x00, 0x00, 0x40,
			0x00, 0x00, 0x00, 0xC0,
			0x00, 0x00, 0x00, 0x00,
			0x00, 0x00, 0x00, 0x80,
		}},
	}
	want := []float32{0.5, -0.5, 0, -1}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			file := wavFile(formatPCM, 8000, 2, tt.bits, tt.data)
			rate, channels, got := decodeAll(t, bytes.NewReader(file))
			if rate != 8000 || channels != 2 {
				t.Errorf("format = %d ch @ %d", channels, rate)
			}
			if len(got) != len(want) {
				t.Fatalf("decoded %d samples, want %d", len(got), len(want))
			}
			for i := range want {
				if math.Abs(float64(got[i]-want[i])) > 1e-6 {
					t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
				}
			}
		})
	}
}

func TestDecoder_NonSeekableInput(t *testing.T) {
	t.Parallel()

	var file bytes.Buffer
	if err := WriteWAV16(&file, 22050, 1, []int16{16384, -16384, 0}); err != nil {
		t.Fatal(err)
	}

	// Hide the Seek method of bytes.Reader.
	r := struct{ io.Reader }{bytes.NewReader(file.Bytes())}
	rate, _, got := decodeAll(t, r)
	if rate != 22050 || len(got) != 3 || got[0] != 0.5 || got[1] != -0.5 {
		t.Errorf("decoded %v @ %d", got, rate)
	}
}

func TestDecoder_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"not riff", []byte("this is not a wav file at all, just text"), ErrNotWavFile},
		{"float encoding", wavFile(3, 8000, 1, 32, make([]byte, 16)), ErrUnsupportedEncoding},
		{"12-bit", wavFile(formatPCM, 8000, 1, 12, make([]byte, 16)), ErrUnsupportedBitDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSource_ZeroLengthRead(t *testing.T) {
	t.Parallel()

	src, err := Decoder{}.Decode(bytes.NewReader(wavFile(formatPCM, 8000, 1, 16, []byte{0, 0})))
	if err != nil {
		t.Fatal(err)
	}
	if n, err := src.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = %d, %v", n, err)
	}
}

func BenchmarkDecoder_ReadSamples(b *testing.B) {
	samples := make([]int16, 48000*2)
	for i := range samples {
		samples[i] = int16(i)
	}
	var file bytes.Buffer
	if err := WriteWAV16(&file, 48000, 2, samples); err != nil {
		b.Fatal(err)
	}
	data := file.Bytes()
	buf := make([]float32, 4096)

	b.ReportAllocs()
	for b.Loop() {
		src, err := Decoder{}.Decode(bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
