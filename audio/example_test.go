// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"fmt"
	"io"

	"github.com/ik5/audvis/audio"
	"github.com/ik5/audvis/internal/audiotest"
)

// Example_resampler converts a device-rate tone to the rate of the output.
func Example_resampler() {
	source := audiotest.NewSineSource(44100, 1, 44100, 440.0) // 1 second

	resampler := audio.NewResampler(source, 16000)
	fmt.Printf("Output sample rate: %d Hz\n", resampler.SampleRate())

	buf := make([]float32, 4096)
	total := 0
	for {
		n, err := resampler.ReadSamples(buf)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
	}

	fmt.Printf("Duration: %.2f seconds\n", float64(total)/float64(resampler.SampleRate()))
	// Output:
	// Output sample rate: 16000 Hz
	// Duration: 1.00 seconds
}

// Example_buffer decodes into memory once and plays from any offset.
func Example_buffer() {
	buf, err := audio.ReadAll(audiotest.NewConstantSource(8000, 2, 16000, 0.5))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%d channels, %.1f seconds\n", buf.NumChannels(), buf.Duration())

	src := buf.NewSource(1.5)
	frames := 0
	samples := make([]float32, 1024)
	for {
		n, err := src.ReadSamples(samples)
		frames += n / src.Channels()
		if err != nil {
			break
		}
	}
	fmt.Printf("%d frames left after 1.5 seconds\n", frames)
	// Output:
	// 2 channels, 2.0 seconds
	// 4000 frames left after 1.5 seconds
}

// Example_tap shows the analysis tap seeing what the output pulls.
func Example_tap() {
	tap := audio.NewTap(512)

	// Stereo file audio fitted to the device and tapped on the way.
	playing := tap.Wrap(audio.FitChannels(audiotest.NewConstantSource(48000, 1, 1000, 0.25), 2))

	out := make([]float32, 2*256)
	n, _ := playing.ReadSamples(out)
	fmt.Printf("output got %d samples over %d channels\n", n, playing.Channels())

	latest := make([]float32, 4)
	written := tap.Latest(latest)
	fmt.Printf("tap saw %d frames, newest %v\n", written, latest)
	// Output:
	// output got 512 samples over 2 channels
	// tap saw 256 frames, newest [0.25 0.25 0.25 0.25]
}

// Example_processingChain resamples and mixes down in one pipeline.
func Example_processingChain() {
	source := audiotest.NewSineSource(44100, 2, 44100, 440.0)
	mono := audio.NewMonoMixer(audio.NewResampler(source, 8000))

	fmt.Printf("Sample rate: %d Hz, channels: %d\n", mono.SampleRate(), mono.Channels())
	// Output:
	// Sample rate: 8000 Hz, channels: 1
}
