// SPDX-License-Identifier: EPL-2.0

// Package audvis is an audio analysis and playback-state engine for
// audio-reactive visualisations.
//
// It turns live microphone input or an uploaded file into the values a
// renderer needs every frame: smoothed frequency band energies, raw frequency
// and time-domain bytes, a fixed 2000-point waveform profile and a playback
// position that stays consistent across pause, seek and scrub.
//
// # Packages
//
//   - audio: the Source interface, in-memory Buffer, Tap, Resampler, MonoMixer
//   - formats: WAV, MP3, Ogg Vorbis and AIFF decoders plus content sniffing
//   - analysis: the FFT analyzer, band extractor and frequency bars
//   - waveform: the file waveform profile and the live scrolling history
//   - playback: the position tracker and the two transports
//   - engine: the mode controller that owns all of the above
//   - device: PortAudio capture and output
//   - server: WebSocket frame feed and command channel
//
// # Decoding
//
// DecodeBytes recognises the container from the bytes themselves:
//
//	raw, _ := os.ReadFile("track.ogg")
//	buf, err := audvis.DecodeBytes(ctx, raw)
//	if errors.Is(err, audvis.ErrDecodeFailure) {
//	    // fall back to streamed playback
//	}
//	fmt.Println(buf.Duration(), buf.NumChannels())
package audvis
