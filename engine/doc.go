// SPDX-License-Identifier: EPL-2.0

// Package engine is the mode controller that ties capture, decoding,
// analysis and playback together.
//
// An Engine owns every piece of mutable state: the active source, the
// playback tracker, the waveform profile, the scrub state and the band
// smoother. Rendering layers call Tick once per frame and read the returned
// Frame; user input maps to SelectMicrophone, SelectFile, TogglePlayPause,
// Seek and the Scrub methods.
//
// Source acquisition (opening the microphone, decoding a file) runs without
// the engine lock. Each acquisition takes a generation number first; when
// it completes, it commits only if no newer acquisition has started since,
// otherwise it releases what it acquired and returns ErrSuperseded.
package engine
