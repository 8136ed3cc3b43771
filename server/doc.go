// SPDX-License-Identifier: EPL-2.0

// Package server exposes the engine over HTTP.
//
// A renderer connects to /ws and receives one frame message per tick. The
// same connection carries commands ("toggle", "seek", "scrub_begin",
// "scrub_update", "scrub_end", "scrub_cancel", "microphone", "load"); every
// command is answered with a "<type>_result" message. Raw files can also be
// posted to /upload, and /waveform returns the profile of the loaded file.
package server
