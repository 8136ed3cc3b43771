// SPDX-License-Identifier: EPL-2.0

// Package waveform builds the fixed-resolution overview of a decoded track
// that the progress display draws and scrubs against, plus the rolling
// history used when no decoded track is available.
//
// A Profile always has exactly Points entries. Each entry averages one
// floor(N/Points) sample slice of the first channel:
//
//	p := waveform.Summarize(buf.Channel(0))
//	idx := waveform.ProgressIndex(position / duration)
//	fmt.Println(p[idx].SignedAverage)
package waveform
