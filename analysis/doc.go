// SPDX-License-Identifier: EPL-2.0

// Package analysis turns the samples flowing through an audio.Tap into the
// per-frame values a visualiser consumes.
//
// An Analyzer behaves like a browser analysis node with a 512-point
// transform: 256 frequency magnitudes scaled to bytes over a decibel range,
// temporal smoothing between transforms, and 256 time-domain bytes centred
// at 128. A BandExtractor reduces the magnitudes to ten exponentially
// smoothed energies in [0,1]; Bars produces the coarser bar groups used for
// side spectrum displays.
package analysis
