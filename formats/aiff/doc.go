// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
//
// Integer PCM at 8, 16, 24 and 32 bits is supported. go-audio needs an
// io.ReadSeeker; other readers are buffered in memory first.
package aiff
