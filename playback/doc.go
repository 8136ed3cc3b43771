// SPDX-License-Identifier: EPL-2.0

// Package playback tracks the playing position of a file-backed source.
//
// A Tracker owns a Transport and keeps one authoritative PlaybackState:
// while playing, the position is offset + (now - start); while paused the
// stored offset alone is the position. Resuming never re-adds elapsed time.
//
// Two transports are provided. BufferTransport plays a fully decoded
// audio.Buffer through an Output device and is sample accurate.
// ElementTransport streams raw file bytes through an ffmpeg subprocess for
// containers the built-in decoders cannot handle; its duration comes from
// ffprobe and is approximate.
package playback
