// SPDX-License-Identifier: EPL-2.0

// Package device binds the engine to real hardware through PortAudio.
//
// portaudio.Initialize must be called before opening anything here and
// portaudio.Terminate after everything is closed:
//
//	if err := portaudio.Initialize(); err != nil { ... }
//	defer portaudio.Terminate()
//
// Debian: apt-get install portaudio19-dev, macOS: brew install portaudio.
package device
