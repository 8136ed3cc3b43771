// SPDX-License-Identifier: EPL-2.0

package engine

// Mode is the controller state.
type Mode int

const (
	Idle Mode = iota
	Microphone
	FilePlaying
	FilePaused
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Microphone:
		return "microphone"
	case FilePlaying:
		return "playing"
	case FilePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// MarshalText renders the mode name for JSON frames.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// HasFile reports whether a file is loaded.
func (m Mode) HasFile() bool { return m == FilePlaying || m == FilePaused }
