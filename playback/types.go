package playback

import (
	"fmt"

	"github.com/gopxl/beep/v2"

	"jsyn/command"
)

// State is the transport state of a single playback unit.
type State uint8

const (
	Playing State = iota
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Next returns the state reached by applying c to s, and whether the node
// must be reset as a side effect. Stopped is terminal.
func (s State) Next(c command.Command) (next State, reset bool) {
	if s == Stopped {
		return Stopped, false
	}
	switch c {
	case command.Stop:
		return Stopped, false
	case command.Pause:
		return Paused, false
	case command.Resume:
		return Playing, false
	case command.Reset:
		return s, true
	default:
		return s, false
	}
}

// Device is the audio backend a Session schedules its mixer on.
// The device calls the streamer passed to Play from its own callback goroutine;
// Lock and Unlock exclude that callback while the mixer is modified.
type Device interface {
	Open(sampleRate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Close()
}
