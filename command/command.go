// Package command carries transport commands from a control goroutine to the
// audio callback over a bounded, lock-free, single-producer/single-consumer ring.
package command

import "fmt"

// DefaultCapacity is the number of commands a channel holds when no capacity is configured.
const DefaultCapacity = 8

// Command is a transport command for a single playback.
type Command uint8

const (
	Stop Command = iota
	Pause
	Resume
	Reset
)

func (c Command) String() string {
	switch c {
	case Stop:
		return "stop"
	case Pause:
		return "pause"
	case Resume:
		return "resume"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("command(%d)", uint8(c))
	}
}
