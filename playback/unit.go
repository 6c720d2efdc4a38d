package playback

import (
	"github.com/google/uuid"
	"github.com/gopxl/beep/v2"

	"jsyn/command"
	"jsyn/node"
)

// Unit owns a node and the consumer half of its command channel. It is
// driven exclusively by the device callback: every Stream call is one block.
type Unit struct {
	id    uuid.UUID
	node  node.Node
	rx    *command.Consumer
	state State
}

var _ beep.Streamer = (*Unit)(nil)

// NewUnit creates a unit in the Playing state.
func NewUnit(id uuid.UUID, n node.Node, rx *command.Consumer) *Unit {
	return &Unit{
		id:   id,
		node: n,
		rx:   rx,
	}
}

// Stream drains pending commands, then fills samples from the node whatever
// the state is. It reports ok == false once the unit is stopped so the mixer drops it.
func (u *Unit) Stream(samples [][2]float64) (n int, ok bool) {
	u.drain()
	for i := range samples {
		samples[i][0], samples[i][1] = u.node.Frame()
	}
	return len(samples), !u.Finished()
}

func (u *Unit) Err() error {
	return nil
}

// Finished reports whether the unit reached the Stopped state.
func (u *Unit) Finished() bool {
	return u.state == Stopped
}

// State returns the current transport state. Only meaningful on the goroutine driving Stream.
func (u *Unit) State() State {
	return u.state
}

func (u *Unit) ID() uuid.UUID {
	return u.id
}

func (u *Unit) drain() {
	for {
		c, ok := u.rx.TryPop()
		if !ok {
			return
		}
		next, reset := u.state.Next(c)
		if reset {
			u.node.Reset()
		}
		u.state = next
	}
}
