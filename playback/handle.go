package playback

import (
	"github.com/google/uuid"

	"jsyn/command"
)

// Handle controls one playback unit from a non-realtime goroutine.
// It owns the producer half of the unit's command channel, so a Handle must
// not be shared between goroutines. Dropping a handle does not stop playback.
type Handle struct {
	id uuid.UUID
	tx *command.Producer
}

func newHandle(id uuid.UUID, tx *command.Producer) *Handle {
	return &Handle{id: id, tx: tx}
}

// ID returns the id shared with the controlled unit.
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// Stop ends playback. The unit is torn down after the next block.
func (h *Handle) Stop() error {
	return h.send(command.Stop)
}

// Pause moves a playing unit to Paused.
func (h *Handle) Pause() error {
	return h.send(command.Pause)
}

// Resume moves a paused unit back to Playing.
func (h *Handle) Resume() error {
	return h.send(command.Resume)
}

// Reset returns the node to its initial condition unless the unit is stopped.
func (h *Handle) Reset() error {
	return h.send(command.Reset)
}

// Close releases the producer half. Playback is unaffected.
func (h *Handle) Close() {
	h.tx = nil
}

func (h *Handle) String() string {
	return "handle " + h.id.String()
}

func (h *Handle) send(c command.Command) error {
	if h.tx == nil {
		return &CommandError{Command: c, Err: ErrHandleClosed}
	}
	if err := h.tx.TryPush(c); err != nil {
		return &CommandError{Command: c, Err: err}
	}
	return nil
}
