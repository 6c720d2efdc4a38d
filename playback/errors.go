package playback

import (
	"errors"
	"fmt"

	"jsyn/command"
	"jsyn/node"
)

var (
	ErrSessionClosed     = errors.New("session closed")
	ErrSoundLimitReached = errors.New("sound limit reached")
	ErrNilNode           = errors.New("nil node")
	ErrHandleClosed      = errors.New("handle closed")
	ErrNotInitialized    = errors.New("session not initialized")
)

// CommandError is returned by Handle methods when a command was not enqueued.
type CommandError struct {
	Command command.Command
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("failed to send %s command: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// DeviceInitError is returned when the audio device could not be opened.
type DeviceInitError struct {
	Err error
}

func (e *DeviceInitError) Error() string {
	return fmt.Sprintf("failed to initialize audio device: %v", e.Err)
}

func (e *DeviceInitError) Unwrap() error {
	return e.Err
}

// PlaySoundError is returned when a node could not be scheduled.
// Node hands the rejected node back to the caller.
type PlaySoundError struct {
	Reason error
	Node   node.Node
}

func (e *PlaySoundError) Error() string {
	return fmt.Sprintf("failed to play sound: %v", e.Reason)
}

func (e *PlaySoundError) Unwrap() error {
	return e.Reason
}
