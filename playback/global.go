package playback

import (
	"sync"

	"jsyn/config"
)

var (
	globalMu  sync.Mutex
	global    *Session
	globalErr error
)

// Init opens the process-wide session on first use. Later calls return the
// same session, or the same error if opening the device failed, until Shutdown.
func Init(cfg config.AudioConfig, dev Device) (*Session, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global == nil && globalErr == nil {
		global, globalErr = NewSession(cfg, dev)
	}
	return global, globalErr
}

// Current returns the process-wide session.
func Current() (*Session, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global == nil && globalErr == nil {
		return nil, ErrNotInitialized
	}
	return global, globalErr
}

// Shutdown closes the process-wide session, if any. It is safe to call
// repeatedly, and Init may open a new session afterwards.
func Shutdown() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	s := global
	global, globalErr = nil, nil
	if s == nil {
		return nil
	}
	return s.Close()
}
