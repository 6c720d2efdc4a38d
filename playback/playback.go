package playback

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"jsyn/command"
	"jsyn/config"
	"jsyn/logger"
	"jsyn/node"
)

// Session owns the connection to the audio device and the mixer every
// playback unit is scheduled on. The device drops a unit from the mixer once
// it reports itself finished.
type Session struct {
	cfg    config.AudioConfig
	dev    Device
	mixer  *beep.Mixer
	volume *effects.Volume
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewSession opens dev and starts streaming an empty mixer through it.
func NewSession(cfg config.AudioConfig, dev Device) (*Session, error) {
	sampleRate := beep.SampleRate(cfg.SampleRate)
	if err := dev.Open(sampleRate, sampleRate.N(cfg.Buffer)); err != nil {
		return nil, &DeviceInitError{Err: err}
	}

	mixer := &beep.Mixer{}
	volume := &effects.Volume{
		Streamer: mixer,
		Base:     2,
		Volume:   cfg.Volume,
	}

	s := &Session{
		cfg:    cfg,
		dev:    dev,
		mixer:  mixer,
		volume: volume,
		logger: logger.WithComponent("playback"),
	}

	dev.Play(volume)

	s.logger.Info("Audio session opened",
		slog.Int("sample_rate", cfg.SampleRate),
		slog.Duration("buffer", cfg.Buffer))

	return s, nil
}

// Play schedules n on the device and returns the handle controlling it.
// Ownership of n passes to the session; on failure the returned
// *PlaySoundError carries n back to the caller.
func (s *Session) Play(n node.Node) (*Handle, error) {
	_, h, err := s.play(n)
	return h, err
}

func (s *Session) play(n node.Node) (*Unit, *Handle, error) {
	if isNil(n) {
		return nil, nil, &PlaySoundError{Reason: ErrNilNode}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil, &PlaySoundError{Reason: ErrSessionClosed, Node: n}
	}

	id := uuid.New()
	tx, rx := command.New(s.cfg.CommandCapacity)
	unit := NewUnit(id, n, rx)

	s.dev.Lock()
	if s.mixer.Len() >= s.cfg.MaxSounds {
		s.dev.Unlock()
		return nil, nil, &PlaySoundError{Reason: ErrSoundLimitReached, Node: n}
	}
	s.mixer.Add(unit)
	s.dev.Unlock()

	s.logger.Debug("Playback unit scheduled", slog.String("id", id.String()))

	return unit, newHandle(id, tx), nil
}

// isNil also catches a nil pointer stored in a non-nil Node.
func isNil(n node.Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Len returns the number of units still scheduled.
func (s *Session) Len() int {
	s.dev.Lock()
	defer s.dev.Unlock()
	return s.mixer.Len()
}

// SetVolume sets the master gain in base 2 steps, 0 being unity.
func (s *Session) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.dev.Lock()
		s.volume.Volume = volume
		s.dev.Unlock()
	}
}

// Close drops every scheduled unit and releases the device. Commands still
// queued for those units are never delivered. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.dev.Lock()
	dropped := s.mixer.Len()
	s.mixer.Clear()
	s.dev.Unlock()

	s.dev.Close()

	s.logger.Info("Audio session closed", slog.Int("dropped_units", dropped))

	return nil
}
