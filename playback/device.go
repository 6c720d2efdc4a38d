package playback

import (
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// SpeakerDevice plays through the default output using the beep speaker.
// The speaker is process-wide, so only one SpeakerDevice should be open at a time.
type SpeakerDevice struct{}

var _ Device = SpeakerDevice{}

// NewSpeakerDevice returns the speaker backed device.
func NewSpeakerDevice() SpeakerDevice {
	return SpeakerDevice{}
}

func (SpeakerDevice) Open(sampleRate beep.SampleRate, bufferSize int) error {
	return speaker.Init(sampleRate, bufferSize)
}

func (SpeakerDevice) Play(s beep.Streamer) {
	speaker.Play(s)
}

func (SpeakerDevice) Lock() {
	speaker.Lock()
}

func (SpeakerDevice) Unlock() {
	speaker.Unlock()
}

func (SpeakerDevice) Close() {
	speaker.Clear()
	speaker.Close()
}
