// Package node defines the opaque signal graph the playback layer drives,
// and the small set of graphs the jsyn host module can construct.
package node

import (
	"errors"
	"io"
	"math"
)

// Node is a signal graph producing one stereo frame per call.
// Frame and Reset are called from the audio callback and must not block or allocate.
type Node interface {
	Frame() (left, right float64)
	Reset()
}

// Sine is a sine oscillator.
type Sine struct {
	step  float64
	phase float64
}

// NewSine returns a sine oscillator at hz for the given sample rate.
func NewSine(hz float64, sampleRate int) *Sine {
	return &Sine{step: hz / float64(sampleRate)}
}

func (s *Sine) Frame() (float64, float64) {
	v := math.Sin(2 * math.Pi * s.phase)
	s.phase = wrap(s.phase + s.step)
	return v, v
}

func (s *Sine) Reset() {
	s.phase = 0
}

// Saw is a naive sawtooth oscillator ranging over [-1, 1).
type Saw struct {
	step  float64
	phase float64
}

// NewSaw returns a sawtooth oscillator at hz for the given sample rate.
func NewSaw(hz float64, sampleRate int) *Saw {
	return &Saw{step: hz / float64(sampleRate)}
}

func (s *Saw) Frame() (float64, float64) {
	v := 2*s.phase - 1
	s.phase = wrap(s.phase + s.step)
	return v, v
}

func (s *Saw) Reset() {
	s.phase = 0
}

// Mix sums the frames of its inputs.
type Mix struct {
	inputs []Node
}

// NewMix returns a node summing inputs. It takes ownership of them.
func NewMix(inputs ...Node) *Mix {
	return &Mix{inputs: inputs}
}

func (m *Mix) Frame() (left, right float64) {
	for _, in := range m.inputs {
		l, r := in.Frame()
		left += l
		right += r
	}
	return left, right
}

func (m *Mix) Reset() {
	for _, in := range m.inputs {
		in.Reset()
	}
}

// Close closes every input that holds releasable resources.
func (m *Mix) Close() error {
	var errs []error
	for _, in := range m.inputs {
		if c, ok := in.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// Inputs returns the nodes summed by m.
func (m *Mix) Inputs() []Node {
	return m.inputs
}

func wrap(phase float64) float64 {
	return phase - math.Floor(phase)
}
