// Package jsyn exposes signal graphs and their playback to host scripts.
package jsyn

import (
	"errors"
	"fmt"
	"log/slog"

	"jsyn/foreign"
	"jsyn/host"
	"jsyn/logger"
	"jsyn/node"
	"jsyn/playback"
)

// ErrNotRestored reports a node that could not be handed back to its net
// reference after a failed hand-off. The node has been torn down.
var ErrNotRestored = errors.New("net could not take back its node")

// Opener returns the session play schedules on, usually playback.Current.
// It is called on every play.
type Opener func() (*playback.Session, error)

type module struct {
	sampleRate int
	open       Opener
	logger     *slog.Logger
}

// New returns the jsyn module. Constructors build nodes for sampleRate.
func New(sampleRate int, open Opener) *host.Module {
	m := &module{
		sampleRate: sampleRate,
		open:       open,
		logger:     logger.WithComponent("jsyn"),
	}

	mod := host.NewModule("jsyn").
		Func("sine-hz", m.oscillator(func(hz float64) node.Node { return node.NewSine(hz, sampleRate) })).
		Func("saw-hz", m.oscillator(func(hz float64) node.Node { return node.NewSaw(hz, sampleRate) })).
		Func("mix", m.mix).
		Func("sample", m.sample).
		Func("play", m.play)

	mod.Method(HandleType, "stop", control((*playback.Handle).Stop)).
		Method(HandleType, "pause", control((*playback.Handle).Pause)).
		Method(HandleType, "resume", control((*playback.Handle).Resume)).
		Method(HandleType, "reset", control((*playback.Handle).Reset))

	return mod
}

func (m *module) oscillator(build func(hz float64) node.Node) host.Func {
	return func(args []host.Value) (host.Value, error) {
		if err := host.Arity(args, 1); err != nil {
			return nil, err
		}
		hz, err := host.Number(args, 0)
		if err != nil {
			return nil, err
		}
		return foreign.New(NetType, build(hz)), nil
	}
}

// mix takes ownership of every input net.
func (m *module) mix(args []host.Value) (host.Value, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: mix needs at least one net", host.ErrArity)
	}

	objs := make([]*foreign.Object[node.Node], len(args))
	for i := range args {
		obj, err := host.Object(args, i, NetType)
		if err != nil {
			return nil, err
		}
		objs[i] = obj
	}

	inputs := make([]node.Node, 0, len(objs))
	for i, obj := range objs {
		n, ok := obj.Take()
		if !ok {
			err := fmt.Errorf("%w %d: %w", host.ErrArgument, i, unavailable(obj))
			for j, taken := range inputs {
				if rerr := restore(objs[j], taken); rerr != nil {
					err = errors.Join(err, rerr)
				}
			}
			return nil, err
		}
		inputs = append(inputs, n)
	}

	return foreign.New(NetType, node.Node(node.NewMix(inputs...))), nil
}

func (m *module) sample(args []host.Value) (host.Value, error) {
	if err := host.Arity(args, 1); err != nil {
		return nil, err
	}
	path, err := host.String(args, 0)
	if err != nil {
		return nil, err
	}

	s, err := node.Load(path)
	if err != nil {
		return nil, err
	}
	if rate := int(s.Format().SampleRate); rate != m.sampleRate {
		m.logger.Warn("Sample rate differs from device, playback speed will be off",
			slog.String("path", path),
			slog.Int("file_rate", rate),
			slog.Int("device_rate", m.sampleRate))
	}
	return foreign.New(NetType, node.Node(s)), nil
}

// play moves the net into a new playback unit. If the session rejects it,
// the net reference owns the node again.
func (m *module) play(args []host.Value) (host.Value, error) {
	if err := host.Arity(args, 1); err != nil {
		return nil, err
	}
	obj, err := host.Object(args, 0, NetType)
	if err != nil {
		return nil, err
	}

	session, err := m.open()
	if err != nil {
		return nil, err
	}

	n, ok := obj.Take()
	if !ok {
		return nil, fmt.Errorf("%w 0: %w", host.ErrArgument, unavailable(obj))
	}

	h, err := session.Play(n)
	if err != nil {
		var perr *playback.PlaySoundError
		if errors.As(err, &perr) && perr.Node != nil {
			if rerr := restore(obj, perr.Node); rerr != nil {
				return nil, fmt.Errorf("%w: %w", rerr, err)
			}
		}
		return nil, err
	}
	return foreign.New(HandleType, h), nil
}

// restore hands n back to obj. If obj was finalized while it did not own
// its node, n is torn down here instead.
func restore(obj *foreign.Object[node.Node], n node.Node) error {
	if obj.Restore(n) {
		return nil
	}
	NetType.Finalize(n)
	return fmt.Errorf("%w: %w", ErrNotRestored, unavailable(obj))
}

func control(send func(*playback.Handle) error) host.Func {
	return func(args []host.Value) (host.Value, error) {
		if err := host.Arity(args, 1); err != nil {
			return nil, err
		}
		obj, err := host.Object(args, 0, HandleType)
		if err != nil {
			return nil, err
		}
		if !obj.Borrow(func(h **playback.Handle) { err = send(*h) }) {
			return nil, unavailable(obj)
		}
		return nil, err
	}
}

func unavailable(r foreign.Ref) error {
	if r.Finalized() {
		return foreign.ErrFinalized
	}
	return foreign.ErrReleased
}
