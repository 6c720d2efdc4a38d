package jsyn_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsyn/command"
	"jsyn/config"
	"jsyn/foreign"
	"jsyn/host"
	"jsyn/jsyn"
	"jsyn/node"
	"jsyn/playback"
)

type fakeDevice struct {
	mu       sync.Mutex
	streamer beep.Streamer
}

func (d *fakeDevice) Open(beep.SampleRate, int) error { return nil }
func (d *fakeDevice) Play(s beep.Streamer)            { d.streamer = s }
func (d *fakeDevice) Lock()                           { d.mu.Lock() }
func (d *fakeDevice) Unlock()                         { d.mu.Unlock() }
func (d *fakeDevice) Close()                          {}

func (d *fakeDevice) process(n int) [][2]float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	samples := make([][2]float64, n)
	d.streamer.Stream(samples)
	return samples
}

func audioConfig() config.AudioConfig {
	return config.AudioConfig{
		SampleRate:      44100,
		Buffer:          50 * time.Millisecond,
		CommandCapacity: 8,
		MaxSounds:       2,
	}
}

type fixture struct {
	dev     *fakeDevice
	session *playback.Session
	interp  *host.Interp
	out     *bytes.Buffer
	opened  int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{dev: &fakeDevice{}, out: &bytes.Buffer{}}
	session, err := playback.NewSession(audioConfig(), f.dev)
	require.NoError(t, err)
	f.session = session

	mod := jsyn.New(44100, func() (*playback.Session, error) {
		f.opened++
		return session, nil
	})
	f.interp = host.NewInterp(mod, f.out)
	t.Cleanup(func() {
		f.interp.Close()
		session.Close()
	})
	return f
}

func (f *fixture) run(t *testing.T, script string) error {
	t.Helper()
	return f.interp.Exec(context.Background(), strings.NewReader(script))
}

func TestPlayPauseStop(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, `
net = sine-hz 11025
h = play net
h.pause
`))
	assert.Equal(t, 1, f.opened)
	assert.Equal(t, 1, f.session.Len())

	// paused units still produce frames
	frames := f.dev.process(2)
	assert.InDelta(t, 0, frames[0][0], 1e-9)
	assert.InDelta(t, 1, frames[1][0], 1e-9)

	require.NoError(t, f.run(t, "h.stop"))
	f.dev.process(1)
	assert.Equal(t, 0, f.session.Len())

	// the net reference gave its node away
	v, ok := f.interp.Lookup("net")
	require.True(t, ok)
	assert.False(t, v.(foreign.Ref).Live())
}

func TestPlayTwice(t *testing.T) {
	f := newFixture(t)

	err := f.run(t, "net = saw-hz 100\na = play net\nb = play net")
	assert.ErrorIs(t, err, foreign.ErrReleased)
	assert.Equal(t, 1, f.session.Len())
}

func TestPlayRejectedRestoresNet(t *testing.T) {
	f := newFixture(t)

	err := f.run(t, `
a = sine-hz 1
b = sine-hz 2
c = sine-hz 3
ha = play a
hb = play b
hc = play c
`)
	assert.ErrorIs(t, err, playback.ErrSoundLimitReached)
	var serr *host.ScriptError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 7, serr.Line)

	c, ok := f.interp.Lookup("c")
	require.True(t, ok)
	assert.True(t, c.(foreign.Ref).Live())

	require.NoError(t, f.run(t, "ha.stop"))
	f.dev.process(1)
	require.NoError(t, f.run(t, "hc = play c"))
	assert.Equal(t, 2, f.session.Len())
}

func TestDeviceInitErrorSurfaced(t *testing.T) {
	cause := errors.New("no output device")
	mod := jsyn.New(44100, func() (*playback.Session, error) {
		return playback.NewSession(audioConfig(), &failingDevice{err: cause})
	})
	in := host.NewInterp(mod, &bytes.Buffer{})
	defer in.Close()

	err := in.Exec(context.Background(), strings.NewReader("n = sine-hz 440\nh = play n"))
	var derr *playback.DeviceInitError
	require.ErrorAs(t, err, &derr)
	assert.ErrorIs(t, err, cause)

	n, ok := in.Lookup("n")
	require.True(t, ok)
	assert.True(t, n.(foreign.Ref).Live())
}

type failingDevice struct {
	fakeDevice
	err error
}

func (d *failingDevice) Open(beep.SampleRate, int) error { return d.err }

func TestFinalizedHandleKeepsPlaying(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "n = sine-hz 440\nh = play n\nunset h\ngc"))
	assert.Equal(t, 1, f.session.Len())
	f.dev.process(4)
	assert.Equal(t, 1, f.session.Len())
}

func TestHandleQueueFull(t *testing.T) {
	f := newFixture(t)

	script := "n = sine-hz 440\nh = play n\n" + strings.Repeat("h.pause\n", 9)
	err := f.run(t, script)
	assert.ErrorIs(t, err, command.ErrQueueFull)
	var cerr *playback.CommandError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, command.Pause, cerr.Command)
	var serr *host.ScriptError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 11, serr.Line)

	f.dev.process(1)
	assert.NoError(t, f.run(t, "h.resume"))
}

func TestMix(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "a = sine-hz 11025\nb = saw-hz 11025\nm = mix a b\nprint m"))
	assert.Equal(t, "<net mix/2>\n", f.out.String())

	a, _ := f.interp.Lookup("a")
	assert.False(t, a.(foreign.Ref).Live())

	// a net cannot feed the same mix twice
	err := f.run(t, "twice = mix m m")
	assert.ErrorIs(t, err, foreign.ErrReleased)
	m, _ := f.interp.Lookup("m")
	assert.True(t, m.(foreign.Ref).Live())

	assert.ErrorIs(t, f.run(t, "empty = mix"), host.ErrArity)
	assert.ErrorIs(t, f.run(t, "bad = mix 1"), host.ErrArgument)
}

func TestConstructorArguments(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.run(t, `s = sine-hz "high"`), host.ErrArgument)
	assert.ErrorIs(t, f.run(t, "s = saw-hz"), host.ErrArity)
	assert.ErrorIs(t, f.run(t, "h = play 3"), host.ErrArgument)
	assert.Error(t, f.run(t, `s = sample "missing.wav"`))
	assert.Zero(t, f.opened)
}

func TestHandleString(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.run(t, "n = sine-hz 440\nh = play n\nprint h"))
	v, _ := f.interp.Lookup("h")
	obj := v.(*foreign.Object[*playback.Handle])

	var id string
	obj.Borrow(func(h **playback.Handle) { id = (*h).ID().String() })
	assert.Equal(t, "<handle "+id+">\n", f.out.String())

	_, ok := obj.Hash()
	assert.True(t, ok)
	c, ok := obj.Compare(obj)
	assert.True(t, ok)
	assert.Zero(t, c)
}

func TestTypesRegistered(t *testing.T) {
	d, ok := foreign.Lookup("net")
	require.True(t, ok)
	assert.Equal(t, foreign.Descriptor(jsyn.NetType), d)

	d, ok = foreign.Lookup("handle")
	require.True(t, ok)
	assert.Equal(t, foreign.Descriptor(jsyn.HandleType), d)
}

func TestDescribeNodes(t *testing.T) {
	tests := []struct {
		node     node.Node
		expected string
	}{
		{node.NewSine(1, 44100), "<net sine>"},
		{node.NewSaw(1, 44100), "<net saw>"},
		{node.NewMix(node.NewSine(1, 44100)), "<net mix/1>"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, foreign.New(jsyn.NetType, test.node).String())
	}
}

func TestFinalizeNetReleasesSamples(t *testing.T) {
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	sample := node.NewSample(beep.NewBuffer(format))
	mixed := node.NewSample(beep.NewBuffer(format))

	tests := []struct {
		name   string
		net    node.Node
		sample *node.Sample
	}{
		{"sample", sample, sample},
		{"mix", node.NewMix(node.NewSine(1, 44100), mixed), mixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := foreign.New(jsyn.NetType, tt.net)
			require.True(t, obj.Finalize())
			assert.True(t, tt.sample.Closed())
		})
	}
}

func TestPlayedSampleSurvivesNetCollection(t *testing.T) {
	f := newFixture(t)
	format := beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}
	sample := node.NewSample(beep.NewBuffer(format))

	obj := foreign.New(jsyn.NetType, node.Node(sample))
	f.interp.Heap().Track(obj)
	assert.Equal(t, 1, f.interp.Heap().Collect(nil))
	assert.True(t, sample.Closed(), "unreachable live net is torn down")

	played := node.NewSample(beep.NewBuffer(format))
	obj = foreign.New(jsyn.NetType, node.Node(played))
	n, ok := obj.Take()
	require.True(t, ok)
	_, err := f.session.Play(n)
	require.NoError(t, err)
	assert.False(t, obj.Finalize())
	assert.False(t, played.Closed(), "a taken node belongs to its playback unit")
}
