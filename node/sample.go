package node

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// Sample plays a decoded buffer once, then produces silence.
type Sample struct {
	buf      *beep.Buffer
	format   beep.Format
	streamer beep.StreamSeeker
	frame    [1][2]float64
}

// NewSample returns a node reading buf from its start.
func NewSample(buf *beep.Buffer) *Sample {
	return &Sample{
		buf:      buf,
		format:   buf.Format(),
		streamer: buf.Streamer(0, buf.Len()),
	}
}

func (s *Sample) Frame() (float64, float64) {
	if s.streamer == nil {
		return 0, 0
	}
	if n, _ := s.streamer.Stream(s.frame[:]); n == 0 {
		return 0, 0
	}
	return s.frame[0][0], s.frame[0][1]
}

func (s *Sample) Reset() {
	if s.streamer != nil {
		_ = s.streamer.Seek(0)
	}
}

// Format returns the format of the underlying buffer.
func (s *Sample) Format() beep.Format {
	return s.format
}

// Close drops the decoded buffer. A closed sample produces silence.
func (s *Sample) Close() error {
	s.buf = nil
	s.streamer = nil
	return nil
}

// Closed reports whether Close was called.
func (s *Sample) Closed() bool {
	return s.streamer == nil
}

// Load decodes an mp3, wav or flac file fully into memory and returns it as a Sample.
// No sample rate conversion is applied; callers compare Format().SampleRate themselves.
func Load(path string) (*Sample, error) {
	var decode func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) }
	case ".wav":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) }
	case ".flac":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) }
	default:
		return nil, fmt.Errorf("unsupported audio file extension %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	streamer, format, err := decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	defer streamer.Close()

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return NewSample(buffer), nil
}
