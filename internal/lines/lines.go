package lines

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sokinpui/sidediff/internal/codec"
)

const (
	// DefaultWindow is the number of lines a Source keeps for lookahead.
	DefaultWindow = 30
	// MinWindow is the smallest window that still holds previous, current and next.
	MinWindow = 3
	// TabWidth is the tab stop used when expanding tabs.
	TabWidth = 4
)

// ErrRewindUnderflow is returned when a caller moves before the oldest retained line.
var ErrRewindUnderflow = errors.New("rewind before the oldest retained line")

// Source reads lines from a stream and keeps a bounded window of them so
// callers can look one line back and one line ahead of the current position.
//
// Positions are logical line indexes counted from the start of the stream.
// The ring holds window+1 lines: the window itself plus the line after it.
type Source struct {
	r      *bufio.Reader
	ring   []string
	window int

	base  int // logical index of ring's oldest line
	count int // number of lines held
	pos   int // logical index of the current line, -1 before the first

	eof bool
	err error
}

// NewSource wraps r. A window smaller than MinWindow is raised to MinWindow.
func NewSource(r io.Reader, window int) *Source {
	if window < MinWindow {
		window = MinWindow
	}
	return &Source{
		r:      bufio.NewReader(r),
		ring:   make([]string, window+1),
		window: window,
		pos:    -1,
	}
}

// Window returns the lookahead window size.
func (s *Source) Window() int {
	return s.window
}

// Err returns the first read error other than io.EOF.
func (s *Source) Err() error {
	return s.err
}

// Advance moves to the next line and returns it. ok is false once the stream is exhausted.
func (s *Source) Advance() (line string, ok bool) {
	if !s.fill(s.pos + 1) {
		// Park one past the last line so Previous still sees it.
		if s.pos < s.base+s.count {
			s.pos = s.base + s.count
		}
		return "", false
	}
	s.pos++
	s.fill(s.pos + 1)
	return s.get(s.pos)
}

// Rewind steps back one line. The previous line must still be retained;
// stepping back from the first line of the stream returns to the start.
func (s *Source) Rewind() error {
	if s.pos-1 < s.base && !(s.pos == 0 && s.base == 0) {
		return fmt.Errorf("at line %d: %w", s.pos+1, ErrRewindUnderflow)
	}
	s.pos--
	return nil
}

// Reset moves back before the first line of the stream. It fails once the
// first line has been evicted from the window.
func (s *Source) Reset() error {
	if s.base > 0 {
		return fmt.Errorf("reset after %d evicted lines: %w", s.base, ErrRewindUnderflow)
	}
	s.pos = -1
	return nil
}

// Previous returns the line before the current one.
func (s *Source) Previous() (string, bool) {
	return s.get(s.pos - 1)
}

// Current returns the line at the current position.
func (s *Source) Current() (string, bool) {
	return s.get(s.pos)
}

// Next returns the line after the current one without moving.
func (s *Source) Next() (string, bool) {
	return s.get(s.pos + 1)
}

// Line returns the current line number, 1-based. It is 0 before the first Advance.
func (s *Source) Line() int {
	return s.pos + 1
}

func (s *Source) get(idx int) (string, bool) {
	if idx < s.base || idx >= s.base+s.count {
		return "", false
	}
	return s.ring[idx%len(s.ring)], true
}

// fill reads until the line at idx is held or the stream ends.
func (s *Source) fill(idx int) bool {
	for idx >= s.base+s.count {
		if s.eof {
			return false
		}
		line, ok := s.read()
		if !ok {
			return false
		}
		if s.count == len(s.ring) {
			s.base++
			s.count--
		}
		s.ring[(s.base+s.count)%len(s.ring)] = line
		s.count++
	}
	return true
}

func (s *Source) read() (string, bool) {
	raw, err := s.r.ReadString('\n')
	if err != nil {
		s.eof = true
		if err != io.EOF {
			s.err = err
			return "", false
		}
		if raw == "" {
			return "", false
		}
	}
	return Normalize(raw), true
}

// Normalize cuts the line terminator and expands tabs to TabWidth stops,
// measuring columns with the codec's Unknown rules.
func Normalize(raw string) string {
	if i := strings.IndexAny(raw, "\r\n"); i >= 0 {
		raw = raw[:i]
	}
	if !strings.Contains(raw, "\t") {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw) + TabWidth)
	data := []byte(raw)
	col := 0
	for i := 0; i < len(data); {
		if data[i] == '\t' {
			n := TabWidth - col%TabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			i++
			continue
		}
		size, cost := codec.CharCost(data, i)
		b.Write(data[i : i+size])
		col += cost
		i += size
	}
	return b.String()
}
