package sidediff

import (
	"fmt"
	"os"
	"sort"

	"github.com/sokinpui/sidediff/internal/lines"
)

// equalSource supplies the text of unchanged lines, in new-file order.
type equalSource interface {
	// next returns the following line. known is false when its text is not
	// available; ok is false once there are no more lines.
	next() (text string, known, ok bool)
	// skip passes over n lines that an edit replaced.
	skip(n int)
	// unknown passes over the lines, at most n, before the next line whose
	// text is known and returns how many it skipped. It is 0 when the next
	// line is known or when no known line follows.
	unknown(n int) int
	Close() error
}

// fileEqual reads unchanged lines from the file as it is on disk.
type fileEqual struct {
	f   *os.File
	src *lines.Source
}

func newFileEqual(f *os.File) *fileEqual {
	return &fileEqual{f: f, src: lines.NewSource(f, lines.MinWindow)}
}

func (e *fileEqual) next() (string, bool, bool) {
	line, ok := e.src.Advance()
	return line, ok, ok
}

func (e *fileEqual) skip(n int) {
	for i := 0; i < n; i++ {
		if _, ok := e.src.Advance(); !ok {
			return
		}
	}
}

func (e *fileEqual) unknown(int) int {
	return 0
}

func (e *fileEqual) Close() error {
	readErr := e.src.Err()
	if err := e.f.Close(); err != nil && readErr == nil {
		readErr = err
	}
	if readErr != nil {
		return fmt.Errorf("failed to read %s: %w", e.f.Name(), readErr)
	}
	return nil
}

// contextEqual stands in for a missing file with the context lines the
// parser reported, keyed by new-file line number.
type contextEqual struct {
	text map[int]string
	// nos holds the keys of text in ascending order.
	nos  []int
	last int
	pos  int
}

func newContextEqual() *contextEqual {
	return &contextEqual{text: make(map[int]string)}
}

// add is registered as the parser's context hook.
func (e *contextEqual) add(_, dstNo int, text string) {
	if _, ok := e.text[dstNo]; !ok {
		i := sort.SearchInts(e.nos, dstNo)
		e.nos = append(e.nos, 0)
		copy(e.nos[i+1:], e.nos[i:])
		e.nos[i] = dstNo
	}
	e.text[dstNo] = text
	if dstNo > e.last {
		e.last = dstNo
	}
}

func (e *contextEqual) next() (string, bool, bool) {
	e.pos++
	if e.pos > e.last {
		return "", false, false
	}
	text, known := e.text[e.pos]
	return text, known, true
}

func (e *contextEqual) skip(n int) {
	e.pos += n
}

func (e *contextEqual) unknown(n int) int {
	i := sort.SearchInts(e.nos, e.pos+1)
	if i == len(e.nos) {
		return 0
	}
	k := e.nos[i] - e.pos - 1
	if k > n {
		k = n
	}
	e.pos += k
	return k
}

func (e *contextEqual) Close() error {
	return nil
}
