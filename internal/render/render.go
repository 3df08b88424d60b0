package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sokinpui/sidediff/internal/codec"
	"github.com/sokinpui/sidediff/internal/model"
)

const (
	// DefaultWidth is the column width used when none is configured.
	DefaultWidth = 80
	// MinWidth fits the widest character the codec knows.
	MinWidth = 2
)

// Cell is one side of a row: a line of text and its line number. A nil
// *Cell leaves that side blank.
type Cell struct {
	No   int
	Text string
}

// Renderer folds text into fixed-width columns and lays out rows.
type Renderer struct {
	codec *codec.Codec
	width int
}

// New returns a renderer producing columns width display cells wide.
func New(c *codec.Codec, width int) (*Renderer, error) {
	if width < MinWidth {
		return nil, fmt.Errorf("column width must be at least %d, got %d", MinWidth, width)
	}
	return &Renderer{codec: c, width: width}, nil
}

// Width returns the column width.
func (r *Renderer) Width() int {
	return r.width
}

// Fold takes as many whole characters from text as fit in the column and
// pads the row with spaces to exactly the column width. rest holds what did
// not fit; more is false when text was consumed completely.
func (r *Renderer) Fold(text string) (row, rest string, more bool) {
	b := []byte(text)
	i, cols := 0, 0
	for i < len(b) {
		size, cost := r.codec.Classify(b, i)
		if cols+cost > r.width {
			break
		}
		i += size
		cols += cost
	}

	var sb strings.Builder
	sb.Grow(i + r.width - cols)
	sb.Write(b[:i])
	sb.WriteString(strings.Repeat(" ", r.width-cols))

	if i < len(b) {
		return sb.String(), text[i:], true
	}
	return sb.String(), "", false
}

// Blank returns an empty row.
func (r *Renderer) Blank() string {
	return strings.Repeat(" ", r.width)
}

// Line is one line of output. TagAt is the byte offset of the "|X|" mode
// column in Text, or -1 for lines that are not rows.
type Line struct {
	Text  string
	Mode  model.Mode
	TagAt int
}

// FormatRow lays out one line pair, folded over as many display lines as the
// longer side needs. Line numbers only appear on the first display line of a
// side, and a zero line number is left blank.
func (r *Renderer) FormatRow(left, right *Cell, mode model.Mode) []Line {
	var out []Line
	lno, rno := cellNo(left), cellNo(right)
	for left != nil || right != nil {
		var lrow, rrow string
		left, lrow = r.foldCell(left)
		right, rrow = r.foldCell(right)
		prefix := lineNo(lno) + " " + lrow + " "
		out = append(out, Line{
			Text:  fmt.Sprintf("%s|%c| %s %s", prefix, mode.Tag(), lineNo(rno), rrow),
			Mode:  mode,
			TagAt: len(prefix),
		})
		lno, rno = 0, 0
	}
	return out
}

func (r *Renderer) foldCell(c *Cell) (*Cell, string) {
	if c == nil {
		return nil, r.Blank()
	}
	row, rest, more := r.Fold(c.Text)
	if !more {
		return nil, row
	}
	return &Cell{Text: rest}, row
}

func cellNo(c *Cell) int {
	if c == nil {
		return 0
	}
	return c.No
}

func lineNo(n int) string {
	if n <= 0 {
		return "     "
	}
	return fmt.Sprintf("%5d", n)
}

// Separator returns the rule under a file header.
func (r *Renderer) Separator() string {
	dashes := strings.Repeat("-", r.width)
	return "------" + dashes + "-+-+-------" + dashes
}

// Writer writes rendered rows to an underlying stream.
type Writer struct {
	*Renderer
	w *bufio.Writer
	// Transform, when set, rewrites each finished line before it is written.
	// It must map a prefix ending on a character boundary to a prefix of the result.
	Transform func(string) string
	// OnLine, when set, receives every line as written.
	OnLine func(Line)
}

// NewWriter returns a Writer on w. Call Flush when done.
func NewWriter(r *Renderer, w io.Writer) *Writer {
	return &Writer{Renderer: r, w: bufio.NewWriter(w)}
}

// Header writes the org/new file header and its separator.
func (w *Writer) Header(name string) error {
	org := &Cell{Text: "org: " + name}
	dst := &Cell{Text: "new: " + name}
	if err := w.Row(org, dst, model.Equal); err != nil {
		return err
	}
	return w.plain(w.Separator())
}

// Row writes one line pair.
func (w *Writer) Row(left, right *Cell, mode model.Mode) error {
	for _, l := range w.FormatRow(left, right, mode) {
		if err := w.line(l); err != nil {
			return err
		}
	}
	return nil
}

// EndSection writes the blank lines that close a file section.
func (w *Writer) EndSection() error {
	if err := w.plain(""); err != nil {
		return err
	}
	return w.plain("")
}

func (w *Writer) Flush() error {
	return w.w.Flush()
}

func (w *Writer) plain(s string) error {
	return w.line(Line{Text: s, TagAt: -1})
}

func (w *Writer) line(l Line) error {
	if w.Transform != nil {
		if l.TagAt >= 0 {
			l.TagAt = len(w.Transform(l.Text[:l.TagAt]))
		}
		l.Text = w.Transform(l.Text)
	}
	if _, err := w.w.WriteString(l.Text); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	if w.OnLine != nil {
		w.OnLine(l)
	}
	return nil
}
