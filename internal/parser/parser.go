package parser

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/sokinpui/sidediff/internal/lines"
	"github.com/sokinpui/sidediff/internal/model"
	"github.com/sokinpui/sidediff/internal/ui"
)

// ErrEndOfSection is returned by NextEdit when the current file section has
// no more edits, either because a new filename header follows or the stream ended.
var ErrEndOfSection = errors.New("end of file section")

// Format identifies a diff text format.
type Format int

const (
	Context Format = iota
	Unified
)

func (f Format) String() string {
	if f == Unified {
		return "unified"
	}
	return "context"
}

// Section describes one file of a multi-file diff.
type Section struct {
	// Name is what the header shows: the text after "Index:" or the part of a
	// "diff" line after its final slash. Empty for a diff without filename lines.
	Name string
	// Path is the last path token of the header line, used to find the file on disk.
	Path string
}

// ContextFunc receives unchanged lines seen inside hunks with their line
// number on each side.
type ContextFunc func(srcNo, dstNo int, text string)

// Parser turns diff text into edits, one file section at a time.
type Parser interface {
	// NextSection skips to the next filename header and returns it. It
	// returns io.EOF when the stream holds no more sections.
	NextSection() (Section, error)
	// NextEdit returns the next edit of the current section or ErrEndOfSection.
	NextEdit() (model.Edit, error)
	// OnContext registers fn for unchanged lines. Formats without context
	// lines never call it.
	OnContext(fn ContextFunc)
	Format() Format
}

// New detects the format of the text behind src and returns a parser for it.
func New(src *lines.Source) (Parser, error) {
	format, err := Detect(src)
	if err != nil {
		return nil, err
	}
	return NewFormat(src, format), nil
}

// NewFormat returns a parser for a known format.
func NewFormat(src *lines.Source, format Format) Parser {
	if format == Unified {
		return NewUnified(src)
	}
	return NewContext(src)
}

// Detect samples up to the source's window and picks Unified when lines
// starting with '+', '-' or '@' outnumber lines starting with '<' or '>'.
// Ties go to Context. The source is reset to the start afterwards.
//
// This is a best-effort guess from marker counts, not a grammar check.
func Detect(src *lines.Source) (Format, error) {
	unified, context := 0, 0
	for i := 0; i < src.Window(); i++ {
		line, ok := src.Advance()
		if !ok {
			break
		}
		if line == "" {
			continue
		}
		switch line[0] {
		case '+', '-', '@':
			unified++
		case '<', '>':
			context++
		}
	}
	if err := src.Err(); err != nil {
		return Context, fmt.Errorf("failed to read diff text: %w", err)
	}
	if err := src.Reset(); err != nil {
		return Context, err
	}
	if unified > context {
		return Unified, nil
	}
	return Context, nil
}

// parseFilename recognizes "Index: <name>" and "diff ... <path>" lines.
func parseFilename(line string) (Section, bool) {
	if rest, ok := strings.CutPrefix(line, "Index:"); ok {
		name := strings.TrimSpace(rest)
		return Section{Name: name, Path: name}, true
	}
	if strings.HasPrefix(line, "diff ") {
		i := strings.LastIndexByte(line, '/')
		if i < 0 {
			return Section{}, false
		}
		fields := strings.Fields(line)
		return Section{
			Name: strings.TrimSpace(line[i+1:]),
			Path: fields[len(fields)-1],
		}, true
	}
	return Section{}, false
}

// base holds what both formats share: the line source, section scanning and
// warnings for malformed lines.
type base struct {
	src       *lines.Source
	onContext ContextFunc
	// startsBody reports whether a line begins edit content, so text without
	// any filename header still forms a section.
	startsBody func(line string) bool
	// resetSection, when set, drops per-section state before the next header is read.
	resetSection func()
	// newName is the last "+++ " header seen while scanning for a section.
	newName string
	warned  bool
}

func (b *base) OnContext(fn ContextFunc) {
	b.onContext = fn
}

func (b *base) NextSection() (Section, error) {
	b.newName = ""
	if b.resetSection != nil {
		b.resetSection()
	}
	for {
		line, ok := b.src.Advance()
		if !ok {
			break
		}
		if section, ok := parseFilename(line); ok {
			return section, nil
		}
		if rest, ok := strings.CutPrefix(line, "+++ "); ok {
			b.newName = headerPath(rest)
			continue
		}
		if b.startsBody(line) {
			if err := b.src.Rewind(); err != nil {
				return Section{}, err
			}
			return Section{Name: baseName(b.newName), Path: b.newName}, nil
		}
	}
	if err := b.src.Err(); err != nil {
		return Section{}, fmt.Errorf("failed to read diff text: %w", err)
	}
	return Section{}, io.EOF
}

func (b *base) context(srcNo, dstNo int, text string) {
	if b.onContext != nil {
		b.onContext(srcNo, dstNo, text)
	}
}

// warnMalformed reports the first malformed line of a parser.
func (b *base) warnMalformed(format string, a ...interface{}) {
	if b.warned {
		return
	}
	b.warned = true
	ui.Warning("line %d: "+format+", skipping", append([]interface{}{b.src.Line()}, a...)...)
}

// end finishes NextEdit: read errors win over the end-of-section signal.
func (b *base) end() error {
	if err := b.src.Err(); err != nil {
		return fmt.Errorf("failed to read diff text: %w", err)
	}
	return ErrEndOfSection
}

// headerTimestampRe matches the modification time "diff -u" appends to
// "---"/"+++" headers. The separating tab is already expanded by then.
var headerTimestampRe = regexp.MustCompile(`\s+\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?( [+-]\d{4})?$`)

// headerPath strips the timestamp from a "+++" header.
func headerPath(rest string) string {
	return strings.TrimSpace(headerTimestampRe.ReplaceAllString(rest, ""))
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
