package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sokinpui/sidediff/internal/lines"
	"github.com/sokinpui/sidediff/internal/model"
)

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// UnifiedParser reads "diff -u" style text.
//
// A run of '-' and '+' lines becomes one edit. The run starts on a marked
// line whose previous line is unmarked and ends on a marked line whose next
// line is unmarked, so one line of lookback and lookahead is all it needs.
type UnifiedParser struct {
	base

	// hunk is the header being read; nil outside a hunk.
	hunk *hunkHeader
	// offsets into the current hunk; -1 right after a hunk header.
	srcOff, dstOff int
}

// hunkHeader holds the numbers of an "@@ -a,n +c,m @@" line.
type hunkHeader struct {
	srcBase, srcLen int
	dstBase, dstLen int
}

// NewUnified returns a parser for unified diffs read from src.
func NewUnified(src *lines.Source) *UnifiedParser {
	p := &UnifiedParser{base: base{src: src}}
	p.startsBody = func(line string) bool {
		return strings.HasPrefix(line, "@@")
	}
	// A hunk never continues into the next file.
	p.resetSection = func() {
		p.hunk = nil
		p.srcOff, p.dstOff = 0, 0
	}
	return p
}

func (p *UnifiedParser) Format() Format {
	return Unified
}

// run collects one edit. Start and end per side are the first and last line
// numbers that side contributed.
type run struct {
	src, dst *model.Range
	srcLines []string
	dstLines []string
}

func (r *run) empty() bool {
	return r.src == nil && r.dst == nil
}

func (r *run) addSource(no int, text string) {
	if r.src == nil {
		r.src = &model.Range{Start: no}
	}
	r.src.End = no
	r.srcLines = append(r.srcLines, text)
}

func (r *run) addTarget(no int, text string) {
	if r.dst == nil {
		r.dst = &model.Range{Start: no}
	}
	r.dst.End = no
	r.dstLines = append(r.dstLines, text)
}

func (r *run) edit() model.Edit {
	e := model.Edit{
		Source:      r.src,
		Target:      r.dst,
		SourceLines: r.srcLines,
		TargetLines: r.dstLines,
	}
	switch {
	case r.src != nil && r.dst != nil:
		e.Mode = model.Modify
	case r.src != nil:
		e.Mode = model.Delete
	default:
		e.Mode = model.Add
	}
	return e
}

// NextEdit returns the next run of changed lines in the current section.
func (p *UnifiedParser) NextEdit() (model.Edit, error) {
	var r run
	for {
		line, ok := p.src.Advance()
		if !ok {
			break
		}
		if _, ok := parseFilename(line); ok {
			if err := p.src.Rewind(); err != nil {
				return model.Edit{}, err
			}
			break
		}
		if isUnifiedHeader(line) {
			continue
		}
		if h, ok := parseHunkHeader(line); ok {
			p.hunk = &h
			p.srcOff, p.dstOff = -1, -1
			continue
		}
		if p.hunk == nil {
			if isChangeLine(line) || strings.HasPrefix(line, " ") {
				p.warnMalformed("hunk line before any @@ header")
			}
			continue
		}

		switch {
		case line == "" && !p.expectsContext():
			continue
		case line == "" || line[0] == ' ':
			p.srcOff++
			p.dstOff++
			p.context(p.hunk.srcBase+p.srcOff, p.hunk.dstBase+p.dstOff, strings.TrimPrefix(line, " "))
			continue
		case line[0] == '-':
			p.srcOff++
			r.addSource(p.hunk.srcBase+p.srcOff, line[1:])
		case line[0] == '+':
			p.dstOff++
			r.addTarget(p.hunk.dstBase+p.dstOff, line[1:])
		default:
			continue
		}

		if next, _ := p.src.Next(); !isChangeLine(next) {
			return r.edit(), nil
		}
	}
	if !r.empty() {
		return r.edit(), nil
	}
	return model.Edit{}, p.end()
}

// isChangeLine reports whether line is a '-' or '+' body line. File headers
// are not.
func isChangeLine(line string) bool {
	if line == "" || (line[0] != '-' && line[0] != '+') {
		return false
	}
	return !isUnifiedHeader(line)
}

func isUnifiedHeader(line string) bool {
	return strings.HasPrefix(line, "---") ||
		strings.HasPrefix(line, "+++") ||
		strings.HasPrefix(line, "=")
}

// expectsContext reports whether the hunk header still counts unchanged
// lines on both sides. An empty line is only context while it does.
func (p *UnifiedParser) expectsContext() bool {
	return p.srcOff+1 < p.hunk.srcLen && p.dstOff+1 < p.hunk.dstLen
}

// parseHunkHeader reads "@@ -a[,n] +c[,m] @@". A missing length is 1.
func parseHunkHeader(line string) (hunkHeader, bool) {
	m := hunkHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return hunkHeader{}, false
	}
	var h hunkHeader
	h.srcBase, _ = strconv.Atoi(m[1])
	h.srcLen = hunkLen(m[2])
	h.dstBase, _ = strconv.Atoi(m[3])
	h.dstLen = hunkLen(m[4])
	return h, true
}

func hunkLen(s string) int {
	if s == "" {
		return 1
	}
	n, _ := strconv.Atoi(s)
	return n
}
