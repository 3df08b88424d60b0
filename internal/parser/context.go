package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sokinpui/sidediff/internal/lines"
	"github.com/sokinpui/sidediff/internal/model"
	"github.com/sokinpui/sidediff/internal/ui"
)

// changeCommandRe matches "5a6,8", "3,4d2" and "1,2c1,3".
var changeCommandRe = regexp.MustCompile(`^(\d+)(?:,(\d+))?([acd])(\d+)(?:,(\d+))?\s*$`)

// ContextParser reads the plain output of diff(1): change commands followed by
// "< " and "> " lines. Nothing closes an edit except the next command, a new
// file or the end of the stream.
type ContextParser struct {
	base
}

// NewContext returns a parser for change-command diffs read from src.
func NewContext(src *lines.Source) *ContextParser {
	p := &ContextParser{base: base{src: src}}
	p.startsBody = func(line string) bool {
		_, ok := parseChangeCommand(line)
		return ok
	}
	return p
}

func (p *ContextParser) Format() Format {
	return Context
}

// NextEdit returns the edit opened by the next change command together with
// its body lines.
func (p *ContextParser) NextEdit() (model.Edit, error) {
	var open *model.Edit
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

		switch {
		case strings.HasPrefix(line, "<"):
			if open == nil || open.Source == nil {
				p.warnMalformed("'<' line outside a change with old lines")
				continue
			}
			open.SourceLines = append(open.SourceLines, bodyText(line))
		case strings.HasPrefix(line, ">"):
			if open == nil || open.Target == nil {
				p.warnMalformed("'>' line outside a change with new lines")
				continue
			}
			open.TargetLines = append(open.TargetLines, bodyText(line))
		default:
			edit, ok := parseChangeCommand(line)
			if !ok {
				continue
			}
			if open != nil {
				// The command belongs to the next call.
				if err := p.src.Rewind(); err != nil {
					return model.Edit{}, err
				}
				return p.checked(*open), nil
			}
			open = &edit
		}
	}
	if open != nil {
		return p.checked(*open), nil
	}
	return model.Edit{}, p.end()
}

// checked warns when the body of an edit does not match its command. The
// edit is kept either way.
func (p *ContextParser) checked(e model.Edit) model.Edit {
	if e.Source != nil && e.Source.Len() != len(e.SourceLines) {
		ui.Warning("change at old line %s expects %d line(s), got %d", e.Source, e.Source.Len(), len(e.SourceLines))
	}
	if e.Target != nil && e.Target.Len() != len(e.TargetLines) {
		ui.Warning("change at new line %s expects %d line(s), got %d", e.Target, e.Target.Len(), len(e.TargetLines))
	}
	return e
}

func bodyText(line string) string {
	return strings.TrimPrefix(line[1:], " ")
}

// parseChangeCommand turns a change command into an empty edit. The letter
// decides the mode: 'a' adds new lines, 'd' deletes old ones, 'c' changes both.
func parseChangeCommand(line string) (model.Edit, bool) {
	m := changeCommandRe.FindStringSubmatch(line)
	if m == nil {
		return model.Edit{}, false
	}
	src := parseRange(m[1], m[2])
	dst := parseRange(m[4], m[5])

	switch m[3] {
	case "a":
		return model.Edit{Mode: model.Add, Target: &dst}, true
	case "d":
		return model.Edit{Mode: model.Delete, Source: &src}, true
	default:
		return model.Edit{Mode: model.Modify, Source: &src, Target: &dst}, true
	}
}

// parseRange reads "start[,end]"; a missing end equals start.
func parseRange(start, end string) model.Range {
	r := model.Range{}
	r.Start, _ = strconv.Atoi(start)
	r.End = r.Start
	if end != "" {
		r.End, _ = strconv.Atoi(end)
	}
	return r
}
