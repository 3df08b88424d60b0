package sidediff

import (
	"errors"
	"io"
	"math"

	"github.com/sokinpui/sidediff/internal/fs"
	"github.com/sokinpui/sidediff/internal/model"
	"github.com/sokinpui/sidediff/internal/parser"
	"github.com/sokinpui/sidediff/internal/render"
	"github.com/sokinpui/sidediff/internal/ui"
)

// printer pairs the parser's edits with the unchanged lines around them.
// sno and dno are the last line numbers printed on each side.
type printer struct {
	parser   parser.Parser
	w        *render.Writer
	resolver *fs.PathResolver

	sno, dno int
}

func newPrinter(p parser.Parser, w *render.Writer, resolver *fs.PathResolver) *printer {
	return &printer{parser: p, w: w, resolver: resolver}
}

// print renders every file section and flushes the writer.
func (p *printer) print() error {
	for {
		section, err := p.parser.NextSection()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := p.printSection(section); err != nil {
			return err
		}
	}
	return p.w.Flush()
}

func (p *printer) printSection(section parser.Section) (err error) {
	p.sno, p.dno = 0, 0
	if err := p.w.Header(section.Name); err != nil {
		return err
	}

	eq, err := p.openEqual(section)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := eq.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for {
		edit, err := p.parser.NextEdit()
		if errors.Is(err, parser.ErrEndOfSection) {
			break
		}
		if err != nil {
			return err
		}
		if err := p.printEqual(edit, eq); err != nil {
			return err
		}
		if err := p.printEdit(edit); err != nil {
			return err
		}
		if edit.Target != nil {
			eq.skip(edit.Target.Len())
		}
	}

	if err := p.printRest(eq); err != nil {
		return err
	}
	return p.w.EndSection()
}

// openEqual finds the file the section describes. Without one, the diff's
// own context lines are all that is known about the unchanged text.
func (p *printer) openEqual(section parser.Section) (equalSource, error) {
	if p.resolver != nil {
		f, ok, err := p.resolver.Open(section.Path, section.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			p.parser.OnContext(nil)
			return newFileEqual(f), nil
		}
	}

	switch {
	case section.Name == "":
		ui.Warning("diff has no file name, showing its context lines only")
	case p.resolver != nil:
		ui.Warning("file '%s' not found, showing diff context lines only. Searched:", section.Name)
		for _, dir := range p.resolver.Dirs() {
			ui.Path("%s", dir)
		}
	default:
		ui.Warning("file '%s' not found, showing diff context lines only", section.Name)
	}
	ctx := newContextEqual()
	p.parser.OnContext(ctx.add)
	return ctx, nil
}

// printEqual prints the unchanged lines between the previous edit and this one.
func (p *printer) printEqual(edit model.Edit, eq equalSource) error {
	var srcGap, dstGap int
	if edit.Source != nil {
		srcGap = edit.Source.Start - 1 - p.sno
	}
	if edit.Target != nil {
		dstGap = edit.Target.Start - 1 - p.dno
	}

	gap := dstGap
	if srcGap > 0 {
		gap = srcGap
		if dstGap > 0 && dstGap < gap {
			gap = dstGap
		}
	}

	for gap > 0 {
		if k := eq.unknown(gap); k > 0 {
			p.sno += k
			p.dno += k
			gap -= k
			continue
		}
		text, known, ok := eq.next()
		if !ok {
			// Nothing left to show; keep the numbering in step.
			eq.skip(gap - 1)
			p.sno += gap
			p.dno += gap
			return nil
		}
		p.sno++
		p.dno++
		gap--
		if !known {
			continue
		}
		if err := p.equalRow(text); err != nil {
			return err
		}
	}
	return nil
}

// printEdit prints the changed lines side by side. A side only advances its
// line number when it has a line on that row.
func (p *printer) printEdit(edit model.Edit) error {
	for i := 0; i < len(edit.SourceLines) || i < len(edit.TargetLines); i++ {
		var left, right *render.Cell
		if i < len(edit.SourceLines) {
			p.sno++
			left = &render.Cell{No: p.sno, Text: edit.SourceLines[i]}
		}
		if i < len(edit.TargetLines) {
			p.dno++
			right = &render.Cell{No: p.dno, Text: edit.TargetLines[i]}
		}
		if err := p.w.Row(left, right, edit.Mode); err != nil {
			return err
		}
	}
	return nil
}

// printRest prints what follows the last edit.
func (p *printer) printRest(eq equalSource) error {
	for {
		if k := eq.unknown(math.MaxInt); k > 0 {
			p.sno += k
			p.dno += k
			continue
		}
		text, known, ok := eq.next()
		if !ok {
			return nil
		}
		p.sno++
		p.dno++
		if !known {
			continue
		}
		if err := p.equalRow(text); err != nil {
			return err
		}
	}
}

func (p *printer) equalRow(text string) error {
	return p.w.Row(&render.Cell{No: p.sno, Text: text}, &render.Cell{No: p.dno, Text: text}, model.Equal)
}
