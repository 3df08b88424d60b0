package sidediff

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/sokinpui/sidediff/cli"
	"github.com/sokinpui/sidediff/internal/codec"
	"github.com/sokinpui/sidediff/internal/fs"
	"github.com/sokinpui/sidediff/internal/lines"
	"github.com/sokinpui/sidediff/internal/nvim"
	"github.com/sokinpui/sidediff/internal/parser"
	"github.com/sokinpui/sidediff/internal/render"
	"github.com/sokinpui/sidediff/internal/source"
	"github.com/sokinpui/sidediff/internal/tui"
	"github.com/sokinpui/sidediff/internal/ui"
)

// App orchestrates the entire application logic.
type App struct {
	cfg          *cli.Config
	pathResolver *fs.PathResolver
	codec        *codec.Codec
	out          io.Writer
	stdin        io.Reader
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// New creates a new App instance.
func New(cfg *cli.Config) (*App, error) {
	if cfg.Column < render.MinWidth {
		return nil, fmt.Errorf("column width must be at least %d, got %d", render.MinWidth, cfg.Column)
	}
	pathResolver, err := fs.NewPathResolver(cfg.LookupDirs)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize path resolver: %w", err)
	}
	return &App{
		cfg:          cfg,
		pathResolver: pathResolver,
		codec:        codec.New(codec.WithEncoding(cfg.Encoding)),
		out:          os.Stdout,
	}, nil
}

// SetOutput redirects the rendered diff, which goes to stdout by default.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
}

// SetInput reads the diff from r instead of stdin or the clipboard.
func (a *App) SetInput(r io.Reader) {
	a.stdin = r
}

// Execute reads the configured input and shows it side by side.
func (a *App) Execute() (err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	rc, err := source.Open(source.Options{
		File:     a.cfg.File,
		Dir:      a.cfg.Dir,
		Markdown: a.cfg.Markdown,
		Stdin:    a.stdin,
	})
	if err != nil {
		return err
	}
	defer rc.Close()

	switch {
	case a.cfg.Pager:
		return a.showIn(rc, tui.Run)
	case a.cfg.Nvim:
		return a.showIn(rc, showInNvim)
	default:
		return a.render(rc, a.out, a.cfg.ToUTF8, nil)
	}
}

// showIn renders into memory and hands the rows to an interactive sink.
// Sinks display UTF-8, so rows are always transcoded.
func (a *App) showIn(r io.Reader, show func(title string, rows []render.Line) error) error {
	var rows []render.Line
	collect := func(l render.Line) {
		rows = append(rows, l)
	}
	if err := a.render(r, io.Discard, true, collect); err != nil {
		return err
	}
	for len(rows) > 0 && rows[len(rows)-1].Text == "" {
		rows = rows[:len(rows)-1]
	}
	return show(a.title(), rows)
}

func showInNvim(title string, rows []render.Line) error {
	m, err := nvim.New()
	if err != nil {
		return err
	}
	defer m.Close()

	text := make([]string, len(rows))
	for i, row := range rows {
		text[i] = row.Text
	}
	if err := m.Show(title, text); err != nil {
		return err
	}
	ui.Success("Sent %d lines to nvim", len(rows))
	return nil
}

func (a *App) title() string {
	switch {
	case a.cfg.File != "":
		return a.cfg.File
	case a.cfg.Dir != "":
		return a.cfg.Dir + " .. ."
	default:
		return "sidediff"
	}
}

// render parses the diff behind r and writes the side-by-side rows to w.
// onLine, when set, also receives every line.
func (a *App) render(r io.Reader, w io.Writer, toUTF8 bool, onLine func(render.Line)) error {
	src := lines.NewSource(r, a.cfg.Window)
	p, err := parser.New(src)
	if err != nil {
		return err
	}

	rdr, err := render.New(a.codec, a.cfg.Column)
	if err != nil {
		return err
	}
	writer := render.NewWriter(rdr, w)
	writer.OnLine = onLine
	if toUTF8 {
		writer.Transform = a.codec.ToUTF8
	}

	if err := newPrinter(p, writer, a.pathResolver).print(); err != nil {
		return fmt.Errorf("failed to render %s diff: %w", p.Format(), err)
	}
	return nil
}
