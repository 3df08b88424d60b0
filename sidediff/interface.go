package sidediff

import (
	"fmt"
	"io"

	"github.com/sokinpui/sidediff/cli"
	"github.com/sokinpui/sidediff/internal/codec"
	"github.com/sokinpui/sidediff/internal/lines"
	"github.com/sokinpui/sidediff/internal/render"
)

// Config for using sidediff as a library. Zero values pick the defaults.
type Config struct {
	// Width of each side in display columns.
	Width int
	// Encoding name: "utf8", "sjis", "euc", or empty to detect it.
	Encoding string
	// Directories searched for the files named in the diff.
	LookupDirs []string
	// Window is the number of diff lines kept for lookahead.
	Window int
	// ToUTF8 converts Shift-JIS and EUC output to UTF-8.
	ToUTF8 bool
}

// Render reads a unified or context diff from r and writes it side by side to w.
func Render(r io.Reader, w io.Writer, config Config) error {
	enc, err := codec.ParseEncoding(config.Encoding)
	if err != nil {
		return err
	}
	cliCfg := &cli.Config{
		Column:     config.Width,
		LookupDirs: config.LookupDirs,
		Window:     config.Window,
		Encoding:   enc,
		ToUTF8:     config.ToUTF8,
	}
	if cliCfg.Column == 0 {
		cliCfg.Column = render.DefaultWidth
	}
	if cliCfg.Window == 0 {
		cliCfg.Window = lines.DefaultWindow
	}

	app, err := New(cliCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize sidediff: %w", err)
	}
	return app.render(r, w, cliCfg.ToUTF8, nil)
}
