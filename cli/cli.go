package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/sokinpui/sidediff/internal/codec"
	"github.com/sokinpui/sidediff/internal/lines"
	"github.com/sokinpui/sidediff/internal/render"
)

// Version is printed by --version.
var Version = "0.1.0"

// ErrInformational is returned after help, version or usage text was printed.
// The program stops without processing anything.
var ErrInformational = errors.New("informational request")

// Config holds all the command-line flag values.
type Config struct {
	Column     int
	File       string
	Dir        string
	LookupDirs []string
	Window     int
	Encoding   codec.Encoding
	Markdown   bool
	ToUTF8     bool
	Pager      bool
	Nvim       bool
}

// ParseFlags parses os.Args.
func ParseFlags() (*Config, error) {
	return ParseArgs(os.Args[1:], os.Stdout)
}

// ParseArgs defines and parses command-line flags using pflag. Help, version
// and usage text go to out.
func ParseArgs(args []string, out io.Writer) (*Config, error) {
	cfg := &Config{}
	var (
		help, version, usage bool
		euc, sjis, utf8      bool
		encodingName         string
	)

	fs := pflag.NewFlagSet("sidediff", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.IntVarP(&cfg.Column, "column", "c", render.DefaultWidth, "Width of each side in display columns.")
	fs.StringVarP(&cfg.File, "file", "f", "", "Read the diff from a file instead of stdin or the clipboard.")
	fs.StringVarP(&cfg.Dir, "dir", "d", "", "Compare an old source directory with the current one by running 'diff <dir> .'.")
	fs.StringSliceVarP(&cfg.LookupDirs, "lookup-dir", "l", []string{}, "Directories searched for the files named in the diff (default: current directory).")
	fs.IntVarP(&cfg.Window, "window", "w", lines.DefaultWindow, "Number of diff lines kept for lookahead.")
	fs.BoolVar(&euc, "euc", false, "Treat text as EUC-JP.")
	fs.BoolVar(&sjis, "sjis", false, "Treat text as Shift-JIS.")
	fs.BoolVar(&utf8, "utf8", false, "Treat text as UTF-8.")
	fs.StringVar(&encodingName, "encoding", "", "Text encoding: utf8, sjis, euc or auto.")
	fs.BoolVarP(&cfg.Markdown, "markdown", "m", false, "Extract ```diff and ```patch blocks from markdown input.")
	fs.BoolVar(&cfg.ToUTF8, "to-utf8", false, "Convert Shift-JIS and EUC output to UTF-8.")
	fs.BoolVarP(&cfg.Pager, "pager", "p", false, "Show the result in a scrollable pager.")
	fs.BoolVar(&cfg.Nvim, "nvim", false, "Show the result in a scratch buffer of the running Neovim.")
	fs.BoolVarP(&help, "help", "h", false, "Show this help.")
	fs.BoolVarP(&version, "version", "v", false, "Show the version.")
	fs.BoolVar(&usage, "usage", false, "Show a short usage line.")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w (see --help)", err)
	}

	switch {
	case help:
		fmt.Fprintln(out, "Usage: sidediff [flags] [diff-file]")
		fmt.Fprintln(out, "\nShow a unified or context diff side by side with line numbers.")
		fmt.Fprintln(out, "The diff is read from --file, --dir, stdin (pipe) or the clipboard.")
		fmt.Fprintln(out, "\nExample: git diff | sidediff -c 60")
		fmt.Fprintln(out, "\nFlags:")
		fmt.Fprint(out, fs.FlagUsages())
		return nil, ErrInformational
	case version:
		fmt.Fprintf(out, "sidediff %s\n", Version)
		return nil, ErrInformational
	case usage:
		fmt.Fprintln(out, "Usage: sidediff [-c column] [-f file | -d old_src_dir] [--euc|--sjis|--utf8] [diff-file]")
		return nil, ErrInformational
	}

	enc, err := encodingHint(args, euc, sjis, utf8, encodingName)
	if err != nil {
		return nil, err
	}
	cfg.Encoding = enc

	if cfg.Column < render.MinWidth {
		return nil, fmt.Errorf("--column must be at least %d, got %d", render.MinWidth, cfg.Column)
	}
	if cfg.Window < lines.MinWindow {
		return nil, fmt.Errorf("--window must be at least %d, got %d", lines.MinWindow, cfg.Window)
	}

	switch rest := fs.Args(); {
	case len(rest) > 1:
		return nil, fmt.Errorf("too many arguments: %s", strings.Join(rest, " "))
	case len(rest) == 1:
		if cfg.File != "" {
			return nil, fmt.Errorf("diff file given twice: --file %s and %s", cfg.File, rest[0])
		}
		cfg.File = rest[0]
	}
	if cfg.File != "" && cfg.Dir != "" {
		return nil, errors.New("--file and --dir are mutually exclusive")
	}

	return cfg, nil
}

// encodingHint returns the encoding named by the first hint flag on the
// command line.
func encodingHint(args []string, euc, sjis, utf8 bool, name string) (codec.Encoding, error) {
	if !euc && !sjis && !utf8 && name == "" {
		return codec.Unknown, nil
	}
	for _, arg := range args {
		if arg == "--" {
			break
		}
		switch {
		case arg == "--euc" && euc:
			return codec.EUC, nil
		case arg == "--sjis" && sjis:
			return codec.ShiftJIS, nil
		case arg == "--utf8" && utf8:
			return codec.UTF8, nil
		case arg == "--encoding" || strings.HasPrefix(arg, "--encoding="):
			return codec.ParseEncoding(name)
		}
	}
	return codec.Unknown, nil
}
