package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/sokinpui/sidediff/internal/parser"
	"github.com/sokinpui/sidediff/internal/ui"
)

// ErrNoInput is returned when no diff text could be obtained.
var ErrNoInput = errors.New("no diff input")

// Options selects where the diff text comes from. File takes precedence over
// Dir; with neither, piped stdin is read, then the clipboard.
type Options struct {
	File string
	Dir  string
	// Markdown extracts fenced diff and patch blocks before parsing.
	Markdown bool
	// Stdin overrides os.Stdin. When set it is always read.
	Stdin io.Reader
}

// diffCommand runs the comparison for Options.Dir.
var diffCommand = "diff"

// readClipboard is swapped out in tests.
var readClipboard = clipboard.ReadAll

// Open returns the diff text selected by opts. The caller closes it.
func Open(opts Options) (io.ReadCloser, error) {
	rc, err := open(opts)
	if err != nil {
		return nil, err
	}
	if !opts.Markdown {
		return rc, nil
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown input: %w", err)
	}
	text, n, err := parser.ExtractDiffText(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markdown: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("no diff or patch code blocks found: %w", ErrNoInput)
	}
	ui.Info("Extracted %d diff block(s) from markdown", n)
	return io.NopCloser(strings.NewReader(text)), nil
}

func open(opts Options) (io.ReadCloser, error) {
	switch {
	case opts.File != "":
		f, err := os.Open(opts.File)
		if err != nil {
			return nil, fmt.Errorf("failed to open diff file: %w", err)
		}
		return f, nil

	case opts.Dir != "":
		out, err := runDiff(opts.Dir)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(out)), nil

	case opts.Stdin != nil:
		return io.NopCloser(opts.Stdin), nil

	case stdinPiped():
		ui.Header("--- Reading from stdin ---")
		return io.NopCloser(os.Stdin), nil
	}

	ui.Header("--- Reading from clipboard ---")
	content, err := readClipboard()
	if err != nil {
		return nil, fmt.Errorf("failed to read from clipboard: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("clipboard is empty: %w", ErrNoInput)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

// runDiff compares dir against the working directory. diff exits with 1
// when the inputs differ, which is the expected case here.
func runDiff(dir string) ([]byte, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var stderr bytes.Buffer
	cmd := exec.Command(diffCommand, dir, ".")
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			return nil, fmt.Errorf("failed to run %s %s .: %w: %s", diffCommand, dir, err, strings.TrimSpace(stderr.String()))
		}
	}
	if len(out) == 0 {
		ui.Info("No differences between %s and the working directory", dir)
	}
	return out, nil
}

func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
