package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sokinpui/sidediff/cli"
	"github.com/sokinpui/sidediff/internal/ui"
	"github.com/sokinpui/sidediff/sidediff"
)

func main() {
	cfg, err := cli.ParseFlags()
	if err != nil {
		if !errors.Is(err, cli.ErrInformational) {
			ui.Error("Error: %v", err)
		}
		os.Exit(1)
	}

	app, err := sidediff.New(cfg)
	if err != nil {
		ui.Error("Failed to initialize application: %v", err)
		os.Exit(1)
	}

	if err := app.Execute(); err != nil {
		var detailed *sidediff.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
		}
		ui.Error("Error: %v", err)
		os.Exit(1)
	}
}
