package ui

import (
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
)

// Output receives every message. Rendered diffs go to stdout, never here.
var Output io.Writer = os.Stderr

// Quiet suppresses Header, Info, Success and Warning. Errors are always shown.
var Quiet bool

func Header(format string, a ...interface{}) {
	if Quiet {
		return
	}
	HeaderColor.Fprintf(Output, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	if Quiet {
		return
	}
	InfoColor.Fprintf(Output, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	if Quiet {
		return
	}
	SuccessColor.Fprintf(Output, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	if Quiet {
		return
	}
	WarningColor.Fprintf(Output, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(Output, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	if Quiet {
		return
	}
	PathColor.Fprintf(Output, "  "+format+"\n", a...)
}
