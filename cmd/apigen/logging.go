package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

// logger prints timestamped progress to color.Output
type logger struct {
	verbose bool
	quiet   bool
}

func newLogger(ctx *Context) *logger {
	return &logger{verbose: ctx.Verbose, quiet: ctx.Quiet}
}

// Logf prints a progress line in verbose mode
func (l *logger) Logf(format string, args ...any) {
	if l.verbose && !l.quiet {
		color.Blue("[%s] %s", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
	}
}

// Successf prints a completion line unless quiet
func (l *logger) Successf(format string, args ...any) {
	if !l.quiet {
		color.Green(format, args...)
	}
}
