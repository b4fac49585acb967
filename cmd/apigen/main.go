package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
)

var version = "v0.1.0"

// Context represents the global context for commands
type Context struct {
	Ctx     context.Context
	Config  string
	Verbose bool
	Quiet   bool
	Stdin   io.Reader
	Stdout  io.Writer // Generated code and command results
}

// CLI represents the command-line interface
var CLI struct {
	Config   string      `help:"Configuration file path" default:"apigen.yaml"`
	Verbose  bool        `help:"Enable verbose output" short:"v"`
	Quiet    bool        `help:"Suppress output" short:"q"`
	Generate GenerateCmd `cmd:"" help:"Generate expression builders for the configured targets"`
	Validate ValidateCmd `cmd:"" help:"Check that the specification document yields a valid grammar"`
	Encode   EncodeCmd   `cmd:"" help:"Print the wire JSON of an expression written in call notation"`
	Decode   DecodeCmd   `cmd:"" help:"Print wire JSON as call notation"`
	Split    SplitCmd    `cmd:"" help:"Split combined generator output from stdin into files"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintf(ctx.Stdout, "apigen %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("apigen"),
		kong.Description("Generates typed filter and rank_by expression builders from an OpenAPI document."),
	)

	// Standard output carries generated code, so diagnostics go to stderr.
	color.Output = os.Stderr

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	appCtx := &Context{
		Ctx:     runCtx,
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
