package main

import (
	"fmt"

	"github.com/turbopuffer/apigen/pipeline"
)

// ValidateCmd represents the validate command
type ValidateCmd struct {
	Spec string `help:"OpenAPI document path" type:"path"`
}

// Run executes the validate command
func (cmd *ValidateCmd) Run(ctx *Context) error {
	config, err := loadConfig(ctx, cmd.Spec)
	if err != nil {
		return err
	}

	log := newLogger(ctx)

	doc, err := readSpec(ctx, log, config)
	if err != nil {
		return err
	}

	m, err := pipeline.Compile(ctx.Ctx, config, doc, pipeline.WithLogger(log))
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout, "value types: %d\nunions: %d\noperators: %d\n", len(m.ValueTypes), len(m.Unions), len(m.Operators))

	for _, entry := range m.Entries() {
		fmt.Fprintf(ctx.Stdout, "entry %s: %d operator(s)\n", entry.Name, len(entry.Operators))
	}

	log.Successf("Grammar is valid")

	return nil
}
