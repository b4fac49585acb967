package main

import (
	"fmt"

	"github.com/turbopuffer/apigen/exprtext"
	"github.com/turbopuffer/apigen/grammar"
	"github.com/turbopuffer/apigen/pipeline"
)

// EncodeCmd represents the encode command
type EncodeCmd struct {
	Spec       string `help:"OpenAPI document path" type:"path"`
	Entry      string `help:"Entry point the expression belongs to" default:"filter" enum:"filter,rank_by"`
	Expression string `arg:"" help:"Expression in call notation, e.g. And(Eq(status, \"active\"), Eq(count, 5))"`
}

// Run executes the encode command
func (cmd *EncodeCmd) Run(ctx *Context) error {
	m, entry, err := compileEntry(ctx, cmd.Spec, cmd.Entry)
	if err != nil {
		return err
	}

	n, err := exprtext.ParseEntry(m, entry, cmd.Expression)
	if err != nil {
		return err
	}

	wire, err := grammar.Encode(m, n)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout, "%s\n", wire)

	return nil
}

// DecodeCmd represents the decode command
type DecodeCmd struct {
	Spec  string `help:"OpenAPI document path" type:"path"`
	Entry string `help:"Entry point the expression belongs to" default:"filter" enum:"filter,rank_by"`
	JSON  string `arg:"" name:"json" help:"Expression in wire JSON"`
}

// Run executes the decode command
func (cmd *DecodeCmd) Run(ctx *Context) error {
	m, entry, err := compileEntry(ctx, cmd.Spec, cmd.Entry)
	if err != nil {
		return err
	}

	n, err := grammar.Decode(m, entry.Root, []byte(cmd.JSON))
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Stdout, "%s\n", n)

	return nil
}

func compileEntry(ctx *Context, spec, name string) (*grammar.Model, grammar.Entry, error) {
	config, err := loadConfig(ctx, spec)
	if err != nil {
		return nil, grammar.Entry{}, err
	}

	log := newLogger(ctx)

	doc, err := readSpec(ctx, log, config)
	if err != nil {
		return nil, grammar.Entry{}, err
	}

	m, err := pipeline.Compile(ctx.Ctx, config, doc, pipeline.WithLogger(log))
	if err != nil {
		return nil, grammar.Entry{}, err
	}

	entry, ok := m.LookupEntry(name)
	if !ok {
		return nil, grammar.Entry{}, fmt.Errorf("unknown entry point '%s'", name)
	}

	return m, entry, nil
}
