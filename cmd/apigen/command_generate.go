package main

import (
	"fmt"

	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/langs"
	"github.com/turbopuffer/apigen/pipeline"
	"github.com/turbopuffer/apigen/source"
)

// GenerateCmd represents the generate command
type GenerateCmd struct {
	Targets  []string `arg:"" optional:"" help:"Targets to generate (go, python, typescript, java); defaults to the configured targets"`
	Spec     string   `help:"OpenAPI document path" type:"path"`
	Parallel bool     `help:"Run emitters concurrently"`
	Bare     bool     `help:"Write the code of a single target without the marker line"`
}

// Run executes the generate command
func (cmd *GenerateCmd) Run(ctx *Context) error {
	config, err := loadConfig(ctx, cmd.Spec)
	if err != nil {
		return err
	}

	if len(cmd.Targets) > 0 {
		for _, name := range cmd.Targets {
			if _, err := apigen.ParseTarget(name); err != nil {
				return err
			}
		}

		config.Targets = cmd.Targets
	}

	if cmd.Parallel {
		config.Output.Parallel = true
	}

	log := newLogger(ctx)

	doc, err := readSpec(ctx, log, config)
	if err != nil {
		return err
	}

	if cmd.Bare {
		return cmd.runBare(ctx, log, config, doc)
	}

	result, err := pipeline.Run(ctx.Ctx, config, doc, ctx.Stdout, pipeline.WithLogger(log))
	if err != nil {
		return err
	}

	log.Successf("Generated %d unit(s)", len(result.Units))

	return nil
}

// runBare writes one target's code as is, the way a single-language build step expects it
func (cmd *GenerateCmd) runBare(ctx *Context, log *logger, config *apigen.Config, doc []byte) error {
	if len(config.Targets) != 1 {
		return fmt.Errorf("%w, got %d", ErrBareNeedsOneTarget, len(config.Targets))
	}

	target, err := apigen.ParseTarget(config.Targets[0])
	if err != nil {
		return err
	}

	emitter, err := langs.New(target, config.Language(target))
	if err != nil {
		return err
	}

	m, err := pipeline.Compile(ctx.Ctx, config, doc, pipeline.WithLogger(log))
	if err != nil {
		return err
	}

	unit, err := emitter.Emit(m)
	if err != nil {
		return &pipeline.StageError{Stage: pipeline.StageEmit(string(target)), Err: err}
	}

	if _, err := ctx.Stdout.Write(unit.Content); err != nil {
		return &pipeline.StageError{Stage: pipeline.StageWrite, Err: err}
	}

	log.Successf("Generated %s", unit.Filename)

	return nil
}

// loadConfig loads the configuration file and applies the --spec override
func loadConfig(ctx *Context, spec string) (*apigen.Config, error) {
	config, err := apigen.LoadConfig(ctx.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if spec != "" {
		config.Spec.File = spec
	}

	return config, nil
}

func readSpec(ctx *Context, log *logger, config *apigen.Config) ([]byte, error) {
	doc, origin, err := source.Resolve(ctx.Ctx, config.Spec)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	log.Logf("read specification document from %s (%d bytes)", origin, len(doc))

	return doc, nil
}
