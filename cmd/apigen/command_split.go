package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/turbopuffer/apigen/pipeline"
)

// SplitCmd represents the split command
type SplitCmd struct {
	Dir string `help:"Directory to write the units into" default:"." type:"path"`
}

// Run executes the split command
func (cmd *SplitCmd) Run(ctx *Context) error {
	units, err := pipeline.Split(ctx.Stdin)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cmd.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", cmd.Dir, err)
	}

	log := newLogger(ctx)

	for _, unit := range units {
		path := filepath.Join(cmd.Dir, filepath.Base(unit.Filename))

		if err := os.WriteFile(path, unit.Content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		log.Successf("Wrote %s (%s)", path, unit.Target)
	}

	return nil
}
