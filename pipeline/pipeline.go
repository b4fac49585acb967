// Package pipeline runs the generator stages in order: parse the document,
// extract the grammar schemas, build and validate the model, then emit and
// write one unit per configured target.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/grammar"
	"github.com/turbopuffer/apigen/langs"
	"github.com/turbopuffer/apigen/langs/langcommon"
	"github.com/turbopuffer/apigen/openapi"
)

// Logger receives progress messages
type Logger interface {
	Logf(format string, args ...any)
}

// LoggerFunc adapts a function to Logger
type LoggerFunc func(format string, args ...any)

// Logf calls f
func (f LoggerFunc) Logf(format string, args ...any) {
	f(format, args...)
}

// Result is what a successful run produced
type Result struct {
	Model *grammar.Model
	Units []*langcommon.Unit
}

// Option is a function that configures a run
type Option func(*runner)

// WithLogger reports stage progress to logger
func WithLogger(logger Logger) Option {
	return func(r *runner) {
		r.logger = logger
	}
}

// WithEmitters replaces the emitters derived from the configuration
func WithEmitters(emitters ...langcommon.Emitter) Option {
	return func(r *runner) {
		r.emitters = emitters
	}
}

type runner struct {
	logger   Logger
	emitters []langcommon.Emitter
}

func (r *runner) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Logf(format, args...)
	}
}

func newRunner(opts []Option) *runner {
	r := &runner{}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Compile turns a specification document into a validated grammar model
func Compile(ctx context.Context, config *apigen.Config, doc []byte, opts ...Option) (*grammar.Model, error) {
	return newRunner(opts).compile(ctx, config, doc)
}

func (r *runner) compile(ctx context.Context, config *apigen.Config, doc []byte) (*grammar.Model, error) {
	parsed, err := openapi.Parse(doc)
	if err != nil {
		return nil, stageError(StageParse, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schema, err := openapi.Extract(parsed, openapi.OptionsFromConfig(config.Grammar))
	if err != nil {
		return nil, stageError(StageExtract, err)
	}

	r.logf("extracted %d grammar schema(s)", len(schema.Schemas))

	m, err := grammar.Build(schema)
	if err != nil {
		return nil, stageError(StageBuild, err)
	}

	r.logf("built model: %d operator(s), %d union(s), %d value type(s)", len(m.Operators), len(m.Unions), len(m.ValueTypes))

	if _, err := grammar.Validate(m); err != nil {
		return nil, stageError(StageValidate, err)
	}

	return m, nil
}

// Run compiles the document and writes one unit per configured target to w, in
// configured order. Each unit is preceded by a marker line and written with a
// single Write call. Units written before a failure stay written.
func Run(ctx context.Context, config *apigen.Config, doc []byte, w io.Writer, opts ...Option) (*Result, error) {
	r := newRunner(opts)

	if r.emitters == nil {
		emitters, err := langs.ForConfig(config)
		if err != nil {
			return nil, err
		}

		r.emitters = emitters
	}

	m, err := r.compile(ctx, config, doc)
	if err != nil {
		return nil, err
	}

	result := &Result{Model: m}

	if config.Output.Parallel {
		units, err := r.emitParallel(ctx, m)
		if err != nil {
			return nil, err
		}

		for _, unit := range units {
			if err := r.write(w, unit); err != nil {
				return result, err
			}

			result.Units = append(result.Units, unit)
		}

		return result, nil
	}

	for _, emitter := range r.emitters {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		unit, err := r.emit(emitter, m)
		if err != nil {
			return result, err
		}

		if err := r.write(w, unit); err != nil {
			return result, err
		}

		result.Units = append(result.Units, unit)
	}

	return result, nil
}

func (r *runner) emit(emitter langcommon.Emitter, m *grammar.Model) (*langcommon.Unit, error) {
	unit, err := emitter.Emit(m)
	if err != nil {
		return nil, stageError(StageEmit(string(emitter.Target())), err)
	}

	r.logf("emitted %s (%d bytes)", unit.Filename, len(unit.Content))

	return unit, nil
}

// emitParallel runs every emitter concurrently. The model is read-only, so
// emitters share it without locking.
func (r *runner) emitParallel(ctx context.Context, m *grammar.Model) ([]*langcommon.Unit, error) {
	units := make([]*langcommon.Unit, len(r.emitters))
	g, ctx := errgroup.WithContext(ctx)

	for i, emitter := range r.emitters {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			unit, err := r.emit(emitter, m)
			if err != nil {
				return err
			}

			units[i] = unit

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return units, nil
}

func (r *runner) write(w io.Writer, unit *langcommon.Unit) error {
	var buf bytes.Buffer

	buf.WriteString(Marker(unit))
	buf.WriteByte('\n')
	buf.Write(unit.Content)

	if len(unit.Content) > 0 && unit.Content[len(unit.Content)-1] != '\n' {
		buf.WriteByte('\n')
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return stageError(StageWrite, fmt.Errorf("%s: %w", unit.Target, err))
	}

	return nil
}
