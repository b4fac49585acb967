package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/stretchr/testify/require"

	"github.com/turbopuffer/apigen"
)

const fixture = "../../testdata/specs/turbopuffer.yaml"

func newTestContext(t *testing.T, stdin string) (*Context, *bytes.Buffer) {
	t.Helper()

	var stdout bytes.Buffer

	return &Context{
		Ctx:    context.Background(),
		Config: filepath.Join(t.TempDir(), "apigen.yaml"),
		Quiet:  true,
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
	}, &stdout
}

func TestGenerateCmd(t *testing.T) {
	t.Run("all configured targets with markers", func(t *testing.T) {
		ctx, stdout := newTestContext(t, "")

		cmd := &GenerateCmd{Spec: fixture}
		require.NoError(t, cmd.Run(ctx))

		out := stdout.String()
		assert.Contains(t, out, "// @@ apigen target=go file=expressions.go @@")
		assert.Contains(t, out, "# @@ apigen target=python file=expressions.py @@")
		assert.Contains(t, out, "// @@ apigen target=typescript file=expressions.ts @@")
		assert.Contains(t, out, "// @@ apigen target=java file=Expressions.java @@")
	})

	t.Run("selected targets", func(t *testing.T) {
		ctx, stdout := newTestContext(t, "")

		cmd := &GenerateCmd{Spec: fixture, Targets: []string{"python"}, Parallel: true}
		require.NoError(t, cmd.Run(ctx))

		assert.True(t, strings.HasPrefix(stdout.String(), "# @@ apigen target=python"))
		assert.NotContains(t, stdout.String(), "target=go")
	})

	t.Run("bare output", func(t *testing.T) {
		ctx, stdout := newTestContext(t, "")

		cmd := &GenerateCmd{Spec: fixture, Targets: []string{"go"}, Bare: true}
		require.NoError(t, cmd.Run(ctx))

		assert.True(t, strings.HasPrefix(stdout.String(), "// Code generated by apigen. DO NOT EDIT."))
	})

	t.Run("bare output needs one target", func(t *testing.T) {
		ctx, _ := newTestContext(t, "")

		cmd := &GenerateCmd{Spec: fixture, Bare: true}
		err := cmd.Run(ctx)
		assert.True(t, errors.Is(err, ErrBareNeedsOneTarget))
	})

	t.Run("unknown target", func(t *testing.T) {
		ctx, stdout := newTestContext(t, "")

		cmd := &GenerateCmd{Spec: fixture, Targets: []string{"rust"}}
		err := cmd.Run(ctx)
		assert.True(t, errors.Is(err, apigen.ErrUnknownTarget))
		assert.Equal(t, "", stdout.String())
	})

	t.Run("missing document", func(t *testing.T) {
		ctx, _ := newTestContext(t, "")

		cmd := &GenerateCmd{Spec: filepath.Join(t.TempDir(), "missing.yaml")}
		assert.Error(t, cmd.Run(ctx))
	})
}

func TestValidateCmd(t *testing.T) {
	ctx, stdout := newTestContext(t, "")

	cmd := &ValidateCmd{Spec: fixture}
	require.NoError(t, cmd.Run(ctx))

	assert.Contains(t, stdout.String(), "entry Filter: ")
	assert.Contains(t, stdout.String(), "entry RankBy: ")
}

func TestEncodeDecodeCmd(t *testing.T) {
	ctx, stdout := newTestContext(t, "")

	encode := &EncodeCmd{Spec: fixture, Entry: "filter", Expression: `And(Eq(status, "active"), Eq(count, 5))`}
	require.NoError(t, encode.Run(ctx))
	assert.Equal(t, `["And",["Eq","status","active"],["Eq","count",5]]`+"\n", stdout.String())

	wire := strings.TrimSpace(stdout.String())
	stdout.Reset()

	decode := &DecodeCmd{Spec: fixture, Entry: "filter", JSON: wire}
	require.NoError(t, decode.Run(ctx))
	assert.True(t, strings.HasPrefix(stdout.String(), "FilterAnd("))

	// Decoded call notation names operators by schema and encodes back to the same wire form.
	encode.Expression = strings.TrimSpace(stdout.String())
	stdout.Reset()

	require.NoError(t, encode.Run(ctx))
	assert.Equal(t, wire+"\n", stdout.String())
}

func TestEncodeCmd_WrongEntry(t *testing.T) {
	ctx, stdout := newTestContext(t, "")

	cmd := &EncodeCmd{Spec: fixture, Entry: "filter", Expression: `Attribute(price, "desc")`}
	err := cmd.Run(ctx)
	assert.True(t, errors.Is(err, apigen.ErrInvalidExpression))
	assert.Equal(t, "", stdout.String())
}

func TestSplitCmd(t *testing.T) {
	stream := strings.Join([]string{
		"preamble",
		"// @@ apigen target=go file=expressions.go @@",
		"package turbopuffer",
		"# @@ apigen target=python file=pkg/expressions.py @@",
		"x = 1",
		"",
	}, "\n")

	ctx, _ := newTestContext(t, stream)
	dir := filepath.Join(t.TempDir(), "out")

	cmd := &SplitCmd{Dir: dir}
	require.NoError(t, cmd.Run(ctx))

	goSrc, err := os.ReadFile(filepath.Join(dir, "expressions.go"))
	require.NoError(t, err)
	assert.Equal(t, "package turbopuffer\n", string(goSrc))

	pySrc, err := os.ReadFile(filepath.Join(dir, "expressions.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", string(pySrc))
}

func TestVersionCmd(t *testing.T) {
	ctx, stdout := newTestContext(t, "")

	require.NoError(t, (&VersionCmd{}).Run(ctx))
	assert.Equal(t, "apigen "+version+"\n", stdout.String())
}
