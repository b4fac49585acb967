package pygen

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/stretchr/testify/require"

	"github.com/turbopuffer/apigen/testhelper"
)

const runScript = `import expressions as e

expr = e.filter_and(
    e.filter_eq("status", "active"),
    e.filter_eq("count", 5),
)
print(e.serialize(expr))

try:
    e.filter_and()
except ValueError:
    print("rejected")
`

func TestGenerator_RunsEmittedCode(t *testing.T) {
	if testing.Short() {
		t.Skip("runs generated code")
	}

	python, err := exec.LookPath("python3")
	if err != nil {
		t.Skip("python3 not on PATH")
	}

	unit, err := New().Emit(testhelper.Model(t, "minimal.yaml"))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "expressions.py"), unit.Content, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "check.py"), []byte(runScript), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, python, "check.py")
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))

	assert.Equal(t, []string{
		`["And",["Eq","status","active"],["Eq","count",5]]`,
		"rejected",
	}, strings.Split(strings.TrimSpace(string(output)), "\n"))
}
