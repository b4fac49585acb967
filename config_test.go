package apigen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ".stats.yml", config.Spec.StatsFile)
	assert.Equal(t, "", config.Spec.File)
	assert.Equal(t, DefaultTypePrefixes, config.Grammar.TypePrefixes)
	assert.Equal(t, "Filter", config.Grammar.Filter)
	assert.Equal(t, "RankBy", config.Grammar.RankBy)
	assert.Equal(t, []string{"go", "python", "typescript", "java"}, config.Targets)
	assert.False(t, config.Output.Parallel)
}

func TestConfig_Language(t *testing.T) {
	tests := []struct {
		name     string
		target   Target
		expected LanguageConfig
	}{
		{
			name:   "go",
			target: TargetGo,
			expected: LanguageConfig{
				Package:    "turbopuffer",
				JSONImport: "github.com/turbopuffer/turbopuffer-go/internal/encoding/json",
				JSONAlias:  "shimjson",
				Filename:   "expressions.go",
			},
		},
		{name: "python", target: TargetPython, expected: LanguageConfig{Filename: "expressions.py"}},
		{name: "typescript", target: TargetTypescript, expected: LanguageConfig{Filename: "expressions.ts"}},
		{
			name:     "java",
			target:   TargetJava,
			expected: LanguageConfig{Package: "com.turbopuffer.models", ClassName: "Expressions", Filename: "Expressions.java"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A zero Config still yields complete options.
			assert.Equal(t, tt.expected, (&Config{}).Language(tt.target))
			assert.Equal(t, tt.expected, DefaultConfig().Language(tt.target))
		})
	}
}

func TestParseConfig(t *testing.T) {
	config, err := ParseConfig([]byte(`
spec:
  file: ./openapi.yaml
grammar:
  type_prefixes: [Filter, RankBy]
targets: [java, go]
output:
  parallel: true
languages:
  go:
    package: tpuf
    json_import: encoding/json
    json_alias: json
  java:
    class_name: Grammar
`))
	require.NoError(t, err)

	assert.Equal(t, "./openapi.yaml", config.Spec.File)
	assert.Equal(t, ".stats.yml", config.Spec.StatsFile)
	assert.Equal(t, []string{"Filter", "RankBy"}, config.Grammar.TypePrefixes)
	assert.Equal(t, "Filter", config.Grammar.Filter)
	assert.Equal(t, []string{"java", "go"}, config.Targets)
	assert.True(t, config.Output.Parallel)

	goConfig := config.Language(TargetGo)
	assert.Equal(t, "tpuf", goConfig.Package)
	assert.Equal(t, "encoding/json", goConfig.JSONImport)
	assert.Equal(t, "json", goConfig.JSONAlias)
	assert.Equal(t, "expressions.go", goConfig.Filename)

	javaConfig := config.Language(TargetJava)
	assert.Equal(t, "com.turbopuffer.models", javaConfig.Package)
	assert.Equal(t, "Grammar", javaConfig.ClassName)
	assert.Equal(t, "Grammar.java", javaConfig.Filename)
}

func TestParseConfig_ExpandsEnvVars(t *testing.T) {
	t.Setenv("APIGEN_SPEC_DIR", "/specs")
	t.Setenv("APIGEN_STATS", "stats.yml")

	config, err := ParseConfig([]byte(`
spec:
  file: ${APIGEN_SPEC_DIR}/openapi.yaml
  stats_file: $APIGEN_STATS
`))
	require.NoError(t, err)

	assert.Equal(t, "/specs/openapi.yaml", config.Spec.File)
	assert.Equal(t, "stats.yml", config.Spec.StatsFile)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "apigen.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), config)
}

func TestLoadConfig_File(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "apigen.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("targets: [typescript]\n"), 0o644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"typescript"}, config.Targets)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("APIGEN_TEST_VAR", "value")

	tests := []struct {
		input    string
		expected string
	}{
		{"${APIGEN_TEST_VAR}", "value"},
		{"$APIGEN_TEST_VAR/x", "value/x"},
		{"pre-${APIGEN_TEST_VAR}-post", "pre-value-post"},
		{"${APIGEN_UNSET_VAR}", ""},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}
