package apigen

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// Config represents the apigen configuration
type Config struct {
	Spec      SpecConfig                `yaml:"spec"`
	Grammar   GrammarConfig             `yaml:"grammar"`
	Targets   []string                  `yaml:"targets"`
	Output    OutputConfig              `yaml:"output"`
	Languages map[string]LanguageConfig `yaml:"languages"`
}

// SpecConfig describes where the OpenAPI document comes from
type SpecConfig struct {
	File      string `yaml:"file"`       // Local document path; SPEC_FILE_PATH overrides an empty value
	StatsFile string `yaml:"stats_file"` // Build metadata file carrying openapi_spec_url
}

// GrammarConfig selects the grammar schemas inside the document
type GrammarConfig struct {
	TypePrefixes []string `yaml:"type_prefixes"`
	Filter       string   `yaml:"filter"`  // Entry schema for filter expressions
	RankBy       string   `yaml:"rank_by"` // Entry schema for rank_by expressions
}

// OutputConfig controls how emission units are produced
type OutputConfig struct {
	Parallel bool `yaml:"parallel"` // Run emitters concurrently; output order is unchanged
}

// LanguageConfig represents per-target naming and style options
type LanguageConfig struct {
	Package    string `yaml:"package"`     // Go package, Java package, Python module docstring
	ClassName  string `yaml:"class_name"`  // Java wrapper class
	JSONImport string `yaml:"json_import"` // Go JSON marshaller import path
	JSONAlias  string `yaml:"json_alias"`  // Go JSON marshaller import alias
	Filename   string `yaml:"filename"`    // Suggested file name used by split
}

// DefaultTypePrefixes are the schema name prefixes that belong to the expression grammar.
var DefaultTypePrefixes = []string{"Aggregate", "Expr", "Filter", "RankBy"}

// LoadConfig loads configuration from the specified file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Check if config file exists
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		// Return default configuration if file doesn't exist
		config := DefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig decodes, validates and completes a configuration document
func ParseConfig(data []byte) (*Config, error) {
	var config Config

	// Parse YAML with strict mode to detect unknown fields
	err := yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	applyDefaults(&config)
	expandConfigEnvVars(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	seen := make(map[string]bool, len(config.Targets))

	for _, name := range config.Targets {
		if _, err := ParseTarget(name); err != nil {
			return err
		}

		if seen[name] {
			return fmt.Errorf("%w: target '%s' listed more than once", ErrConfigValidation, name)
		}

		seen[name] = true
	}

	for name := range config.Languages {
		if _, err := ParseTarget(name); err != nil {
			return fmt.Errorf("languages.%s: %w", name, err)
		}
	}

	for _, prefix := range config.Grammar.TypePrefixes {
		if prefix == "" {
			return fmt.Errorf("%w: grammar.type_prefixes must not contain empty prefixes", ErrConfigValidation)
		}
	}

	if config.Grammar.Filter != "" && config.Grammar.Filter == config.Grammar.RankBy {
		return fmt.Errorf("%w: grammar.filter and grammar.rank_by must name different schemas, both are '%s'", ErrConfigValidation, config.Grammar.Filter)
	}

	if goConfig, ok := config.Languages[string(TargetGo)]; ok {
		if goConfig.JSONImport != "" && goConfig.JSONAlias == "" {
			return fmt.Errorf("%w: languages.go.json_alias is required when json_import is set", ErrConfigValidation)
		}
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)

	return config
}

// applyDefaults applies default values to missing configuration fields
func applyDefaults(config *Config) {
	if config.Spec.StatsFile == "" {
		config.Spec.StatsFile = ".stats.yml"
	}

	if len(config.Grammar.TypePrefixes) == 0 {
		config.Grammar.TypePrefixes = append([]string{}, DefaultTypePrefixes...)
	}

	if config.Grammar.Filter == "" {
		config.Grammar.Filter = "Filter"
	}

	if config.Grammar.RankBy == "" {
		config.Grammar.RankBy = "RankBy"
	}

	if len(config.Targets) == 0 {
		for _, t := range KnownTargets {
			config.Targets = append(config.Targets, string(t))
		}
	}

	if config.Languages == nil {
		config.Languages = make(map[string]LanguageConfig)
	}

	for _, t := range KnownTargets {
		lang := config.Languages[string(t)]
		applyLanguageDefaults(t, &lang)
		config.Languages[string(t)] = lang
	}
}

// applyLanguageDefaults fills naming options a target needs
func applyLanguageDefaults(target Target, lang *LanguageConfig) {
	switch target {
	case TargetGo:
		if lang.Package == "" {
			lang.Package = "turbopuffer"
		}

		if lang.JSONImport == "" {
			lang.JSONImport = "github.com/turbopuffer/turbopuffer-go/internal/encoding/json"
			lang.JSONAlias = "shimjson"
		}

		if lang.Filename == "" {
			lang.Filename = "expressions.go"
		}
	case TargetPython:
		if lang.Filename == "" {
			lang.Filename = "expressions.py"
		}
	case TargetTypescript:
		if lang.Filename == "" {
			lang.Filename = "expressions.ts"
		}
	case TargetJava:
		if lang.Package == "" {
			lang.Package = "com.turbopuffer.models"
		}

		if lang.ClassName == "" {
			lang.ClassName = "Expressions"
		}

		if lang.Filename == "" {
			lang.Filename = lang.ClassName + ".java"
		}
	}
}

// Language returns the options for a target
func (c *Config) Language(target Target) LanguageConfig {
	lang := c.Languages[string(target)]
	applyLanguageDefaults(target, &lang)

	return lang
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	// Try to load .env file from current directory
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareEnvVar   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1] // Remove ${ and }
		return os.Getenv(varName)
	})

	return bareEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})
}

// expandConfigEnvVars expands environment variables in path settings
func expandConfigEnvVars(config *Config) {
	config.Spec.File = expandEnvVars(config.Spec.File)
	config.Spec.StatsFile = expandEnvVars(config.Spec.StatsFile)
}

// fileExists checks if a file exists
func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
