// Package source locates and reads the OpenAPI document the generator runs on.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/turbopuffer/apigen"
)

// SpecFileEnv names the environment variable pointing at a local document
const SpecFileEnv = "SPEC_FILE_PATH"

// Stats is the part of the build metadata file the generator reads
type Stats struct {
	OpenAPISpecURL string `yaml:"openapi_spec_url"`
}

// Resolver finds the specification document
type Resolver struct {
	client *http.Client
	getenv func(string) string
}

// Option is a function that configures Resolver
type Option func(*Resolver)

// WithHTTPClient sets the client used to download the document
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithGetenv replaces the environment lookup
func WithGetenv(getenv func(string) string) Option {
	return func(r *Resolver) {
		r.getenv = getenv
	}
}

// New creates a new Resolver
func New(opts ...Option) *Resolver {
	r := &Resolver{
		client: http.DefaultClient,
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve returns the document with a description of where it came from.
// A configured file wins, then SPEC_FILE_PATH, then the openapi_spec_url of
// the stats file, which is downloaded.
func Resolve(ctx context.Context, config apigen.SpecConfig) ([]byte, string, error) {
	return New().Resolve(ctx, config)
}

// Resolve returns the document with a description of where it came from
func (r *Resolver) Resolve(ctx context.Context, config apigen.SpecConfig) ([]byte, string, error) {
	if config.File != "" {
		return readFile(config.File)
	}

	if path := r.getenv(SpecFileEnv); path != "" {
		return readFile(path)
	}

	if config.StatsFile == "" {
		return nil, "", fmt.Errorf("%w: set spec.file, %s or spec.stats_file", apigen.ErrSpecSourceNotConfigured, SpecFileEnv)
	}

	stats, err := ReadStats(config.StatsFile)
	if err != nil {
		return nil, "", err
	}

	data, err := r.fetch(ctx, stats.OpenAPISpecURL)
	if err != nil {
		return nil, "", err
	}

	return data, stats.OpenAPISpecURL, nil
}

// ReadStats decodes the build metadata file
func ReadStats(path string) (*Stats, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: stats file '%s' does not exist and %s is not set", apigen.ErrSpecSourceNotConfigured, path, SpecFileEnv)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read stats file: %w", err)
	}

	var stats Stats
	if err := yaml.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to parse stats file '%s': %w", path, err)
	}

	if stats.OpenAPISpecURL == "" {
		return nil, fmt.Errorf("%w: stats file '%s' has no openapi_spec_url", apigen.ErrSpecSourceNotConfigured, path)
	}

	return &stats, nil
}

func readFile(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read specification document: %w", err)
	}

	return data, path, nil
}

func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apigen.ErrSpecFetchFailed, url, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apigen.ErrSpecFetchFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: unexpected status %s", apigen.ErrSpecFetchFailed, url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apigen.ErrSpecFetchFailed, url, err)
	}

	return data, nil
}
