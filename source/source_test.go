package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/stretchr/testify/require"

	"github.com/turbopuffer/apigen"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func env(values map[string]string) Option {
	return WithGetenv(func(key string) string { return values[key] })
}

func TestResolve_ConfiguredFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "openapi.yaml", "openapi: 3.1.0\n")
	other := writeFile(t, dir, "other.yaml", "other\n")

	data, origin, err := New(env(map[string]string{SpecFileEnv: other})).Resolve(context.Background(), apigen.SpecConfig{File: path})
	require.NoError(t, err)
	assert.Equal(t, "openapi: 3.1.0\n", string(data))
	assert.Equal(t, path, origin)
}

func TestResolve_EnvironmentBeforeStats(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "openapi.yaml", "from env\n")
	stats := writeFile(t, dir, ".stats.yml", "openapi_spec_url: http://127.0.0.1:1/never\n")

	data, origin, err := New(env(map[string]string{SpecFileEnv: path})).Resolve(context.Background(), apigen.SpecConfig{StatsFile: stats})
	require.NoError(t, err)
	assert.Equal(t, "from env\n", string(data))
	assert.Equal(t, path, origin)
}

func TestResolve_DownloadsFromStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openapi.yml", r.URL.Path)
		_, _ = w.Write([]byte("openapi: 3.1.0\n"))
	}))
	defer server.Close()

	stats := writeFile(t, t.TempDir(), ".stats.yml", "configured_endpoints: 12\nopenapi_spec_url: "+server.URL+"/openapi.yml\n")

	data, origin, err := New(WithHTTPClient(server.Client()), env(nil)).Resolve(context.Background(), apigen.SpecConfig{StatsFile: stats})
	require.NoError(t, err)
	assert.Equal(t, "openapi: 3.1.0\n", string(data))
	assert.Equal(t, server.URL+"/openapi.yml", origin)
}

func TestResolve_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	dir := t.TempDir()

	tests := []struct {
		name     string
		config   apigen.SpecConfig
		sentinel error
		message  string
	}{
		{
			name:     "nothing configured",
			config:   apigen.SpecConfig{},
			sentinel: apigen.ErrSpecSourceNotConfigured,
			message:  "set spec.file",
		},
		{
			name:     "missing stats file",
			config:   apigen.SpecConfig{StatsFile: filepath.Join(dir, "missing.yml")},
			sentinel: apigen.ErrSpecSourceNotConfigured,
			message:  "does not exist",
		},
		{
			name:     "stats file without url",
			config:   apigen.SpecConfig{StatsFile: writeFile(t, dir, "empty.yml", "configured_endpoints: 3\n")},
			sentinel: apigen.ErrSpecSourceNotConfigured,
			message:  "has no openapi_spec_url",
		},
		{
			name:     "http status",
			config:   apigen.SpecConfig{StatsFile: writeFile(t, dir, "notfound.yml", "openapi_spec_url: "+server.URL+"/x\n")},
			sentinel: apigen.ErrSpecFetchFailed,
			message:  "unexpected status 404 Not Found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := New(WithHTTPClient(server.Client()), env(nil)).Resolve(context.Background(), tt.config)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestResolve_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("late"))
	}))
	defer server.Close()

	stats := writeFile(t, t.TempDir(), ".stats.yml", "openapi_spec_url: "+server.URL+"\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(WithHTTPClient(server.Client()), env(nil)).Resolve(ctx, apigen.SpecConfig{StatsFile: stats})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apigen.ErrSpecFetchFailed))
	assert.True(t, errors.Is(err, context.Canceled))
}
