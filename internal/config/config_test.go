package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
database: jobs.db
views: ./views
max_retries: 5
log_level: debug
`), "viewql.yaml")
	require.NoError(t, err)

	assert.Equal(t, "jobs.db", cfg.Database)
	assert.Equal(t, "./views", cfg.Views)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("views: v\n"), "viewql.yaml")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.Empty(t, cfg.Database)

	cfg, err = Parse(nil, "empty.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "unknown field", data: "database: a.db\nretries: 2\n", wantErr: "field retries not found"},
		{name: "negative retries", data: "max_retries: -1\n", wantErr: "max_retries must not be negative"},
		{name: "bad level", data: "log_level: loud\n", wantErr: `invalid log_level "loud"`},
		{name: "bad yaml", data: "database: [\n", wantErr: "parsing bad.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "bad.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("database: data.db\nviews: views\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data.db"), cfg.Database)
	assert.Equal(t, filepath.Join(dir, "views"), cfg.Views)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoadOptional_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_retries: 1\n"), 0o644))

	cfg, err := LoadOptional(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.MaxRetries)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
