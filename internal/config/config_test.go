package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50, cfg.Fill.Tolerance)
	assert.Equal(t, 150, cfg.Fill.WideTolerance)
	assert.Equal(t, 50, cfg.History.Capacity)
	assert.Equal(t, 0.5, cfg.Viewport.MinScale)
	assert.Equal(t, 5.0, cfg.Viewport.MaxScale)
	assert.Equal(t, 8, cfg.Server.MaxPeers)
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coloringboard.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[canvas]
width = 512
height = 512

[history]
capacity = 10

[brush]
color = "#00BFFF"

[server]
enabled = true
listen = ":9999"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Canvas.Width)
	assert.Equal(t, 0.85, cfg.Canvas.FitRatio)
	assert.Equal(t, 10, cfg.History.Capacity)
	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, ":9999", cfg.Server.Listen)

	opts := cfg.EditorOptions()
	assert.Equal(t, 512, opts.PageWidth)
	assert.Equal(t, 10, opts.HistoryCapacity)
	assert.Equal(t, "#00BFFF", opts.BrushColor.Hex())
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, os.WriteFile(path, []byte("[canvas]\nwidht = 3\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canvas.widht")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.ApplyEnv(env(map[string]string{
		EnvListenAddr: ":7000",
		EnvLogLevel:   "debug",
		EnvCatalog:    "/srv/pages/catalog.toml",
	}))
	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, ":7000", cfg.Server.Listen)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/srv/pages/catalog.toml", cfg.CatalogSource().Manifest)

	cfg.ApplyEnv(env(map[string]string{EnvCatalog: "/srv/pages"}))
	src := cfg.CatalogSource()
	assert.Equal(t, "/srv/pages", src.Dir)
	assert.Empty(t, src.Manifest)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Canvas.Width = 0 }},
		{"fit ratio", func(c *Config) { c.Canvas.FitRatio = 1.5 }},
		{"tolerance", func(c *Config) { c.Fill.Tolerance = 300 }},
		{"wide below base", func(c *Config) { c.Fill.WideTolerance = 10 }},
		{"history", func(c *Config) { c.History.Capacity = 0 }},
		{"scale range", func(c *Config) { c.Viewport.MinScale, c.Viewport.MaxScale = 2, 1 }},
		{"brush color", func(c *Config) { c.Brush.Color = "#zzz" }},
		{"server listen", func(c *Config) { c.Server.Enabled, c.Server.Listen = true, "" }},
		{"max peers", func(c *Config) { c.Server.MaxPeers = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
