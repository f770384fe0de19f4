// Package config loads ColoringBoard settings: built-in defaults, then an
// optional TOML file, then environment variables. Command line flags are
// applied on top by main.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"ColoringBoard/internal/editor"
	"ColoringBoard/internal/raster"
	"ColoringBoard/internal/state"
)

const (
	EnvListenAddr = "COLORINGBOARD_LISTEN"
	EnvLogLevel   = "COLORINGBOARD_LOG_LEVEL"
	EnvCatalog    = "COLORINGBOARD_CATALOG"
)

type Canvas struct {
	Width        int     `toml:"width"`
	Height       int     `toml:"height"`
	DoodleWidth  int     `toml:"doodle_width"`
	DoodleHeight int     `toml:"doodle_height"`
	FitRatio     float64 `toml:"fit_ratio"`
}

type Fill struct {
	Tolerance     int `toml:"tolerance"`
	WideTolerance int `toml:"wide_tolerance"`
}

type History struct {
	Capacity int `toml:"capacity"`
}

type Viewport struct {
	MinScale     float64 `toml:"min_scale"`
	MaxScale     float64 `toml:"max_scale"`
	TapThreshold float64 `toml:"tap_threshold"`
}

type Brush struct {
	Size  float64 `toml:"size"`
	Color string  `toml:"color"`
}

type Catalog struct {
	// Manifest is a TOML catalog file; it wins over Dir.
	Manifest string `toml:"manifest"`
	// Dir is scanned for one subdirectory per category.
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

type Favorites struct {
	Path string `toml:"path"`
}

type Server struct {
	Enabled   bool   `toml:"enabled"`
	Listen    string `toml:"listen"`
	Advertise bool   `toml:"advertise"`
	// MaxPeers caps concurrent browser sessions; 0 means no limit.
	MaxPeers int `toml:"max_peers"`
}

type Log struct {
	Level string `toml:"level"`
}

// Config is the complete application configuration.
type Config struct {
	Canvas    Canvas    `toml:"canvas"`
	Fill      Fill      `toml:"fill"`
	History   History   `toml:"history"`
	Viewport  Viewport  `toml:"viewport"`
	Brush     Brush     `toml:"brush"`
	Catalog   Catalog   `toml:"catalog"`
	Favorites Favorites `toml:"favorites"`
	Server    Server    `toml:"server"`
	Log       Log       `toml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	ed := editor.DefaultOptions()
	return Config{
		Canvas: Canvas{
			Width:        ed.PageWidth,
			Height:       ed.PageHeight,
			DoodleWidth:  ed.DoodleWidth,
			DoodleHeight: ed.DoodleHeight,
			FitRatio:     ed.FitRatio,
		},
		Fill:      Fill{Tolerance: ed.Fill.Tolerance, WideTolerance: ed.Fill.WideTolerance},
		History:   History{Capacity: ed.HistoryCapacity},
		Viewport:  Viewport{MinScale: ed.MinScale, MaxScale: ed.MaxScale, TapThreshold: ed.TapThreshold},
		Brush:     Brush{Size: ed.BrushSize, Color: ed.BrushColor.Hex()},
		Favorites: Favorites{Path: defaultFavoritesPath()},
		Server:    Server{Listen: ":8080", Advertise: true, MaxPeers: 8},
		Log:       Log{Level: "info"},
	}
}

func defaultFavoritesPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "favorites.json"
	}
	return filepath.Join(dir, "coloringboard", "favorites.json")
}

// Load returns the defaults overlaid with the TOML file at path, if path is
// not empty, and then with the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			keys := make([]string, len(undec))
			for i, k := range undec {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("load config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

// ApplyEnv overlays environment variables read through lookup.
// COLORINGBOARD_CATALOG names a manifest when it ends in .toml and a
// directory otherwise.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvListenAddr); ok && v != "" {
		c.Server.Listen = v
		c.Server.Enabled = true
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvCatalog); ok && v != "" {
		if strings.EqualFold(filepath.Ext(v), ".toml") {
			c.Catalog.Manifest, c.Catalog.Dir = v, ""
		} else {
			c.Catalog.Dir, c.Catalog.Manifest = v, ""
		}
	}
}

// Validate reports every impossible setting at once.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	check(c.Canvas.Width > 0 && c.Canvas.Height > 0, "canvas size must be positive")
	check(c.Canvas.DoodleWidth > 0 && c.Canvas.DoodleHeight > 0, "doodle canvas size must be positive")
	check(c.Canvas.FitRatio > 0 && c.Canvas.FitRatio <= 1, "canvas.fit_ratio must be in (0, 1], got %v", c.Canvas.FitRatio)
	check(c.Fill.Tolerance >= 0 && c.Fill.Tolerance <= 255, "fill.tolerance must be in [0, 255], got %d", c.Fill.Tolerance)
	check(c.Fill.WideTolerance >= c.Fill.Tolerance && c.Fill.WideTolerance <= 255,
		"fill.wide_tolerance must be in [tolerance, 255], got %d", c.Fill.WideTolerance)
	check(c.History.Capacity >= 1, "history.capacity must be at least 1, got %d", c.History.Capacity)
	check(c.Viewport.MinScale > 0 && c.Viewport.MaxScale >= c.Viewport.MinScale,
		"viewport scale range [%v, %v] is invalid", c.Viewport.MinScale, c.Viewport.MaxScale)
	check(c.Viewport.TapThreshold >= 0, "viewport.tap_threshold must not be negative")
	check(c.Brush.Size > 0, "brush.size must be positive")
	if _, err := raster.ParseHex(c.Brush.Color); err != nil {
		errs = append(errs, fmt.Errorf("brush.color: %w", err))
	}
	check(!c.Server.Enabled || c.Server.Listen != "", "server.listen is required when the server is enabled")
	check(c.Server.MaxPeers >= 0, "server.max_peers must not be negative, got %d", c.Server.MaxPeers)
	return errors.Join(errs...)
}

// EditorOptions converts the configuration into session options.
func (c Config) EditorOptions() editor.Options {
	opts := editor.DefaultOptions()
	opts.PageWidth, opts.PageHeight = c.Canvas.Width, c.Canvas.Height
	opts.DoodleWidth, opts.DoodleHeight = c.Canvas.DoodleWidth, c.Canvas.DoodleHeight
	opts.FitRatio = c.Canvas.FitRatio
	opts.Fill.Tolerance = c.Fill.Tolerance
	opts.Fill.WideTolerance = c.Fill.WideTolerance
	opts.HistoryCapacity = c.History.Capacity
	opts.MinScale, opts.MaxScale = c.Viewport.MinScale, c.Viewport.MaxScale
	opts.TapThreshold = c.Viewport.TapThreshold
	opts.BrushSize = c.Brush.Size
	if col, err := raster.ParseHex(c.Brush.Color); err == nil {
		opts.BrushColor = col
	}
	return opts
}

// CatalogSource returns where the page catalog is read from.
func (c Config) CatalogSource() state.Source {
	return state.Source{Manifest: c.Catalog.Manifest, Dir: c.Catalog.Dir}
}
