// Package config holds the viewer settings and their defaults.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/image/colornames"
)

// Defaults reproduce the fixed values the viewer has always used.
const (
	DefaultDir      = "../data/validation/"
	DefaultFile     = "R_Femur_22_DECIM.obj.FINAL.obj"
	DefaultWidth    = 1200
	DefaultHeight   = 800
	DefaultTitle    = "Femur Visualization - Team 4"
	DefaultColor    = "beige"
	DefaultLabel    = "Femur visualization"
	DefaultFontSize = 10
)

// Config describes what to load and how the window looks.
type Config struct {
	Path          string `json:"path"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Title         string `json:"title"`
	Color         string `json:"color"`
	Label         string `json:"label"`
	FontSize      int    `json:"font_size"`
	SmoothShading bool   `json:"smooth_shading"`
	ShowEdges     bool   `json:"show_edges"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Path:          filepath.Join(DefaultDir, DefaultFile),
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Title:         DefaultTitle,
		Color:         DefaultColor,
		Label:         DefaultLabel,
		FontSize:      DefaultFontSize,
		SmoothShading: true,
		ShowEdges:     false,
	}
}

// FromFile reads a JSON config file. Fields missing from the file keep
// their default values.
func FromFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// Validate checks the fields that cannot be caught later by the loader.
// The mesh path is not checked here.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("window size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.FontSize <= 0 {
		return errors.Errorf("font size must be positive, got %d", c.FontSize)
	}
	if _, err := ParseColor(c.Color); err != nil {
		return err
	}
	return nil
}

// ParseColor accepts a CSS colour name or "#rrggbb".
func ParseColor(s string) (colorful.Color, error) {
	if named, ok := colornames.Map[strings.ToLower(s)]; ok {
		c, _ := colorful.MakeColor(named)
		return c, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, errors.Wrapf(err, "unknown color %q", s)
	}
	return c, nil
}
