package spin

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/gogpu/spin/menu"
)

// Config holds interaction tunables and startup options. Values come
// from DefaultConfig, then the optional TOML file, then CLI flags.
type Config struct {
	// Opacity is the initial window opacity in [0, 1].
	Opacity float64 `toml:"opacity"`

	// Scale is the one-shot decode scale factor applied at load.
	Scale float64 `toml:"scale"`

	// PosX and PosY place the window at startup. Negative means
	// centered on the output.
	PosX int `toml:"pos_x"`
	PosY int `toml:"pos_y"`

	// ForceCPU disables the GPU backend.
	ForceCPU bool `toml:"cpu"`

	// ResizeMargin is the pixel band around edges and corners that
	// starts a resize drag.
	ResizeMargin int `toml:"resize_margin"`

	// OpacityStep is the opacity change per scroll tick or menu click.
	OpacityStep float64 `toml:"opacity_step"`

	// DoubleClickMs and DoubleClickRadius bound the second click of a
	// double-click exit.
	DoubleClickMs     int     `toml:"double_click_ms"`
	DoubleClickRadius float64 `toml:"double_click_radius"`

	// MenuFontSize is the menu label size in points.
	MenuFontSize float64 `toml:"menu_font_size"`

	// DragRedrawMs rate-limits full redraws while dragging.
	DragRedrawMs int `toml:"drag_redraw_ms"`
}

// DefaultConfig returns the built-in tunables.
func DefaultConfig() Config {
	return Config{
		Opacity:           1.0,
		Scale:             1.0,
		PosX:              -1,
		PosY:              -1,
		ResizeMargin:      10,
		OpacityStep:       0.05,
		DoubleClickMs:     300,
		DoubleClickRadius: 10,
		MenuFontSize:      menu.DefaultFontSize,
		DragRedrawMs:      25,
	}
}

// LoadConfig returns DefaultConfig overlaid with the TOML file at path.
// An empty path means the default location
// ($XDG_CONFIG_HOME/spin/config.toml); a missing default file is not an
// error, a missing explicit one is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(xdg.ConfigHome, "spin", "config.toml")
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("spin: load config %s: %w", path, err)
	}
	slogger().Debug("config loaded", "path", path)
	return cfg, nil
}

// Validate checks ranges that would otherwise fail deep in the session.
func (c *Config) Validate() error {
	if c.Opacity < 0 || c.Opacity > 1 {
		return fmt.Errorf("spin: opacity %v out of range [0, 1]", c.Opacity)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("spin: scale %v must be positive", c.Scale)
	}
	if c.ResizeMargin < 1 {
		return fmt.Errorf("spin: resize margin %d must be at least 1", c.ResizeMargin)
	}
	if c.OpacityStep <= 0 || c.OpacityStep > 1 {
		return fmt.Errorf("spin: opacity step %v out of range (0, 1]", c.OpacityStep)
	}
	return nil
}
