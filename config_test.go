package spin

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "opacity = 0.7\nresize_margin = 16\ndouble_click_ms = 450\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Opacity != 0.7 {
		t.Errorf("opacity = %v, want 0.7", cfg.Opacity)
	}
	if cfg.ResizeMargin != 16 {
		t.Errorf("resize margin = %d, want 16", cfg.ResizeMargin)
	}
	if cfg.DoubleClickMs != 450 {
		t.Errorf("double click ms = %d, want 450", cfg.DoubleClickMs)
	}
	// Unset keys keep their defaults.
	if cfg.OpacityStep != 0.05 {
		t.Errorf("opacity step = %v, want default 0.05", cfg.OpacityStep)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("explicit missing config file must error")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("opacity = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("malformed config must error")
	}
}

func TestValidateRejectsBadRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"opacity above one", func(c *Config) { c.Opacity = 1.5 }},
		{"negative opacity", func(c *Config) { c.Opacity = -0.1 }},
		{"zero scale", func(c *Config) { c.Scale = 0 }},
		{"zero resize margin", func(c *Config) { c.ResizeMargin = 0 }},
		{"zero opacity step", func(c *Config) { c.OpacityStep = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
