package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Forces.LinkDistance <= 0 {
		t.Error("link distance should be positive")
	}
	if cfg.Forces.ChargeStrength >= 0 {
		t.Error("charge strength should be repulsive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero link distance", func(c *Config) { c.Forces.LinkDistance = 0 }},
		{"zero theta", func(c *Config) { c.Forces.ChargeTheta = 0 }},
		{"negative collide strength", func(c *Config) { c.Forces.CollideStrength = -1 }},
		{"negative quiescence", func(c *Config) { c.Forces.Quiescence = -1 }},
		{"negative warmup", func(c *Config) { c.WarmupTicks = -1 }},
		{"zero frame rate", func(c *Config) { c.FrameRate = 0 }},
		{"zero zoom", func(c *Config) { c.Zoom = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Forces.LinkDistance = 90
	cfg.Debug = true
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Forces.LinkDistance != 90 {
		t.Errorf("expected link distance 90, got %g", loaded.Forces.LinkDistance)
	}
	if !loaded.Debug {
		t.Error("expected debug true")
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("forces:\n  link_distance: 45\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Forces.LinkDistance != 45 {
		t.Errorf("expected link distance 45, got %g", cfg.Forces.LinkDistance)
	}
	if cfg.FrameRate != DefaultFrameRate {
		t.Errorf("expected default frame rate, got %d", cfg.FrameRate)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("zoom: -1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for negative zoom")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("dense")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Forces.LinkDistance != 40 {
		t.Errorf("expected link distance 40, got %g", cfg.Forces.LinkDistance)
	}
	if cfg.DataDir == "" {
		t.Error("preset should fill data dir")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) < 4 {
		t.Errorf("expected at least 4 presets, got %v", names)
	}
}
