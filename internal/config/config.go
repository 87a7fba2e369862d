package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLinkDistance    = 60.0
	DefaultChargeStrength  = -240.0
	DefaultChargeTheta     = 0.9
	DefaultCollideStrength = 1.0
	DefaultCollideMargin   = 20.0
	DefaultQuiescence      = 200
	DefaultWarmupTicks     = 200
	DefaultFrameRate       = 30
	DefaultDemoNodes       = 60
)

type ForceConfig struct {
	LinkDistance    float64 `yaml:"link_distance"`
	ChargeStrength  float64 `yaml:"charge_strength"`
	ChargeTheta     float64 `yaml:"charge_theta"`
	CollideStrength float64 `yaml:"collide_strength"`
	CollideMargin   float64 `yaml:"collide_margin"`
	Quiescence      int     `yaml:"quiescence_ticks"`
}

type Config struct {
	// Data is the path of a graph JSON file. Empty means the built-in
	// demo graph of DemoNodes nodes.
	Data      string `yaml:"data"`
	DemoNodes int    `yaml:"demo_nodes"`
	Seed      int64  `yaml:"seed"`

	Forces      ForceConfig `yaml:"forces"`
	WarmupTicks int         `yaml:"warmup_ticks"`
	FrameRate   int         `yaml:"frame_rate"`
	Zoom        float64     `yaml:"zoom"`
	Debug       bool        `yaml:"debug"`

	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		DemoNodes: DefaultDemoNodes,
		Forces: ForceConfig{
			LinkDistance:    DefaultLinkDistance,
			ChargeStrength:  DefaultChargeStrength,
			ChargeTheta:     DefaultChargeTheta,
			CollideStrength: DefaultCollideStrength,
			CollideMargin:   DefaultCollideMargin,
			Quiescence:      DefaultQuiescence,
		},
		WarmupTicks: DefaultWarmupTicks,
		FrameRate:   DefaultFrameRate,
		Zoom:        1,
		DataDir:     defaultDataDir(),
		LogLevel:    "info",
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lexigraph"
	}
	return filepath.Join(home, ".lexigraph")
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.DemoNodes < 0 {
		return fmt.Errorf("demo_nodes must not be negative, got %d", c.DemoNodes)
	}
	if c.Forces.LinkDistance <= 0 {
		return fmt.Errorf("link_distance must be positive, got %g", c.Forces.LinkDistance)
	}
	if c.Forces.ChargeTheta <= 0 {
		return fmt.Errorf("charge_theta must be positive, got %g", c.Forces.ChargeTheta)
	}
	if c.Forces.CollideStrength < 0 {
		return fmt.Errorf("collide_strength must not be negative, got %g", c.Forces.CollideStrength)
	}
	if c.Forces.Quiescence < 0 {
		return fmt.Errorf("quiescence_ticks must not be negative, got %d", c.Forces.Quiescence)
	}
	if c.WarmupTicks < 0 {
		return fmt.Errorf("warmup_ticks must not be negative, got %d", c.WarmupTicks)
	}
	if c.FrameRate <= 0 || c.FrameRate > 120 {
		return fmt.Errorf("frame_rate must be in (0, 120], got %d", c.FrameRate)
	}
	if c.Zoom <= 0 {
		return fmt.Errorf("zoom must be positive, got %g", c.Zoom)
	}
	return nil
}
