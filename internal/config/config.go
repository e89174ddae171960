package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/isfsim/internal/dynamics"
	"github.com/san-kum/isfsim/internal/lattice"
)

const (
	DefaultSystem      = "HNi"
	DefaultShape       = 3
	DefaultResolution  = 3
	DefaultBands       = 2
	DefaultTemperature = 300.0
	DefaultSamples     = 20
	DefaultLiveSamples = 200
	DefaultDirection   = 1
	DefaultTimeStop    = 1e-12
	DefaultTimePoints  = 5
	DefaultRunsDir     = ".isfsim"
)

type Config struct {
	// System names a preset. Custom overrides it when set.
	System      string                  `yaml:"system"`
	Custom      *lattice.PeriodicSystem `yaml:"custom,omitempty"`
	Shape       int                     `yaml:"shape"`
	Resolution  int                     `yaml:"resolution"`
	NBands      int                     `yaml:"n_bands"`
	Temperature float64                 `yaml:"temperature"`
	Samples     int                     `yaml:"samples"`
	LiveSamples int                     `yaml:"live_samples"`
	Seed        int64                   `yaml:"seed"`
	Direction   int                     `yaml:"direction"`
	Times       TimesConfig             `yaml:"times"`
	Workers     int                     `yaml:"workers"`
	CacheDir    string                  `yaml:"cache_dir"`
	RunsDir     string                  `yaml:"runs_dir"`
	Log         LogConfig               `yaml:"log"`
}

type TimesConfig struct {
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop"`
	N     int     `yaml:"n"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

func DefaultConfig() *Config {
	return &Config{
		System:      DefaultSystem,
		Shape:       DefaultShape,
		Resolution:  DefaultResolution,
		NBands:      DefaultBands,
		Temperature: DefaultTemperature,
		Samples:     DefaultSamples,
		LiveSamples: DefaultLiveSamples,
		Direction:   DefaultDirection,
		Times: TimesConfig{
			Stop: DefaultTimeStop,
			N:    DefaultTimePoints,
		},
		RunsDir: DefaultRunsDir,
		Log:     LogConfig{Level: "info", Pretty: true},
	}
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
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// PeriodicSystem resolves the custom system or the named preset.
func (c *Config) PeriodicSystem() (lattice.PeriodicSystem, error) {
	if c.Custom != nil {
		if err := c.Custom.Validate(); err != nil {
			return lattice.PeriodicSystem{}, err
		}
		return *c.Custom, nil
	}
	s, ok := lattice.GetPreset(c.System)
	if !ok {
		return lattice.PeriodicSystem{}, fmt.Errorf("%w: unknown system %q (have %v)",
			lattice.ErrInvalidConfig, c.System, lattice.ListPresets())
	}
	return s, nil
}

// Lattice returns the validated discretization.
func (c *Config) Lattice() (lattice.Config, error) {
	return lattice.NewConfig(c.Shape, c.Resolution, c.NBands)
}

// TimePoints returns the evenly spaced evaluation times.
func (c *Config) TimePoints() []float64 {
	return dynamics.EvenlySpacedTimes(c.Times.N, c.Times.Start, c.Times.Stop)
}

// Validate checks every field a run depends on.
func (c *Config) Validate() error {
	if _, err := c.PeriodicSystem(); err != nil {
		return err
	}
	if _, err := c.Lattice(); err != nil {
		return err
	}
	switch {
	case !(c.Temperature > 0):
		return fmt.Errorf("%w: temperature must be positive, got %v", lattice.ErrInvalidConfig, c.Temperature)
	case c.Samples < 1:
		return fmt.Errorf("%w: samples must be at least 1, got %d", lattice.ErrInvalidConfig, c.Samples)
	case c.LiveSamples < 1:
		return fmt.Errorf("%w: live_samples must be at least 1, got %d", lattice.ErrInvalidConfig, c.LiveSamples)
	case c.Times.N < 1:
		return fmt.Errorf("%w: at least one time point is required", lattice.ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", lattice.ErrInvalidConfig)
	}
	return nil
}
