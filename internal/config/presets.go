package config

import "sort"

// Presets are named run setups. GetPreset returns a copy so callers may
// override fields.
var Presets = map[string]*Config{
	"scenario": {
		System: "HNi", Shape: 3, Resolution: 3, NBands: 2, Temperature: 300, Samples: 20,
		Direction: 1, Times: TimesConfig{Stop: 1e-12, N: 5},
	},
	"hni-fine": {
		System: "HNi", Shape: 6, Resolution: 9, NBands: 3, Temperature: 150, Samples: 100,
		Direction: 1, Times: TimesConfig{Stop: 5e-12, N: 50},
	},
	"nacu": {
		System: "NaCu", Shape: 5, Resolution: 7, NBands: 3, Temperature: 155, Samples: 50,
		Direction: 1, Times: TimesConfig{Stop: 2e-11, N: 40},
	},
	"licu": {
		System: "LiCu", Shape: 5, Resolution: 7, NBands: 3, Temperature: 200, Samples: 50,
		Direction: 1, Times: TimesConfig{Stop: 1e-11, N: 40},
	},
}

func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.System = p.System
	cfg.Shape = p.Shape
	cfg.Resolution = p.Resolution
	cfg.NBands = p.NBands
	cfg.Temperature = p.Temperature
	cfg.Samples = p.Samples
	cfg.Direction = p.Direction
	cfg.Times = p.Times
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
