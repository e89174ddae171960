package lattice

import (
	"math"
	"sort"
)

var (
	HydrogenNickel = PeriodicSystem{
		ID:              "HNi",
		BarrierEnergy:   2.5593864192e-20,
		LatticeConstant: 2.46e-10 / math.Sqrt2,
		Mass:            1.67e-27,
	}

	SodiumCopper = PeriodicSystem{
		ID:              "NaCu",
		BarrierEnergy:   55e-3 * ElectronVolt,
		LatticeConstant: 3.615e-10,
		Mass:            3.8175458e-26,
	}

	LithiumCopper = PeriodicSystem{
		ID:              "LiCu",
		BarrierEnergy:   45e-3 * ElectronVolt,
		LatticeConstant: 3.615e-10,
		Mass:            1.152414898e-26,
	}
)

// Presets maps system ids to the built-in systems. It is never mutated.
var Presets = map[string]PeriodicSystem{
	HydrogenNickel.ID: HydrogenNickel,
	SodiumCopper.ID:   SodiumCopper,
	LithiumCopper.ID:  LithiumCopper,
}

// GetPreset returns the preset with the given id.
func GetPreset(id string) (PeriodicSystem, bool) {
	s, ok := Presets[id]
	return s, ok
}

// ListPresets returns the preset ids in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
