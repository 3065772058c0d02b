package config

import "sort"

var Presets = map[string]Simulation{
	"default": DefaultSimulation(),
	"sparse": {
		RepulsionStrength: -600, LinkDistance: 180, CollisionRadius: 40,
		CenterStrength: 0.01, AxisStrength: 0.004,
		DensityGenericFactor: 10, DensityChargeFactor: 0.3, DensityMaxSize: 600,
	},
	"dense": {
		RepulsionStrength: -150, LinkDistance: 60, CollisionRadius: 30,
		CenterStrength: 0.05, AxisStrength: 0.02,
		DensityGenericFactor: 8, DensityChargeFactor: 0.1, DensityMaxSize: 300,
	},
	"hubs": {
		RepulsionStrength: -300, LinkDistance: 100, CollisionRadius: 40,
		CenterStrength: 0.02, AxisStrength: 0.008,
		DensityGenericFactor: 25, DensityChargeFactor: 0.5, DensityMaxSize: 800,
	},
	"tight": {
		RepulsionStrength: -80, LinkDistance: 40, CollisionRadius: 20,
		CenterStrength: 0.08, AxisStrength: 0.03,
		DensityGenericFactor: 4, DensityChargeFactor: 0.05, DensityMaxSize: 160,
	},
}

// GetPreset returns DefaultConfig with the named simulation preset applied,
// or nil when no such preset exists.
func GetPreset(name string) *Config {
	sim, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Simulation = sim
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
