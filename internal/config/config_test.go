package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, -300.0, cfg.Simulation.RepulsionStrength)
	assert.Equal(t, 0.02, cfg.Engine.AlphaDecay)
	assert.Equal(t, 0.2, cfg.Engine.VelocityDecay)
	assert.Equal(t, 0.001, cfg.Engine.AlphaMin)
	assert.Equal(t, 16*time.Millisecond, cfg.Bridge.TickThrottle)
	assert.Equal(t, 800*time.Millisecond, cfg.Bridge.PersistDebounce)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative link distance", func(c *Config) { c.Simulation.LinkDistance = -1 }},
		{"negative collision radius", func(c *Config) { c.Simulation.CollisionRadius = -5 }},
		{"negative density factor", func(c *Config) { c.Simulation.DensityGenericFactor = -1 }},
		{"center above one", func(c *Config) { c.Simulation.CenterStrength = 1.5 }},
		{"zero alpha decay", func(c *Config) { c.Engine.AlphaDecay = 0 }},
		{"alpha min one", func(c *Config) { c.Engine.AlphaMin = 1 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidate_PositiveRepulsionAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Simulation.RepulsionStrength = 50
	assert.NoError(t, cfg.Validate())
}

func TestSimulationValidate(t *testing.T) {
	assert.NoError(t, DefaultSimulation().Validate())

	bad := DefaultSimulation().Apply(Patch{AxisStrength: Float(-0.1)})
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphsim.yaml")
	data := `
simulation:
  repulsion_strength: -450
  link_distance: 120
engine:
  alpha_decay: 0.05
bridge:
  persist_debounce: 1s
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, -450.0, cfg.Simulation.RepulsionStrength)
	assert.Equal(t, 120.0, cfg.Simulation.LinkDistance)
	assert.Equal(t, DefaultCollisionRadius, cfg.Simulation.CollisionRadius)
	assert.Equal(t, 0.05, cfg.Engine.AlphaDecay)
	assert.Equal(t, time.Second, cfg.Bridge.PersistDebounce)
	assert.Equal(t, DefaultTickThrottle, cfg.Bridge.TickThrottle)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphsim.toml")
	data := `
[simulation]
repulsion_strength = -200.0
density_max_size = 400.0

[bridge]
tick_throttle = "33ms"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, -200.0, cfg.Simulation.RepulsionStrength)
	assert.Equal(t, 400.0, cfg.Simulation.DensityMaxSize)
	assert.Equal(t, 33*time.Millisecond, cfg.Bridge.TickThrottle)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("simulation:\n  link_distance: -10\n"), 0644))
	_, err := Load(bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	unknown := filepath.Join(dir, "cfg.ini")
	require.NoError(t, os.WriteFile(unknown, []byte("x=1"), 0644))
	_, err = Load(unknown)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := GetPreset("sparse")
			require.NotNil(t, cfg)

			require.NoError(t, Save(path, cfg))
			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg.Simulation, loaded.Simulation)
			assert.Equal(t, cfg.Bridge, loaded.Bridge)
		})
	}
}

func TestApplyPatch(t *testing.T) {
	base := DefaultSimulation()

	assert.True(t, Patch{}.IsEmpty())
	assert.Equal(t, base, base.Apply(Patch{}))

	got := base.Apply(Patch{
		RepulsionStrength: Float(-500),
		DensityMaxSize:    Float(200),
	})
	assert.Equal(t, -500.0, got.RepulsionStrength)
	assert.Equal(t, 200.0, got.DensityMaxSize)
	assert.Equal(t, base.LinkDistance, got.LinkDistance)
	assert.Equal(t, DefaultRepulsionStrength, base.RepulsionStrength, "receiver must not change")
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("dense")
	require.NotNil(t, cfg)
	assert.Equal(t, 60.0, cfg.Simulation.LinkDistance)
	assert.NoError(t, cfg.Validate())

	assert.Nil(t, GetPreset("nonexistent"))
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	assert.Equal(t, []string{"default", "dense", "hubs", "sparse", "tight"}, presets)

	for _, name := range presets {
		assert.NoError(t, GetPreset(name).Validate(), name)
	}
}

func TestPatchFrom(t *testing.T) {
	p, err := PatchFrom(map[string]float64{"link_distance": 120, "density_max_size": 0})
	require.NoError(t, err)
	got := DefaultSimulation().Apply(p)
	assert.Equal(t, 120.0, got.LinkDistance)
	assert.Equal(t, 0.0, got.DensityMaxSize)
	assert.Nil(t, p.RepulsionStrength)

	_, err = PatchFrom(map[string]float64{"gravity": 1})
	assert.ErrorIs(t, err, ErrUnknownParam)

	assert.Len(t, ParamNames(), 8)
	assert.Contains(t, ParamNames(), "repulsion_strength")
}
