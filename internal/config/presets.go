package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/mesh"
)

// Presets are the four named variants: a sparse anchored mesh, a dense
// full-window mesh, a free scatter swarm and the scatter swarm with the
// partition overlay and tissue model.
var Presets = map[string]*Config{
	"sparse":  sparse(),
	"dense":   dense(),
	"scatter": scatter(),
	"bloom":   bloom(),
}

// sparse is a small static mesh inside a wide margin with anchored cells.
func sparse() *Config {
	c := DefaultConfig()
	c.Name = "sparse"
	c.Grid.Cols, c.Grid.Rows = 24, 16
	c.Swarm.Assets = 48
	return c
}

// dense fills the viewport with a fine mesh and a softer rest spring.
func dense() *Config {
	c := DefaultConfig()
	c.Name = "dense"
	c.Domain.Width, c.Domain.Height, c.Domain.Margin = 1280, 800, 0
	c.Grid.Cols, c.Grid.Rows = 64, 40
	c.Grid.KRest = mesh.DefaultKRestFull
	c.Swarm.Assets = 256
	c.Swarm.Jitter = 6
	return c
}

// scatter drops the anchors: cells are placed with spacing and pulled by
// held keys directly.
func scatter() *Config {
	c := dense()
	c.Name = "scatter"
	c.Domain.Margin = 40
	c.Swarm.Mode = "scatter"
	c.Swarm.Count = 220
	c.Swarm.Assets = 36
	c.Swarm.Drift = 0
	return c
}

// bloom is the scatter variant with the partition overlay and the muscle
// model driving attractor strength.
func bloom() *Config {
	c := scatter()
	c.Name = "bloom"
	c.Swarm.BreathAmount = 0.3
	c.Swarm.Spin = 0.04
	c.Partition.Enabled = true
	c.Tissue.Enabled = true
	return c
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (*Config, error) {
	cfg, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownPreset, name)
	}
	return cfg.Clone(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
