package config

import (
	"fmt"
	"math"
	"os"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/layout"
	"github.com/san-kum/musclemesh/internal/mesh"
	"github.com/san-kum/musclemesh/internal/partition"
	"github.com/san-kum/musclemesh/internal/swarm"
	"github.com/san-kum/musclemesh/internal/tissue"
)

const (
	DefaultWidth  = 1000.0
	DefaultHeight = 700.0
	DefaultMargin = 80.0
	DefaultCols   = 32
	DefaultRows   = 22
	DefaultTicks  = 600
	DefaultFPS    = 60.0
	DefaultHold   = 12
	DefaultAssets = 64
)

type Config struct {
	Name      string          `yaml:"name,omitempty"`
	Domain    DomainConfig    `yaml:"domain"`
	Grid      GridConfig      `yaml:"grid"`
	Layout    LayoutConfig    `yaml:"layout"`
	Swarm     SwarmConfig     `yaml:"swarm"`
	Partition PartitionConfig `yaml:"partition"`
	Tissue    TissueConfig    `yaml:"tissue"`
	Run       RunConfig       `yaml:"run"`
	Script    []KeyEvent      `yaml:"script,omitempty"`
}

type DomainConfig struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Margin   float64 `yaml:"margin"`
	Centered bool    `yaml:"centered"`
}

type GridConfig struct {
	Cols     int     `yaml:"cols"`
	Rows     int     `yaml:"rows"`
	KRest    float64 `yaml:"k_rest"`
	Damping  float64 `yaml:"damping"`
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"`
	Pull     float64 `yaml:"pull"`
}

type LayoutConfig struct {
	Rows []string `yaml:"rows"`
}

type SwarmConfig struct {
	Mode string `yaml:"mode"`
	// Assets is the number of placeholder assets used when no real asset
	// catalog is supplied (headless runs).
	Assets            int           `yaml:"assets"`
	Count             int           `yaml:"count"`
	MinSpacing        float64       `yaml:"min_spacing"`
	Attempts          int           `yaml:"attempts"`
	Pull              float64       `yaml:"pull"`
	AnchorPull        float64       `yaml:"anchor_pull"`
	Damping           float64       `yaml:"damping"`
	Drift             float64       `yaml:"drift"`
	DriftScale        float64       `yaml:"drift_scale"`
	Jitter            float64       `yaml:"jitter"`
	Spin              float64       `yaml:"spin"`
	BreathRate        float64       `yaml:"breath_rate"`
	BreathAmount      float64       `yaml:"breath_amount"`
	ReshuffleInterval time.Duration `yaml:"reshuffle_interval"`
	ReshuffleSwaps    int           `yaml:"reshuffle_swaps"`
}

type PartitionConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Step     float64 `yaml:"step"`
	Parallel bool    `yaml:"parallel"`
}

type TissueConfig struct {
	Enabled  bool    `yaml:"enabled"`
	Coupling float64 `yaml:"coupling"`
	Cap      float64 `yaml:"cap"`
	Boost    float64 `yaml:"boost"`
	Sustain  float64 `yaml:"sustain"`
}

type RunConfig struct {
	Ticks int     `yaml:"ticks"`
	FPS   float64 `yaml:"fps"`
	Seed  int64   `yaml:"seed"`
	// Hold is how many ticks a terminal key press stays down, since
	// terminals report no key release.
	Hold int `yaml:"hold"`
}

// KeyEvent is one scripted input event applied before the given tick.
type KeyEvent struct {
	Tick int    `yaml:"tick"`
	Key  string `yaml:"key"`
	Down bool   `yaml:"down"`
}

func DefaultConfig() *Config {
	mp := mesh.DefaultParams()
	sp := swarm.DefaultParams()
	tp := tissue.DefaultParams()
	return &Config{
		Domain: DomainConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
			Margin: DefaultMargin,
		},
		Grid: GridConfig{
			Cols:     DefaultCols,
			Rows:     DefaultRows,
			KRest:    mp.KRest,
			Damping:  mp.Damping,
			Radius:   mp.Radius,
			Strength: mp.Strength,
			Pull:     mp.Pull,
		},
		Layout: LayoutConfig{Rows: append([]string(nil), layout.QWERTY...)},
		Swarm: SwarmConfig{
			Mode:              sp.Mode.String(),
			Assets:            DefaultAssets,
			Count:             sp.Count,
			MinSpacing:        sp.MinSpacing,
			Attempts:          sp.Attempts,
			Pull:              sp.Pull,
			AnchorPull:        sp.AnchorPull,
			Damping:           sp.Damping,
			Drift:             sp.Drift,
			DriftScale:        sp.DriftScale,
			Jitter:            sp.Jitter,
			Spin:              sp.Spin,
			BreathRate:        sp.BreathRate,
			BreathAmount:      sp.BreathAmount,
			ReshuffleInterval: sp.ReshuffleInterval,
			ReshuffleSwaps:    sp.ReshuffleSwaps,
		},
		Partition: PartitionConfig{Step: partition.DefaultStep},
		Tissue: TissueConfig{
			Coupling: tp.Coupling,
			Cap:      tp.Cap,
			Boost:    tp.Boost,
			Sustain:  tp.Sustain,
		},
		Run: RunConfig{
			Ticks: DefaultTicks,
			FPS:   DefaultFPS,
			Seed:  1,
			Hold:  DefaultHold,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base, so keys missing from the
// file keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Layout.Rows = append([]string(nil), c.Layout.Rows...)
	out.Script = append([]KeyEvent(nil), c.Script...)
	return &out
}

// Validate rejects values the simulation cannot run with. Degenerate but
// meaningful values such as an empty grid or zero particles pass.
func (c *Config) Validate() error {
	checks := []struct {
		ok    bool
		field string
		value any
		want  string
	}{
		{c.Domain.Width >= 0, "domain.width", c.Domain.Width, ">= 0"},
		{c.Domain.Height >= 0, "domain.height", c.Domain.Height, ">= 0"},
		{c.Domain.Margin >= 0, "domain.margin", c.Domain.Margin, ">= 0"},
		{c.Grid.Cols >= 0, "grid.cols", c.Grid.Cols, ">= 0"},
		{c.Grid.Rows >= 0, "grid.rows", c.Grid.Rows, ">= 0"},
		{c.Grid.KRest >= 0, "grid.k_rest", c.Grid.KRest, ">= 0"},
		{c.Grid.Damping > 0 && c.Grid.Damping <= 1, "grid.damping", c.Grid.Damping, "in (0, 1]"},
		{c.Grid.Radius > 0, "grid.radius", c.Grid.Radius, "> 0"},
		{c.Grid.Strength >= 0, "grid.strength", c.Grid.Strength, ">= 0"},
		{c.Grid.Pull >= 0, "grid.pull", c.Grid.Pull, ">= 0"},
		{c.Swarm.Assets >= 0, "swarm.assets", c.Swarm.Assets, ">= 0"},
		{c.Swarm.Count >= 0, "swarm.count", c.Swarm.Count, ">= 0"},
		{c.Swarm.MinSpacing >= 0, "swarm.min_spacing", c.Swarm.MinSpacing, ">= 0"},
		{c.Swarm.Damping > 0 && c.Swarm.Damping <= 1, "swarm.damping", c.Swarm.Damping, "in (0, 1]"},
		{c.Swarm.ReshuffleInterval >= 0, "swarm.reshuffle_interval", c.Swarm.ReshuffleInterval, ">= 0"},
		{c.Swarm.ReshuffleSwaps >= 0, "swarm.reshuffle_swaps", c.Swarm.ReshuffleSwaps, ">= 0"},
		{c.Partition.Step > 0, "partition.step", c.Partition.Step, "> 0"},
		{c.Tissue.Cap >= 0 && c.Tissue.Cap <= 1, "tissue.cap", c.Tissue.Cap, "in [0, 1]"},
		{c.Run.Ticks >= 0, "run.ticks", c.Run.Ticks, ">= 0"},
		{c.Run.FPS > 0, "run.fps", c.Run.FPS, "> 0"},
		{c.Run.Hold >= 0, "run.hold", c.Run.Hold, ">= 0"},
	}
	for _, ch := range checks {
		if !ch.ok {
			return dynamo.Bounded(ch.field, ch.value, ch.want)
		}
	}

	floats := []struct {
		field string
		value float64
	}{
		{"domain.width", c.Domain.Width},
		{"domain.height", c.Domain.Height},
		{"domain.margin", c.Domain.Margin},
		{"grid.k_rest", c.Grid.KRest},
		{"grid.radius", c.Grid.Radius},
		{"grid.strength", c.Grid.Strength},
		{"grid.pull", c.Grid.Pull},
		{"swarm.min_spacing", c.Swarm.MinSpacing},
		{"swarm.pull", c.Swarm.Pull},
		{"swarm.anchor_pull", c.Swarm.AnchorPull},
		{"swarm.drift", c.Swarm.Drift},
		{"swarm.drift_scale", c.Swarm.DriftScale},
		{"swarm.jitter", c.Swarm.Jitter},
		{"swarm.spin", c.Swarm.Spin},
		{"swarm.breath_rate", c.Swarm.BreathRate},
		{"swarm.breath_amount", c.Swarm.BreathAmount},
		{"partition.step", c.Partition.Step},
		{"tissue.coupling", c.Tissue.Coupling},
		{"tissue.boost", c.Tissue.Boost},
		{"tissue.sustain", c.Tissue.Sustain},
		{"run.fps", c.Run.FPS},
	}
	for _, f := range floats {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return dynamo.Bounded(f.field, f.value, "finite")
		}
	}

	if _, err := swarm.ParseMode(c.Swarm.Mode); err != nil {
		return fmt.Errorf("swarm.mode: %w", err)
	}
	for i, ev := range c.Script {
		if ev.Tick < 0 {
			return dynamo.Bounded(fmt.Sprintf("script[%d].tick", i), ev.Tick, ">= 0")
		}
		if utf8.RuneCountInString(ev.Key) != 1 {
			return dynamo.Bounded(fmt.Sprintf("script[%d].key", i), ev.Key, "a single character")
		}
	}
	return nil
}

// Bounds is the simulation domain.
func (c *Config) Bounds() dynamo.Bounds {
	return dynamo.NewBounds(c.Domain.Width, c.Domain.Height, c.Domain.Margin, c.Domain.Centered)
}

func (c *Config) MeshParams() mesh.Params {
	return mesh.Params{
		KRest:    c.Grid.KRest,
		Damping:  c.Grid.Damping,
		Radius:   c.Grid.Radius,
		Strength: c.Grid.Strength,
		Pull:     c.Grid.Pull,
	}
}

// SwarmParams converts the swarm section. An unparsable mode falls back to
// anchored; Validate reports it.
func (c *Config) SwarmParams() swarm.Params {
	p := swarm.DefaultParams()
	if m, err := swarm.ParseMode(c.Swarm.Mode); err == nil {
		p.Mode = m
	}
	p.Count = c.Swarm.Count
	p.MinSpacing = c.Swarm.MinSpacing
	p.Attempts = c.Swarm.Attempts
	p.Pull = c.Swarm.Pull
	p.AnchorPull = c.Swarm.AnchorPull
	p.Radius = c.Grid.Radius
	p.Damping = c.Swarm.Damping
	p.Drift = c.Swarm.Drift
	p.DriftScale = c.Swarm.DriftScale
	p.Jitter = c.Swarm.Jitter
	p.Spin = c.Swarm.Spin
	p.BreathRate = c.Swarm.BreathRate
	p.BreathAmount = c.Swarm.BreathAmount
	p.ReshuffleInterval = c.Swarm.ReshuffleInterval
	p.ReshuffleSwaps = c.Swarm.ReshuffleSwaps
	return p
}

func (c *Config) TissueParams() tissue.Params {
	return tissue.Params{
		Enabled:  c.Tissue.Enabled,
		Coupling: c.Tissue.Coupling,
		Cap:      c.Tissue.Cap,
		Boost:    c.Tissue.Boost,
		Sustain:  c.Tissue.Sustain,
	}
}

// Dt is the wall-clock length of one tick at the configured frame rate.
func (c *Config) Dt() time.Duration {
	if c.Run.FPS <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / c.Run.FPS)
}
