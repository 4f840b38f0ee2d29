package swarm

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how particles are coupled to the rest of the simulation.
type Mode int

const (
	// Anchored particles follow one grid point each.
	Anchored Mode = iota
	// Scattered particles have no anchor and respond to active attractors.
	Scattered
)

func (m Mode) String() string {
	switch m {
	case Anchored:
		return "anchor"
	case Scattered:
		return "scatter"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode accepts "anchor"/"anchored" and "scatter"/"scattered".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "anchor", "anchored":
		return Anchored, nil
	case "scatter", "scattered", "direct":
		return Scattered, nil
	}
	return 0, fmt.Errorf("unknown swarm mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

const (
	DefaultCount             = 400
	DefaultMinSpacing        = 50.0
	DefaultAttempts          = 30
	DefaultAnchorPull        = 0.01
	DefaultPull              = 0.005
	DefaultRadius            = 180.0
	DefaultDamping           = 0.96
	DefaultDrift             = 0.02
	DefaultDriftScale        = 0.01
	DefaultJitter            = 12.0
	DefaultSpin              = 0.02
	DefaultBreathRate        = 2.5
	DefaultBreathAmount      = 0.15
	DefaultBreathSpread      = 0.01
	DefaultScaleMin          = 0.6
	DefaultScaleMax          = 1.2
	DefaultReshuffleInterval = 111 * time.Millisecond
	DefaultReshuffleSwaps    = 36
	// MaxCatchUp bounds how many overdue reshuffle events one update performs,
	// so a long stall does not burst hundreds of swaps at once.
	MaxCatchUp = 16
)

type Params struct {
	Mode Mode

	// Scatter placement.
	Count      int
	MinSpacing float64
	Attempts   int

	// Coupling and integration.
	AnchorPull float64
	Pull       float64
	Radius     float64
	Damping    float64
	Drift      float64
	DriftScale float64

	// Cosmetics.
	Jitter float64
	Spin   float64
	// BreathRate is the animation phase advance in radians per second.
	BreathRate   float64
	BreathAmount float64
	BreathSpread float64
	ScaleMin     float64
	ScaleMax     float64

	ReshuffleInterval time.Duration
	ReshuffleSwaps    int
}

func DefaultParams() Params {
	return Params{
		Mode:              Anchored,
		Count:             DefaultCount,
		MinSpacing:        DefaultMinSpacing,
		Attempts:          DefaultAttempts,
		AnchorPull:        DefaultAnchorPull,
		Pull:              DefaultPull,
		Radius:            DefaultRadius,
		Damping:           DefaultDamping,
		Drift:             DefaultDrift,
		DriftScale:        DefaultDriftScale,
		Jitter:            DefaultJitter,
		Spin:              DefaultSpin,
		BreathRate:        DefaultBreathRate,
		BreathAmount:      DefaultBreathAmount,
		BreathSpread:      DefaultBreathSpread,
		ScaleMin:          DefaultScaleMin,
		ScaleMax:          DefaultScaleMax,
		ReshuffleInterval: DefaultReshuffleInterval,
		ReshuffleSwaps:    DefaultReshuffleSwaps,
	}
}
