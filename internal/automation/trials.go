package automation

import (
	"context"
	"errors"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/musclemesh/internal/config"
	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/experiment"
)

// Trial is one seeded run of a configuration.
type Trial struct {
	Seed    int64
	Summary map[string]float64
	// Stable is false when the run produced a NaN or Inf state.
	Stable bool
}

// RunTrials runs base n times with seeds base.Run.Seed, base.Run.Seed+1 and
// so on. Seeds only change the swarm layout and drift, so the mesh response
// to the same script should be identical across trials.
func RunTrials(ctx context.Context, base *config.Config, n int) ([]Trial, error) {
	if n <= 0 {
		return nil, dynamo.Bounded("trials", n, "> 0")
	}
	trials := make([]Trial, 0, n)
	for i := 0; i < n; i++ {
		cfg := base.Clone()
		cfg.Run.Seed = base.Run.Seed + int64(i)

		res, err := experiment.New(cfg).Run(ctx)
		stable := true
		if err != nil {
			if !errors.Is(err, dynamo.ErrInvalidState) {
				return trials, err
			}
			stable = false
		}
		trials = append(trials, Trial{Seed: cfg.Run.Seed, Summary: res.Summary, Stable: stable})

		if (i+1)%10 == 0 {
			slog.Debug("trials", "done", i+1, "of", n)
		}
	}
	return trials, nil
}

// TrialStats counts stable and unstable trials.
func TrialStats(trials []Trial) (stable, unstable int) {
	for _, t := range trials {
		if t.Stable {
			stable++
		} else {
			unstable++
		}
	}
	return
}

// Spread is the mean and standard deviation of one metric over trials.
type Spread struct {
	Metric string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// MetricSpread summarizes metric across the trials that recorded it.
func MetricSpread(trials []Trial, metric string) (Spread, error) {
	values := make([]float64, 0, len(trials))
	for _, t := range trials {
		if v, ok := t.Summary[metric]; ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return Spread{}, dynamo.ErrEmptyRun
	}
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}
	sp := Spread{Metric: metric, Mean: mean, StdDev: std, Min: values[0], Max: values[0]}
	for _, v := range values[1:] {
		sp.Min = min(sp.Min, v)
		sp.Max = max(sp.Max, v)
	}
	return sp, nil
}
