package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/musclemesh/internal/dynamo"
)

// DecayRate estimates the exponential decay constant (per second) of a
// non-negative series sampled at fps. The log of the local maxima is fitted
// with a least-squares line; a monotone series without interior maxima is
// fitted on all positive samples. A positive result means the series is
// settling.
func DecayRate(data []float64, fps float64) (float64, error) {
	if fps <= 0 {
		return 0, dynamo.Bounded("fps", fps, "> 0")
	}

	var ts, ys []float64
	for i := 1; i+1 < len(data); i++ {
		if data[i] > 0 && data[i] >= data[i-1] && data[i] > data[i+1] {
			ts = append(ts, float64(i)/fps)
			ys = append(ys, math.Log(data[i]))
		}
	}
	if len(ts) < 2 {
		ts, ys = ts[:0], ys[:0]
		for i, v := range data {
			if v > 0 {
				ts = append(ts, float64(i)/fps)
				ys = append(ys, math.Log(v))
			}
		}
	}
	if len(ts) < 2 {
		return 0, fmt.Errorf("decay rate: %w", dynamo.ErrEmptyRun)
	}

	return -slope(ts, ys), nil
}

func slope(xs, ys []float64) float64 {
	n := float64(len(xs))
	var sx, sy, sxx, sxy float64
	for i := range xs {
		sx += xs[i]
		sy += ys[i]
		sxx += xs[i] * xs[i]
		sxy += xs[i] * ys[i]
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0
	}
	return (n*sxy - sx*sy) / den
}
