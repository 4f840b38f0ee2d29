package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/musclemesh/internal/dynamo"
)

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PowerSpectrum returns the magnitude of each frequency bin from DC up to
// (excluding) Nyquist. The series mean is removed and the input zero-padded
// to a power of two, so bin k corresponds to k/len(result)/2 cycles per
// sample.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	padded := make([]float64, nextPow2(len(data)))
	for i, v := range data {
		padded[i] = v - mean
	}

	spec := fft.FFTReal(padded)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantPeriod returns the period in seconds of the strongest non-DC
// frequency of a series sampled at fps.
func DominantPeriod(data []float64, fps float64) (float64, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("dominant period of %d samples: %w", len(data), dynamo.ErrEmptyRun)
	}
	if fps <= 0 {
		return 0, dynamo.Bounded("fps", fps, "> 0")
	}
	ps := PowerSpectrum(data)
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if ps[best] == 0 {
		return 0, nil
	}
	n := float64(2 * len(ps))
	return n / (float64(best) * fps), nil
}
