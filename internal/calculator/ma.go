package calculator

import (
	"errors"
)

var errBadPeriod = errors.New("period must be positive")

// CalculateEMA computes the exponential moving average of closes for every
// index, with smoothing factor 2/(span+1) and the first close as seed.
// There is no warm-up truncation.
func CalculateEMA(closes []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, errBadPeriod
	}
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out, nil
	}
	alpha := 2.0 / float64(span+1)
	out[0] = closes[0]
	for i := 1; i < len(closes); i++ {
		// Same as alpha*close + (1-alpha)*prev, but a flat run stays exactly flat.
		out[i] = out[i-1] + alpha*(closes[i]-out[i-1])
	}
	return out, nil
}

// rollingMean averages values[i-period+1..i], shrinking the window at the
// start instead of leaving it undefined. Entries before skip are ignored.
// Each window is summed afresh so a run of zeros averages to exactly zero.
func rollingMean(values []float64, period, skip int) []float64 {
	out := make([]float64, len(values))
	for i := skip; i < len(values); i++ {
		start := i - period + 1
		if start < skip {
			start = skip
		}
		sum := 0.0
		for j := start; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(i-start+1)
	}
	return out
}
