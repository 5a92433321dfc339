package calculator

// RSINeutral is returned where the gain/loss ratio is undefined: at the first
// point (no price change yet) and over a window with no movement at all.
// It sits exactly on the 50 threshold, so gated rules read it as "no signal".
const RSINeutral = 50.0

// CalculateRSI computes the relative strength index at every index using a
// simple rolling mean of gains and losses over period. Near the start the
// window shrinks to the deltas available. A window with gains but no losses
// saturates at 100; the result is never NaN.
func CalculateRSI(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errBadPeriod
	}
	out := make([]float64, len(closes))
	if len(closes) == 0 {
		return out, nil
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change // make positive
		}
	}

	// Index 0 has no delta and is skipped by the rolling window.
	avgGain := rollingMean(gains, period, 1)
	avgLoss := rollingMean(losses, period, 1)

	out[0] = RSINeutral
	for i := 1; i < len(closes); i++ {
		out[i] = rsiFromAverages(avgGain[i], avgLoss[i])
	}
	return out, nil
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return RSINeutral
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
