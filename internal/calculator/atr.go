package calculator

import (
	"math"

	"ProfitPredictor/internal/model"
)

// CalculateTrueRange returns the per-bar true range:
// max(high-low, |high-prevClose|, |low-prevClose|). The first bar has no
// previous close, so its true range is high-low.
func CalculateTrueRange(points []model.PricePoint) []float64 {
	tr := make([]float64, len(points))
	for i, p := range points {
		r := math.Abs(p.High - p.Low)
		if i > 0 {
			prev := points[i-1].Close
			r = math.Max(r, math.Abs(p.High-prev))
			r = math.Max(r, math.Abs(p.Low-prev))
		}
		tr[i] = r
	}
	return tr
}

// CalculateATR computes the average true range at every index as a simple
// rolling mean over period, shrinking the window near the start.
func CalculateATR(points []model.PricePoint, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errBadPeriod
	}
	return rollingMean(CalculateTrueRange(points), period, 0), nil
}
