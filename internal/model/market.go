package model

import (
	"fmt"
	"sort"
	"time"
)

// PricePoint represents a single daily OHLC bar.
type PricePoint struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume,omitempty"`
}

// PriceSeries is an ascending, duplicate-free sequence of bars for one symbol.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of points in the series.
func (s PriceSeries) Len() int { return len(s.Points) }

// Empty reports whether the series has no points.
func (s PriceSeries) Empty() bool { return len(s.Points) == 0 }

// Last returns the latest point. It panics on an empty series.
func (s PriceSeries) Last() PricePoint { return s.Points[len(s.Points)-1] }

// Closes extracts the close column.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// ClosePoint is a (time, close) pair used for charting.
type ClosePoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// CloseSeries returns the close column paired with timestamps.
func (s PriceSeries) CloseSeries() []ClosePoint {
	out := make([]ClosePoint, len(s.Points))
	for i, p := range s.Points {
		out[i] = ClosePoint{Time: p.Time, Close: p.Close}
	}
	return out
}

// Validate checks ordering and uniqueness of timestamps.
func (s PriceSeries) Validate() error {
	for i := 1; i < len(s.Points); i++ {
		prev, cur := s.Points[i-1].Time, s.Points[i].Time
		if cur.Equal(prev) {
			return fmt.Errorf("duplicate timestamp %s at index %d", cur.Format(time.RFC3339), i)
		}
		if cur.Before(prev) {
			return fmt.Errorf("point %d (%s) is before point %d (%s)",
				i, cur.Format(time.RFC3339), i-1, prev.Format(time.RFC3339))
		}
	}
	return nil
}

// Normalize sorts points ascending and drops duplicate timestamps, keeping
// the last occurrence of each.
func (s PriceSeries) Normalize() PriceSeries {
	if len(s.Points) < 2 {
		return s
	}
	pts := make([]PricePoint, len(s.Points))
	copy(pts, s.Points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time.Before(pts[j].Time) })

	out := pts[:0]
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1].Time.Equal(p.Time) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return PriceSeries{Symbol: s.Symbol, Points: out}
}

// MarketData is what the collector hands to the strategy layer.
type MarketData struct {
	Asset     Asset
	Series    PriceSeries
	Spot      *float64 // live reference price, display only
	FetchedAt time.Time
}
