package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestPriceSeries_NormalizeSortsAndDedups(t *testing.T) {
	s := PriceSeries{Symbol: "GC=F", Points: []PricePoint{
		{Time: day(2), Close: 3},
		{Time: day(0), Close: 1},
		{Time: day(1), Close: 2},
		{Time: day(2), Close: 4},
	}}
	require.Error(t, s.Validate())

	n := s.Normalize()
	require.NoError(t, n.Validate())
	assert.Equal(t, []float64{1, 2, 4}, n.Closes())
	assert.Equal(t, "GC=F", n.Symbol)
	// the input is left untouched
	assert.Equal(t, 3.0, s.Points[0].Close)
}

func TestPriceSeries_Validate(t *testing.T) {
	assert.NoError(t, PriceSeries{}.Validate())
	assert.NoError(t, PriceSeries{Points: []PricePoint{{Time: day(0)}}}.Validate())

	dup := PriceSeries{Points: []PricePoint{{Time: day(0)}, {Time: day(0)}}}
	assert.Error(t, dup.Validate())

	desc := PriceSeries{Points: []PricePoint{{Time: day(1)}, {Time: day(0)}}}
	assert.Error(t, desc.Validate())
}

func TestParseHorizonAndRule(t *testing.T) {
	h, err := ParseHorizon("Intraday")
	require.NoError(t, err)
	assert.Equal(t, HorizonShort, h)

	h, err = ParseHorizon("long-term")
	require.NoError(t, err)
	assert.Equal(t, HorizonLong, h)

	_, err = ParseHorizon("weekly")
	assert.Error(t, err)

	r, err := ParseRule("")
	require.NoError(t, err)
	assert.Equal(t, RuleBasic, r)

	r, err = ParseRule("gated")
	require.NoError(t, err)
	assert.Equal(t, RuleGated, r)

	_, err = ParseRule("macd")
	assert.Error(t, err)
}

func TestDefaultAssets_UniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range DefaultAssets() {
		assert.False(t, seen[a.ID], "duplicate asset %s", a.ID)
		seen[a.ID] = true
		assert.NotEmpty(t, a.Symbol)
		assert.NotEmpty(t, a.HistorySource)
	}
}
