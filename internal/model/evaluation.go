package model

import "time"

// Evaluation is one run of fetch → indicators → decision for a single
// asset and policy. Failed runs carry Err and no Result.
type Evaluation struct {
	AssetID       string            `json:"asset"`
	Horizon       Horizon           `json:"horizon"`
	Rule          Rule              `json:"rule"`
	Policy        string            `json:"policy"`
	Days          int               `json:"days"`
	Snapshot      IndicatorSnapshot `json:"snapshot"`
	Result        *SignalResult     `json:"result,omitempty"`
	Spot          *float64          `json:"spot,omitempty"`
	Closes        []ClosePoint      `json:"closes,omitempty"`
	LowConfidence bool              `json:"low_confidence"`
	Err           string            `json:"error,omitempty"`
	EvaluatedAt   time.Time         `json:"evaluated_at"`
}

// Key identifies the watch an evaluation belongs to.
func (e *Evaluation) Key() string {
	return EvaluationKey(e.AssetID, e.Horizon, e.Rule)
}

// Failed reports whether the run produced no result.
func (e *Evaluation) Failed() bool {
	return e.Result == nil
}

// EvaluationKey builds the "asset:horizon:rule" key used by stores and
// alerting. One asset may be watched under both rules of a horizon.
func EvaluationKey(assetID string, h Horizon, r Rule) string {
	return assetID + ":" + string(h) + ":" + string(r)
}
