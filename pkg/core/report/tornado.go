package report

import (
	"math"
	"sort"

	"project_appraisal/pkg/core/appraisal"
)

// TornadoBar is one scenario's deviation from the base case. RateDelta is
// nil when either rate has no solution.
type TornadoBar struct {
	Scenario  string   `json:"scenario"`
	Rate      *float64 `json:"rate"`
	RateDelta *float64 `json:"rate_delta"` // percentage points
	NPVDelta  float64  `json:"npv_delta"`
}

// Tornado derives deviations from a sensitivity run whose first entry is the
// base case. Bars are ordered by absolute rate deviation, largest first;
// bars without a deviation sort last in run order.
func Tornado(results []appraisal.SensitivityResult) []TornadoBar {
	if len(results) < 2 {
		return nil
	}
	base := results[0]

	bars := make([]TornadoBar, 0, len(results)-1)
	for _, r := range results[1:] {
		bar := TornadoBar{Scenario: r.Scenario, Rate: r.Rate, NPVDelta: r.NPV - base.NPV}
		if r.Rate != nil && base.Rate != nil {
			d := *r.Rate - *base.Rate
			bar.RateDelta = &d
		}
		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool {
		a, b := bars[i].RateDelta, bars[j].RateDelta
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return math.Abs(*a) > math.Abs(*b)
	})
	return bars
}
