package appraisal

import "math"

// =============================================================================
// RATE OF RETURN SOLVER
// Rates are fractions internally and percentages at the public boundary.
// =============================================================================

const (
	lowerBracket  = -0.99 // -99%
	upperBracket  = 10.0  // +1000%
	bracketStep   = 0.01
	rateTolerance = 1e-6
	maxIterations = 100
	// MaxSchedulePeriods bounds the years a schedule may span.
	MaxSchedulePeriods = 200
	// minGrowth keeps (1+r) away from zero; flows discounted below it are rejected.
	minGrowth = 1e-9
)

// NPV calculates the net present value of cashFlows at ratePercent.
//
// FORMULA: NPV = Σ [ CF_i / (1 + r)^i ]
//
// cashFlows[0] is undiscounted. Returns 0 when the rate is at or below -100%
// or when the sum overflows, so callers never see NaN or Inf.
func NPV(cashFlows []float64, ratePercent float64) float64 {
	v, ok := npv(cashFlows, ratePercent/100)
	if !ok {
		return 0
	}
	return v
}

// npv evaluates the discounted sum at a fractional rate. ok is false when
// (1+r) is too close to zero or the result is not finite.
func npv(cashFlows []float64, rate float64) (float64, bool) {
	growth := 1 + rate
	if growth < minGrowth {
		return 0, false
	}
	var sum float64
	factor := 1.0
	for _, cf := range cashFlows {
		sum += cf / factor
		factor *= growth
	}
	if !isFinite(sum) {
		return 0, false
	}
	return sum, true
}

// Solve finds the internal rate of return of cashFlows and the NPV at
// hurdleRatePercent.
//
// The bracket [-99%, +1000%] is scanned upward in 1% steps and the first sign
// change found is refined by bisection to 1e-6 (fractional rate) within 100
// iterations. With several sign changes the lowest root wins. IRR is nil when
// the flows do not change sign, when no bracket is found, or when refinement
// does not converge.
func Solve(cashFlows []float64, hurdleRatePercent float64) RateOfReturnResult {
	flows := sanitize(cashFlows)
	result := RateOfReturnResult{NPVAtHurdle: NPV(flows, hurdleRatePercent)}
	if irr, ok := solveIRR(flows); ok {
		result.IRR = floatPtr(irr * 100)
	}
	return result
}

func solveIRR(flows []float64) (float64, bool) {
	if !hasSignChange(flows) {
		return 0, false
	}

	// The grid is derived from an integer index so it is identical on every
	// run regardless of floating-point accumulation.
	steps := int(math.Round((upperBracket - lowerBracket) / bracketStep))
	var prevRate, prevNPV float64
	havePrev := false
	for k := 0; k <= steps; k++ {
		rate := lowerBracket + float64(k)*bracketStep
		v, ok := npv(flows, rate)
		if !ok {
			continue
		}
		if v == 0 {
			return rate, true
		}
		if havePrev && (prevNPV < 0) != (v < 0) {
			return bisect(flows, prevRate, rate, prevNPV)
		}
		prevRate, prevNPV, havePrev = rate, v, true
	}
	return 0, false
}

// bisect refines a root bracketed by [a, b] where npv(a) has the sign of fa.
func bisect(flows []float64, a, b, fa float64) (float64, bool) {
	for i := 0; i < maxIterations; i++ {
		mid := (a + b) / 2
		fm, ok := npv(flows, mid)
		if !ok {
			return 0, false
		}
		if fm == 0 || (b-a)/2 < rateTolerance {
			return mid, true
		}
		if (fm < 0) == (fa < 0) {
			a, fa = mid, fm
		} else {
			b = mid
		}
	}
	return 0, false
}

// periodIndex maps each year to its discounting period, counted in elapsed
// years from the first one, and returns the number of periods. Years that are
// not strictly ascending, or that span more than MaxSchedulePeriods, fall
// back to list position; validated input never does.
func periodIndex(years []int) ([]int, int) {
	index := make([]int, len(years))
	if len(years) == 0 {
		return index, 0
	}
	span := years[len(years)-1] - years[0] + 1
	byYear := span > 0 && span <= MaxSchedulePeriods
	for i := 1; i < len(years) && byYear; i++ {
		byYear = years[i] > years[i-1]
	}
	for i, y := range years {
		if byYear {
			index[i] = y - years[0]
		} else {
			index[i] = i
		}
	}
	if !byYear {
		return index, len(years)
	}
	return index, span
}

func hasSignChange(flows []float64) bool {
	var pos, neg bool
	for _, cf := range flows {
		if cf > 0 {
			pos = true
		} else if cf < 0 {
			neg = true
		}
	}
	return pos && neg
}

func sanitize(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = finiteOrZero(v)
	}
	return out
}

func finiteOrZero(v float64) float64 {
	if isFinite(v) {
		return v
	}
	return 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
