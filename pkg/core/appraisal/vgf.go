package appraisal

// amountTolerance is relative to the search range.
const amountTolerance = 1e-9

// EstimateVGF finds the smallest one-time capital grant that lifts the FIRR
// of rows to targetFIRRPercent.
//
// The grant is spread over the first constructionYears rows in proportion to
// their capex (evenly if those rows carry no capex); 0 or 1 puts it all in
// the first row. ComputeFIRR is the evaluator and the grant is bisected over
// [0, Σ(Capex + Opex)].
//
// GapAmount is 0 when the unsubsidized project already meets the target, and
// nil when even a grant equal to the total project cost does not.
//
// FORMULA: VGF% = Gap / ΣCapex × 100 (0 when ΣCapex = 0)
func EstimateVGF(rows []CostRow, targetFIRRPercent float64, constructionYears int) VGFResult {
	var totalCapex, totalCost float64
	for _, row := range rows {
		totalCapex += finiteOrZero(row.Capex)
		totalCost += finiteOrZero(row.Capex) + finiteOrZero(row.Opex)
	}

	if meetsTarget(rows, targetFIRRPercent) {
		return vgfResult(0, totalCapex)
	}
	if totalCost <= 0 || !isFinite(targetFIRRPercent) {
		return VGFResult{}
	}

	profile := constructionProfile(rows, constructionYears)
	if !meetsTarget(applyGrant(rows, profile, totalCost), targetFIRRPercent) {
		return VGFResult{}
	}

	lo, hi := 0.0, totalCost
	tol := totalCost * amountTolerance
	for i := 0; i < maxIterations && hi-lo > tol; i++ {
		mid := (lo + hi) / 2
		if meetsTarget(applyGrant(rows, profile, mid), targetFIRRPercent) {
			hi = mid
		} else {
			lo = mid
		}
	}
	if hi-lo > tol {
		return VGFResult{}
	}

	return vgfResult(hi, totalCapex)
}

func vgfResult(gap, totalCapex float64) VGFResult {
	pct := 0.0
	if totalCapex > 0 {
		pct = gap / totalCapex * 100
	}
	return VGFResult{GapAmount: floatPtr(gap), VGFAsPctOfCapex: floatPtr(pct)}
}

// meetsTarget reports whether the FIRR of rows reaches target. Without an
// IRR (flows of one sign) the NPV at the target rate decides: an all-inflow
// series clears any target, an all-outflow series none.
func meetsTarget(rows []CostRow, target float64) bool {
	r := ComputeFIRR(rows)
	if r.IRR != nil {
		return *r.IRR >= target
	}
	return NPV(financialFlows(rows), target) > 0
}

// constructionProfile returns grant weights per row index, summing to 1.
func constructionProfile(rows []CostRow, constructionYears int) []float64 {
	weights := make([]float64, len(rows))
	if len(rows) == 0 {
		return weights
	}
	n := constructionYears
	if n < 1 {
		n = 1
	}
	if n > len(rows) {
		n = len(rows)
	}

	var capex float64
	for _, row := range rows[:n] {
		capex += finiteOrZero(row.Capex)
	}
	for i, row := range rows[:n] {
		if capex > 0 {
			weights[i] = finiteOrZero(row.Capex) / capex
		} else {
			weights[i] = 1 / float64(n)
		}
	}
	return weights
}

// applyGrant books the grant as extra inflow so every amount stays >= 0.
func applyGrant(rows []CostRow, weights []float64, grant float64) []CostRow {
	out := make([]CostRow, len(rows))
	copy(out, rows)
	for i, w := range weights {
		out[i].Revenue = finiteOrZero(out[i].Revenue) + grant*w
	}
	return out
}
