package appraisal

// FinancialFunc is an appraisal over the financial view, used as the
// black-box evaluator by the sensitivity runner and the VGF estimator.
type FinancialFunc func(rows []CostRow) RateOfReturnResult

// ComputeFIRR calculates the Financial Internal Rate of Return.
//
// FORMULA: NCF_i = Revenue_i - Capex_i - Opex_i
//
// Flows are discounted by elapsed years: a missing calendar year between two
// rows is a zero-flow period. IRR and NPV use the fixed FinancialHurdleRate.
//
// PaybackYear is the Year of the first row where cumulative NCF reaches >= 0,
// counted only once Capex or Opex has been incurred, so a schedule that opens
// with revenue or all-zero rows does not pay back before anything was spent.
// It is nil when nothing is ever spent or the cumulative flow stays negative.
// TotalInvestment is Σ(Capex + Opex). Empty rows give an all-nil/zero result.
func ComputeFIRR(rows []CostRow) FIRRResult {
	result := FIRRResult{RateOfReturnResult: Solve(financialFlows(rows), FinancialHurdleRate)}

	var cumulative float64
	for _, row := range rows {
		cumulative += netFlow(row)
		result.TotalInvestment += finiteOrZero(row.Capex) + finiteOrZero(row.Opex)
		if result.PaybackYear == nil && result.TotalInvestment > 0 && cumulative >= 0 {
			result.PaybackYear = intPtr(row.Year)
		}
	}

	return result
}

// FinancialRateOfReturn adapts ComputeFIRR to a FinancialFunc.
func FinancialRateOfReturn(rows []CostRow) RateOfReturnResult {
	return ComputeFIRR(rows).RateOfReturnResult
}

func netFlow(row CostRow) float64 {
	return finiteOrZero(row.Revenue) - finiteOrZero(row.Capex) - finiteOrZero(row.Opex)
}

func financialFlows(rows []CostRow) []float64 {
	years := make([]int, len(rows))
	for i, row := range rows {
		years[i] = row.Year
	}
	index, periods := periodIndex(years)

	flows := make([]float64, periods)
	for i, row := range rows {
		flows[index[i]] += netFlow(row)
	}
	return flows
}
