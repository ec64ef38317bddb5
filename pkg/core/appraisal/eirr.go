package appraisal

import "sort"

// EconomicCost converts one market-priced cost row into economic prices.
//
// FORMULA: EC = Local × SCF + Imported × SER + Labour × SWR
func EconomicCost(row EconomicCostRow, prices ShadowPrices) float64 {
	return finiteOrZero(row.LocalCost)*finiteOrZero(prices.StandardConversionFactor) +
		finiteOrZero(row.ImportedCost)*finiteOrZero(prices.ShadowExchangeRate) +
		finiteOrZero(row.LabourCost)*finiteOrZero(prices.ShadowWageRate)
}

// EconomicSeries is the year-aligned economic view used for discounting.
type EconomicSeries struct {
	Years    []int
	Costs    []float64
	Benefits []float64
}

// NetFlows returns Benefits - Costs per year index.
func (s EconomicSeries) NetFlows() []float64 {
	flows := make([]float64, len(s.Years))
	for i := range s.Years {
		flows[i] = s.Benefits[i] - s.Costs[i]
	}
	return flows
}

// BuildEconomicSeries merges shadow-priced costs and benefits on the union
// of their years, ascending. Rows sharing a year add up. Calendar years
// missing between the first and last year are filled with zero flows, so
// index i of the result is i elapsed years from the start.
func BuildEconomicSeries(costs []EconomicCostRow, benefits []BenefitRow, prices ShadowPrices) EconomicSeries {
	costByYear := make(map[int]float64)
	benefitByYear := make(map[int]float64)
	for _, row := range costs {
		costByYear[row.Year] += EconomicCost(row, prices)
	}
	for _, row := range benefits {
		benefitByYear[row.Year] += finiteOrZero(row.Amount)
	}

	years := make([]int, 0, len(costByYear)+len(benefitByYear))
	for y := range costByYear {
		years = append(years, y)
	}
	for y := range benefitByYear {
		if _, dup := costByYear[y]; !dup {
			years = append(years, y)
		}
	}
	sort.Ints(years)
	if n := len(years); n > 1 && years[n-1]-years[0] < MaxSchedulePeriods {
		first, last := years[0], years[n-1]
		years = make([]int, 0, last-first+1)
		for y := first; y <= last; y++ {
			years = append(years, y)
		}
	}

	series := EconomicSeries{
		Years:    years,
		Costs:    make([]float64, len(years)),
		Benefits: make([]float64, len(years)),
	}
	for i, y := range years {
		series.Costs[i] = costByYear[y]
		series.Benefits[i] = benefitByYear[y]
	}
	return series
}

// ComputeEIRR calculates the Economic Internal Rate of Return.
//
// IRR and ENPV are evaluated at the social discount rate.
//
// FORMULA: BCR = Σ PV(Benefits) / Σ PV(Economic Costs)
//
// BCR is nil when discounted costs sum to zero.
func ComputeEIRR(costs []EconomicCostRow, benefits []BenefitRow, prices ShadowPrices) EIRRResult {
	series := BuildEconomicSeries(costs, benefits, prices)
	rate := finiteOrZero(prices.SocialDiscountRate)

	result := EIRRResult{RateOfReturnResult: Solve(series.NetFlows(), rate)}
	result.ENPV = result.NPVAtHurdle

	pvCosts := NPV(series.Costs, rate)
	pvBenefits := NPV(series.Benefits, rate)
	if pvCosts != 0 {
		if bcr := pvBenefits / pvCosts; isFinite(bcr) {
			result.BCR = floatPtr(bcr)
		}
	}

	return result
}
