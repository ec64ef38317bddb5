package appraisal

// RunSensitivity re-runs appraise under each scenario with Capex and Opex
// scaled by CostMultiplier and Revenue by RevenueMultiplier. The first result
// is always the base case on the unmodified rows; scenarios named
// BaseCaseName are not repeated.
func RunSensitivity(rows []CostRow, appraise FinancialFunc, scenarios []Scenario) []SensitivityResult {
	return runScenarios(appraise(rows), scenarios, func(s Scenario) RateOfReturnResult {
		return appraise(ScaleCostRows(rows, s))
	})
}

// RunEconomicSensitivity is RunSensitivity over the economic view: every
// market-priced cost component scales by CostMultiplier and every benefit
// by RevenueMultiplier before ComputeEIRR runs again.
func RunEconomicSensitivity(costs []EconomicCostRow, benefits []BenefitRow, prices ShadowPrices, scenarios []Scenario) []SensitivityResult {
	base := ComputeEIRR(costs, benefits, prices).RateOfReturnResult
	return runScenarios(base, scenarios, func(s Scenario) RateOfReturnResult {
		c, b := ScaleEconomicRows(costs, benefits, s)
		return ComputeEIRR(c, b, prices).RateOfReturnResult
	})
}

func runScenarios(base RateOfReturnResult, scenarios []Scenario, evaluate func(Scenario) RateOfReturnResult) []SensitivityResult {
	results := make([]SensitivityResult, 0, len(scenarios)+1)
	results = append(results, sensitivityResult(BaseCaseName, base))
	for _, s := range scenarios {
		if s.Name == BaseCaseName {
			continue
		}
		results = append(results, sensitivityResult(s.Name, evaluate(s)))
	}
	return results
}

func sensitivityResult(name string, r RateOfReturnResult) SensitivityResult {
	return SensitivityResult{Scenario: name, Rate: r.IRR, NPV: r.NPVAtHurdle}
}

// ScaleCostRows returns a scaled copy; rows is not modified.
func ScaleCostRows(rows []CostRow, s Scenario) []CostRow {
	out := make([]CostRow, len(rows))
	for i, row := range rows {
		out[i] = CostRow{
			Year:    row.Year,
			Capex:   row.Capex * s.CostMultiplier,
			Opex:    row.Opex * s.CostMultiplier,
			Revenue: row.Revenue * s.RevenueMultiplier,
		}
	}
	return out
}

// ScaleEconomicRows returns scaled copies of both series.
func ScaleEconomicRows(costs []EconomicCostRow, benefits []BenefitRow, s Scenario) ([]EconomicCostRow, []BenefitRow) {
	c := make([]EconomicCostRow, len(costs))
	for i, row := range costs {
		c[i] = EconomicCostRow{
			Year:         row.Year,
			LocalCost:    row.LocalCost * s.CostMultiplier,
			ImportedCost: row.ImportedCost * s.CostMultiplier,
			LabourCost:   row.LabourCost * s.CostMultiplier,
		}
	}
	b := make([]BenefitRow, len(benefits))
	for i, row := range benefits {
		b[i] = BenefitRow{Year: row.Year, Amount: row.Amount * s.RevenueMultiplier, Category: row.Category}
	}
	return c, b
}
