package appraisal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPrices = ShadowPrices{
	StandardConversionFactor: 0.9,
	ShadowExchangeRate:       1.2,
	ShadowWageRate:           0.5,
	SocialDiscountRate:       10,
}

func irrigationCosts() []EconomicCostRow {
	return []EconomicCostRow{{Year: 2025, LocalCost: 1000, ImportedCost: 500, LabourCost: 400}}
}

func irrigationBenefits() []BenefitRow {
	var rows []BenefitRow
	for y := 2026; y <= 2030; y++ {
		rows = append(rows,
			BenefitRow{Year: y, Amount: 300, Category: "crop yield"},
			BenefitRow{Year: y, Amount: 200, Category: "water savings"},
		)
	}
	return rows
}

func TestEconomicCost(t *testing.T) {
	// 1000 × 0.9 + 500 × 1.2 + 400 × 0.5
	assert.InDelta(t, 1700.0, EconomicCost(irrigationCosts()[0], testPrices), 1e-9)
}

func TestBuildEconomicSeriesMergesYears(t *testing.T) {
	costs := []EconomicCostRow{
		{Year: 2024, LocalCost: 100},
		{Year: 2026, LocalCost: 100},
	}
	benefits := []BenefitRow{
		{Year: 2027, Amount: 40},
		{Year: 2025, Amount: 10},
		{Year: 2027, Amount: 60},
	}
	prices := ShadowPrices{StandardConversionFactor: 1, ShadowExchangeRate: 1, ShadowWageRate: 1}

	s := BuildEconomicSeries(costs, benefits, prices)
	assert.Equal(t, []int{2024, 2025, 2026, 2027}, s.Years)
	assert.Equal(t, []float64{100, 0, 100, 0}, s.Costs)
	assert.Equal(t, []float64{0, 10, 0, 100}, s.Benefits)
	assert.Equal(t, []float64{-100, 10, -100, 100}, s.NetFlows())
}

func TestBuildEconomicSeriesFillsMissingYears(t *testing.T) {
	s := BuildEconomicSeries(
		[]EconomicCostRow{{Year: 2025, LocalCost: 1000}},
		[]BenefitRow{{Year: 2030, Amount: 2000}},
		testPrices,
	)
	assert.Equal(t, []int{2025, 2026, 2027, 2028, 2029, 2030}, s.Years)
	assert.Equal(t, []float64{-900, 0, 0, 0, 0, 2000}, s.NetFlows())
}

func TestComputeEIRRYearGap(t *testing.T) {
	res := ComputeEIRR(
		[]EconomicCostRow{{Year: 2025, LocalCost: 1000}},
		[]BenefitRow{{Year: 2030, Amount: 2000}},
		testPrices,
	)

	// 900 × (1 + r)^5 = 2000 → r ≈ 17.32%
	require.NotNil(t, res.IRR)
	assert.InDelta(t, 17.32, *res.IRR, 0.01)
}

func TestComputeEIRR(t *testing.T) {
	res := ComputeEIRR(irrigationCosts(), irrigationBenefits(), testPrices)

	// -1700 + 500 × a(5, r) = 0 → a = 3.4 → r ≈ 14.4%
	require.NotNil(t, res.IRR)
	assert.InDelta(t, 14.4, *res.IRR, 0.1)

	// ENPV at 10%: -1700 + 500 × 3.790787
	assert.InDelta(t, 195.39, res.ENPV, 0.01)
	assert.Equal(t, res.NPVAtHurdle, res.ENPV)

	require.NotNil(t, res.BCR)
	assert.InDelta(t, 1895.39/1700, *res.BCR, 1e-4)
}

func TestComputeEIRRUsesSocialDiscountRate(t *testing.T) {
	low := testPrices
	low.SocialDiscountRate = 6
	high := testPrices
	high.SocialDiscountRate = 12

	resLow := ComputeEIRR(irrigationCosts(), irrigationBenefits(), low)
	resHigh := ComputeEIRR(irrigationCosts(), irrigationBenefits(), high)

	assert.Greater(t, resLow.ENPV, resHigh.ENPV)
	assert.InDelta(t, *resLow.IRR, *resHigh.IRR, 1e-9, "IRR does not depend on the discount rate")
}

func TestComputeEIRRZeroCosts(t *testing.T) {
	res := ComputeEIRR(nil, irrigationBenefits(), testPrices)
	assert.Nil(t, res.BCR)
	assert.Nil(t, res.IRR)
	assert.Greater(t, res.ENPV, 0.0)
}

func TestComputeEIRREmpty(t *testing.T) {
	res := ComputeEIRR(nil, nil, testPrices)
	assert.Nil(t, res.IRR)
	assert.Nil(t, res.BCR)
	assert.Equal(t, 0.0, res.ENPV)
}

func TestComputeEIRRShadowWageLowersCost(t *testing.T) {
	costs := []EconomicCostRow{{Year: 2025, LabourCost: 1000}}
	benefits := []BenefitRow{{Year: 2026, Amount: 700}, {Year: 2027, Amount: 700}}

	full := testPrices
	full.ShadowWageRate = 1
	res := ComputeEIRR(costs, benefits, full)
	shadow := ComputeEIRR(costs, benefits, testPrices)

	require.NotNil(t, res.IRR)
	require.NotNil(t, shadow.IRR)
	assert.Greater(t, *shadow.IRR, *res.IRR)
}
