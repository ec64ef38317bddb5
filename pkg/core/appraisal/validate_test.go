package appraisal

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		if _, seen := out[f.Field]; !seen {
			out[f.Field] = f.Message
		}
	}
	return out
}

func TestValidateCostRows(t *testing.T) {
	assert.NoError(t, ValidateCostRows(roadProject()))
	assert.NoError(t, ValidateCostRows(nil))

	err := ValidateCostRows([]CostRow{
		{Year: 2025, Capex: -1},
		{Year: 2025, Revenue: math.NaN()},
		{Year: 2024, Opex: math.Inf(1)},
	})
	fields := fieldErrors(t, err)

	assert.Equal(t, "must be >= 0", fields["rows[0].capex"])
	assert.Equal(t, "must be a finite number", fields["rows[1].revenue"])
	assert.Equal(t, "must be a finite number", fields["rows[2].opex"])
	assert.Equal(t, "duplicates year 2025", fields["rows[1].year"])
	assert.Equal(t, "year 2024 is before previous year 2025", fields["rows[2].year"])
	assert.Contains(t, err.Error(), "invalid appraisal input")
}

func TestValidateYearSpan(t *testing.T) {
	assert.NoError(t, ValidateCostRows([]CostRow{{Year: 2025, Capex: 1000}, {Year: 2030, Revenue: 2000}}))

	fields := fieldErrors(t, ValidateCostRows([]CostRow{{Year: 1900, Capex: 1}, {Year: 2101, Revenue: 1}}))
	assert.Equal(t, "spans 202 years (1900-2101), at most 200 allowed", fields["rows"])

	err := ValidateEconomicInput(
		[]EconomicCostRow{{Year: 2025, LocalCost: 1}},
		[]BenefitRow{{Year: 2300, Amount: 1}},
		testPrices,
	)
	fields = fieldErrors(t, err)
	assert.Contains(t, fields, "benefits")
}

func TestValidateEconomicInput(t *testing.T) {
	assert.NoError(t, ValidateEconomicInput(irrigationCosts(), irrigationBenefits(), testPrices))

	badPrices := testPrices
	badPrices.ShadowWageRate = 1.4
	badPrices.StandardConversionFactor = 0
	badPrices.SocialDiscountRate = -1

	err := ValidateEconomicInput(
		[]EconomicCostRow{{Year: 2026, LabourCost: -5}, {Year: 2025}},
		[]BenefitRow{{Year: 2026, Amount: -1}, {Year: 2026, Amount: 3}},
		badPrices,
	)
	fields := fieldErrors(t, err)

	assert.Equal(t, "must be >= 0", fields["costs[0].labour_cost"])
	assert.Equal(t, "year 2025 is before previous year 2026", fields["costs[1].year"])
	assert.Equal(t, "must be >= 0", fields["benefits[0].amount"])
	assert.NotContains(t, fields, "benefits[1].year", "benefits may share a year")
	assert.Equal(t, "must be <= 1", fields["shadow_prices.shadow_wage_rate"])
	assert.Equal(t, "must be > 0", fields["shadow_prices.standard_conversion_factor"])
	assert.Equal(t, "must be >= 0", fields["shadow_prices.social_discount_rate"])
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Routing.PPPMinFIRR = 12
	cfg.Scenarios = append(cfg.Scenarios, Scenario{Name: "", CostMultiplier: -1, RevenueMultiplier: 1})
	cfg.VGF.ConstructionYears = -2

	fields := fieldErrors(t, cfg.Validate())
	assert.Contains(t, fields, "routing.ppp_min_firr")
	assert.Contains(t, fields, "scenarios[6].name")
	assert.Contains(t, fields, "scenarios[6].cost_multiplier")
	assert.Contains(t, fields, "vgf.construction_years")
}
